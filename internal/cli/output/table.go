package output

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"
)

// Table is preformatted tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table with aligned columns.
func (t *Table) Render(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// TableFormatter renders a *Table directly, a slice of structs as one row
// per element, and a single struct as FIELD/VALUE pairs. Column names come
// from json tags.
type TableFormatter struct {
	NoHeaders bool
}

func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}
	if t, ok := data.(*Table); ok {
		return t.Render(w, f.NoHeaders)
	}

	v := reflect.Indirect(reflect.ValueOf(data))
	var t *Table
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		t = sliceTable(v)
	case reflect.Struct:
		t = structTable(v)
	default:
		_, err := fmt.Fprintln(w, cell(v))
		return err
	}
	return t.Render(w, f.NoHeaders)
}

func sliceTable(v reflect.Value) *Table {
	t := &Table{}
	if v.Len() == 0 {
		return t
	}
	elemType := v.Type().Elem()
	if elemType.Kind() == reflect.Pointer {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		t.Headers = []string{"VALUE"}
		for i := 0; i < v.Len(); i++ {
			t.AddRow(cell(v.Index(i)))
		}
		return t
	}

	fields := columns(elemType)
	for _, i := range fields {
		t.Headers = append(t.Headers, strings.ToUpper(columnName(elemType.Field(i))))
	}
	for i := 0; i < v.Len(); i++ {
		elem := reflect.Indirect(v.Index(i))
		row := make([]string, 0, len(fields))
		for _, fi := range fields {
			if elem.IsValid() {
				row = append(row, cell(elem.Field(fi)))
			} else {
				row = append(row, "")
			}
		}
		t.AddRow(row...)
	}
	return t
}

func structTable(v reflect.Value) *Table {
	t := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, i := range columns(v.Type()) {
		t.AddRow(columnName(v.Type().Field(i)), cell(v.Field(i)))
	}
	return t
}

// columns returns the exported field indexes not tagged json:"-".
func columns(t reflect.Type) []int {
	var out []int
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("json") == "-" {
			continue
		}
		out = append(out, i)
	}
	return out
}

func columnName(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" {
		return name
	}
	return f.Name
}

func cell(v reflect.Value) string {
	v = reflect.Indirect(v)
	if !v.IsValid() {
		return ""
	}
	if v.Kind() == reflect.String && v.Len() == 0 {
		return "-"
	}
	return fmt.Sprint(v.Interface())
}
