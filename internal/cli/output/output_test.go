package output

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

type row struct {
	Key    string `json:"key" yaml:"key"`
	Type   string `json:"type" yaml:"type"`
	Value  string `json:"value" yaml:"value"`
	hidden int
	Skip   string `json:"-"`
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "json", "yaml"} {
		if f, err := ParseFormat(s); err != nil || string(f) != s {
			t.Errorf("ParseFormat(%q) = %q, %v", s, f, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("expected JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("expected YAMLFormatter")
	}
	if _, ok := NewFormatter("unknown").(*TableFormatter); !ok {
		t.Error("expected TableFormatter for unknown format")
	}
}

func TestTableFormatter_Slice(t *testing.T) {
	var buf bytes.Buffer
	rows := []row{
		{Key: "a", Type: "int", Value: "1"},
		{Key: "long-key", Type: "string", Value: ""},
	}
	if err := NewFormatter(FormatTable).Format(&buf, rows); err != nil {
		t.Fatalf("Format: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if fields := strings.Fields(lines[0]); strings.Join(fields, " ") != "KEY TYPE VALUE" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "long-key") || !strings.HasSuffix(lines[2], "-") {
		t.Errorf("row = %q", lines[2])
	}
	if strings.Index(lines[1], "int") != strings.Index(lines[2], "string") {
		t.Errorf("columns not aligned:\n%s", buf.String())
	}
}

func TestTableFormatter_Struct(t *testing.T) {
	var buf bytes.Buffer
	f := &TableFormatter{NoHeaders: true}
	if err := f.Format(&buf, &row{Key: "k", Type: "uint", Value: "9"}); err != nil {
		t.Fatalf("Format: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "FIELD") || strings.Contains(out, "Skip") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "type") || !strings.Contains(out, "uint") {
		t.Errorf("missing field:\n%s", out)
	}
}

func TestTableFormatter_TableAndNil(t *testing.T) {
	var buf bytes.Buffer
	tbl := &Table{Headers: []string{"A", "B"}}
	tbl.AddRow("1", "2")
	if err := NewFormatter(FormatTable).Format(&buf, tbl); err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got := buf.String(); got != "A  B\n1  2\n" {
		t.Errorf("got %q", got)
	}

	buf.Reset()
	if err := NewFormatter(FormatTable).Format(&buf, nil); err != nil || buf.Len() != 0 {
		t.Errorf("nil data: %q, %v", buf.String(), err)
	}
}

func TestJSONAndYAML(t *testing.T) {
	data := []row{{Key: "k", Type: "double", Value: "0.5"}}

	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).Format(&buf, data); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(buf.String(), `"type": "double"`) {
		t.Errorf("json output:\n%s", buf.String())
	}

	buf.Reset()
	if err := NewFormatter(FormatYAML).Format(&buf, data); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "type: double") {
		t.Errorf("yaml output:\n%s", buf.String())
	}
}

func TestStyler(t *testing.T) {
	plain := NewStyler(false)
	if got := plain.OK("done"); got != "done" {
		t.Errorf("disabled OK = %q", got)
	}

	colored := NewStyler(true)
	if got := colored.Fail("bad"); got == "bad" || !strings.Contains(got, "bad") {
		t.Errorf("enabled Fail = %q, want escape codes around text", got)
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("buffer is not a terminal")
	}
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsTerminal(f) {
		t.Error("regular file is not a terminal")
	}
}
