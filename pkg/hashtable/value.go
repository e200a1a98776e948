package hashtable

import (
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
//
// The numeric values are persisted by the codec and must not be reordered.
type Kind uint8

const (
	KindText Kind = iota
	KindUint
	KindInt
	KindFloat
	KindNone
)

// String returns the protocol type name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "string"
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindFloat:
		return "double"
	case KindNone:
		return "none"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Valid reports whether k names one of the storable variants.
func (k Kind) Valid() bool {
	return k <= KindFloat
}

// ParseKind maps a protocol type name to its Kind.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "string":
		return KindText, true
	case "uint":
		return KindUint, true
	case "int":
		return KindInt, true
	case "double":
		return KindFloat, true
	}
	return KindNone, false
}

// Value is an immutable tagged union over the five value variants.
//
// Text payloads are held as a Go string, so constructing a Value copies the
// caller's bytes and no caller memory is aliased by the table. The zero Value
// is an empty Text; use None for the absent marker.
type Value struct {
	kind Kind
	text string
	bits uint64
}

// None is returned by Table.Find on a miss. It is never stored.
var None = Value{kind: KindNone}

// NewText returns a Text value holding a copy of b.
func NewText(b []byte) Value {
	return Value{kind: KindText, text: string(b)}
}

// NewTextString returns a Text value holding s.
func NewTextString(s string) Value {
	return Value{kind: KindText, text: s}
}

func NewUint(u uint64) Value {
	return Value{kind: KindUint, bits: u}
}

func NewInt(i int64) Value {
	return Value{kind: KindInt, bits: uint64(i)}
}

func NewFloat(f float64) Value {
	return Value{kind: KindFloat, bits: math.Float64bits(f)}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v is the absent marker.
func (v Value) IsNone() bool { return v.kind == KindNone }

// Text returns the text payload. It is empty for other kinds.
func (v Value) Text() string { return v.text }

// Bytes returns a fresh copy of the text payload.
func (v Value) Bytes() []byte { return []byte(v.text) }

func (v Value) Uint() uint64   { return v.bits }
func (v Value) Int() int64     { return int64(v.bits) }
func (v Value) Float() float64 { return math.Float64frombits(v.bits) }

// Equal reports whether v and o hold the same variant and payload.
// Floats compare by bit pattern, so NaN equals an identical NaN.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	if v.kind == KindText {
		return v.text == o.text
	}
	return v.bits == o.bits
}

// String renders the payload the way select replies show it: raw text,
// unsigned or signed decimal, or a six-digit decimal float.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindUint:
		return strconv.FormatUint(v.bits, 10)
	case KindInt:
		return strconv.FormatInt(int64(v.bits), 10)
	case KindFloat:
		return fmt.Sprintf("%f", v.Float())
	default:
		return "<none>"
	}
}

// ParseValue parses s as a value of kind k. Text accepts any input; the
// numeric kinds require the whole string to be a base-10 literal.
func ParseValue(k Kind, s string) (Value, error) {
	switch k {
	case KindText:
		return NewTextString(s), nil
	case KindUint:
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return None, err
		}
		return NewUint(u), nil
	case KindInt:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return None, err
		}
		return NewInt(i), nil
	case KindFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return None, err
		}
		return NewFloat(f), nil
	}
	return None, fmt.Errorf("hashtable: cannot parse value of kind %s", k)
}
