package domain

import "testing"

func TestParseVerb(t *testing.T) {
	tests := []struct {
		in   string
		want Verb
		ok   bool
	}{
		{"insert", VerbInsert, true},
		{"select", VerbSelect, true},
		{"delete", VerbDelete, true},
		{"replace", VerbReplace, true},
		{"inserted", "", false},
		{"INSERT", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseVerb(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseVerb(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestVerb_NeedsValue(t *testing.T) {
	for _, v := range Verbs {
		want := v == VerbInsert || v == VerbReplace
		if v.NeedsValue() != want {
			t.Errorf("%s.NeedsValue() = %v, want %v", v, v.NeedsValue(), want)
		}
	}
}
