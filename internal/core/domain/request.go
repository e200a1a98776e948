package domain

// Verb names a request operation.
type Verb string

const (
	VerbInsert  Verb = "insert"
	VerbSelect  Verb = "select"
	VerbDelete  Verb = "delete"
	VerbReplace Verb = "replace"
)

// Verbs lists the supported verbs in protocol order.
var Verbs = []Verb{VerbInsert, VerbSelect, VerbDelete, VerbReplace}

// ParseVerb matches s exactly against the supported verbs.
func ParseVerb(s string) (Verb, bool) {
	for _, v := range Verbs {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// NeedsValue reports whether the verb carries a type and value.
func (v Verb) NeedsValue() bool {
	return v == VerbInsert || v == VerbReplace
}

// Request is one tokenized client request. Type and Value are empty for
// select and delete.
type Request struct {
	Verb  Verb
	Key   string
	Type  string
	Value string
}
