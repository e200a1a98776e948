package repl

import (
	"sort"
	"strings"

	"github.com/yndnr/sipkv/internal/core/domain"
	"github.com/yndnr/sipkv/pkg/hashtable"
)

// Completer suggests verbs, type names and meta-commands.
type Completer struct {
	words []string
}

// NewCompleter creates a completer. Meta-commands are included only for
// local sessions.
func NewCompleter(local bool) *Completer {
	var words []string
	for _, v := range domain.Verbs {
		words = append(words, string(v))
	}
	for _, k := range []hashtable.Kind{hashtable.KindText, hashtable.KindUint, hashtable.KindInt, hashtable.KindFloat} {
		words = append(words, k.String())
	}
	words = append(words, metaHelp, metaQuit)
	if local {
		words = append(words, metaSave, metaLoad)
	}
	sort.Strings(words)
	return &Completer{words: words}
}

// Complete returns the known words starting with prefix, sorted.
func (c *Completer) Complete(prefix string) []string {
	var out []string
	for _, w := range c.words {
		if strings.HasPrefix(w, prefix) {
			out = append(out, w)
		}
	}
	return out
}
