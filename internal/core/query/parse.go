package query

import (
	"strings"

	"github.com/yndnr/sipkv/internal/core/domain"
)

// Parse tokenizes one request. The verb is checked before arity, so an
// unknown verb reports ErrQueryNotSupported even when arguments are missing.
func Parse(data []byte) (domain.Request, error) {
	line := strings.TrimSuffix(string(data), "\n")
	line = strings.TrimSuffix(line, "\r")

	var req domain.Request

	tok, rest := nextToken(line)
	if tok == "" {
		return req, domain.ErrMalformedQuery
	}
	verb, ok := domain.ParseVerb(tok)
	if !ok {
		return req, domain.ErrQueryNotSupported.With(tok)
	}
	req.Verb = verb

	req.Key, rest = nextToken(rest)
	if req.Key == "" {
		return req, domain.ErrMalformedQuery.With("missing key")
	}
	if !verb.NeedsValue() {
		return req, nil
	}

	req.Type, rest = nextToken(rest)
	if req.Type == "" {
		return req, domain.ErrMalformedQuery.With("missing type")
	}
	// rest starts at the separator after the type token.
	if len(rest) < 2 {
		return req, domain.ErrMalformedQuery.With("missing value")
	}
	req.Value = rest[1:]
	return req, nil
}

// nextToken skips leading spaces and returns the next space-delimited token
// and the unconsumed remainder, which begins at the delimiter.
func nextToken(s string) (string, string) {
	s = strings.TrimLeft(s, " ")
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}
