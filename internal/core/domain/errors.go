package domain

import (
	"errors"
	"strings"
)

// Class groups error codes by how a failed request is reported.
type Class string

const (
	// ClassProtocol covers request text that cannot become an operation.
	ClassProtocol Class = "QUERY"
	// ClassKey covers well formed operations refused by the table state.
	ClassKey Class = "KEY"
)

// Error is a request outcome other than success. Code is stable and goes to
// logs and metrics; clients only ever see the reply text.
type Error struct {
	Code   string // e.g. "KV-KEY-4040"
	Reason string
	// Detail names the offending token or key, if any.
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("[")
	b.WriteString(e.Code)
	b.WriteString("] ")
	b.WriteString(e.Reason)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (")
		b.WriteString(e.Cause.Error())
		b.WriteString(")")
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code, so sentinels compare equal to
// their annotated copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// Class reports the class encoded in the code's middle segment.
func (e *Error) Class() Class {
	parts := strings.Split(e.Code, "-")
	if len(parts) != 3 {
		return ""
	}
	return Class(parts[1])
}

// With returns a copy annotated with detail.
func (e *Error) With(detail string) *Error {
	c := *e
	c.Detail = detail
	return &c
}

// Because returns a copy wrapping cause.
func (e *Error) Because(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

func newError(class Class, num, reason string) *Error {
	return &Error{Code: "KV-" + string(class) + "-" + num, Reason: reason}
}

// Code returns the code of the first *Error in err's chain, or "".
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ClassOf returns the class of the first *Error in err's chain, or "".
func ClassOf(err error) Class {
	var e *Error
	if errors.As(err, &e) {
		return e.Class()
	}
	return ""
}

var (
	// ErrMalformedQuery indicates a missing key, type, or value.
	ErrMalformedQuery = newError(ClassProtocol, "4000", "malformed query")

	// ErrQueryNotSupported indicates an unknown verb.
	ErrQueryNotSupported = newError(ClassProtocol, "4001", "query not supported")

	// ErrInvalidValue indicates an unknown type name or a value that does not
	// parse as the declared type.
	ErrInvalidValue = newError(ClassProtocol, "4002", "invalid value for type")
)

var (
	// ErrKeyNotFound indicates select or delete on an absent key.
	ErrKeyNotFound = newError(ClassKey, "4040", "key not found")

	// ErrKeyExists indicates insert on a present key.
	ErrKeyExists = newError(ClassKey, "4090", "key already exists")
)
