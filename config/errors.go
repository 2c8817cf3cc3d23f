package config

import (
	"fmt"
	"strings"
)

// ParseError reports a document that is not well-formed TOML.
//
// Line and Column are 1-based and zero when the underlying decoder could not
// attribute the failure to a position (duplicate keys, for example).
type ParseError struct {
	// Source names the document, usually its file path. Empty for in-memory text.
	Source string
	Line   int
	Column int
	// Msg is the decoder's message without position information.
	Msg string
	// Context is a human-readable excerpt of the offending lines, if available.
	Context string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse ")
	if e.Source != "" {
		b.WriteString(e.Source)
	} else {
		b.WriteString("document")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	return b.String()
}

// Unwrap returns the decoder error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedValueError reports a value outside the Value variants, found
// either while converting decoded TOML or while emitting a Table built in
// memory.
type UnsupportedValueError struct {
	Path  []string
	Value any
}

// Error implements the error interface.
func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("unsupported value type %T at %q", e.Value, strings.Join(e.Path, "."))
}
