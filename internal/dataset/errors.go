package dataset

import (
	"fmt"
	"strings"
)

// ParseError reports a structural problem with a result file: a missing
// header, a wrong delimiter, a ragged row or non-numeric text in a strict
// numeric column. It aborts the load.
type ParseError struct {
	Path   string // file name, empty for readers
	Line   int    // 1-based line, 0 when not known
	Column string // column name, empty for row-level errors
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// CoercionWarning records a value of a permissive numeric column that was
// not a number. The value is stored as missing and the load continues.
type CoercionWarning struct {
	Line   int
	Column string
	Value  string
}

func (w CoercionWarning) String() string {
	return fmt.Sprintf("line %d: column %q: %q is not a number, treated as missing", w.Line, w.Column, w.Value)
}
