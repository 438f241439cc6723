package scadparse

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError reports a lexical or syntactic problem in DSL source.
type ParseError struct {
	File      string // empty when parsing a string
	Line      int    // 1-based
	Col       int    // 1-based
	Token     string
	TokenType TokenType
	Msg       string
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Line, e.Col)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	if e.TokenType == EOF {
		return fmt.Sprintf("%s: %s (at end of input)", loc, e.Msg)
	}
	return fmt.Sprintf("%s: %s (got %s %q)", loc, e.Msg, e.TokenType, e.Token)
}

// WrapErrorWithSource returns an error whose message is a snippet of src
// with a caret under the offending column. Errors other than *ParseError
// are returned unchanged.
//
//	PARSE ERROR in lib.scad at 3:12: expected ")"
//
//	   2 | module hex(width = 10,
//	   3 |            height = [1, 2
//	     |            ^
//	   4 | ) {}
func WrapErrorWithSource(err error, src string) error {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return err
	}
	return fmt.Errorf("%s", snippet(src, pe.File, pe.Line, pe.Col, pe.Msg))
}

// snippet renders up to one line of context either side of line, with the
// caret clamped to the source bounds.
func snippet(src, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if line > len(lines) {
		line = len(lines)
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "PARSE ERROR in %s at %d:%d: %s\n\n", name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "PARSE ERROR at %d:%d: %s\n\n", line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
