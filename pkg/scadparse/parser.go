package scadparse

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// CallableKind distinguishes modules from functions.
type CallableKind int

const (
	Module CallableKind = iota
	Function
)

func (k CallableKind) String() string {
	if k == Function {
		return "function"
	}
	return "module"
}

// Callable is a module or function signature found at the top level of a
// DSL file. Parameters with a default value are keyword parameters; the
// rest are positional.
type Callable struct {
	Name       string
	Kind       CallableKind
	Positional []string
	Keyword    []string
	Line       int
}

// Variable is a top-level assignment.
type Variable struct {
	Name string
	Line int
}

// File is everything discovered in one DSL source file.
type File struct {
	Callables []Callable
	Variables []Variable
	Uses      []string // paths from "use <...>"
	Includes  []string // paths from "include <...>"
}

// Parse lexes and scans src.
func Parse(src string) (*File, error) {
	toks, err := Lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.file()
}

// ParseFile reads and parses the file at path. Parse errors carry the path.
func ParseFile(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := Parse(string(src))
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	return f, nil
}

// ParseFS is ParseFile over an fs.FS.
func ParseFS(fsys fs.FS, name string) (*File, error) {
	src, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	f, err := Parse(string(src))
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.File = name
		}
		return nil, err
	}
	return f, nil
}

// Signatures returns only the callables defined in src.
func Signatures(src string) ([]Callable, error) {
	f, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return f.Callables, nil
}

// ---------------------------------------------------------------------------
// Scanner over tokens
// ---------------------------------------------------------------------------

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) next() Token {
	t := p.toks[p.pos]
	if t.Type != EOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t Token, format string, args ...any) error {
	return &ParseError{
		Line:      t.Line,
		Col:       t.Col,
		Token:     t.Lexeme,
		TokenType: t.Type,
		Msg:       fmt.Sprintf(format, args...),
	}
}

func (p *parser) expect(lexeme string) (Token, error) {
	t := p.next()
	if !t.is(PUNCT, lexeme) {
		return t, p.errorf(t, "expected %q", lexeme)
	}
	return t, nil
}

func (p *parser) file() (*File, error) {
	f := &File{}
	for {
		t := p.peek()
		switch {
		case t.Type == EOF:
			return f, nil

		case t.is(KEYWORD, "module"), t.is(KEYWORD, "function"):
			c, err := p.definition()
			if err != nil {
				return nil, err
			}
			f.Callables = append(f.Callables, c)

		case t.is(KEYWORD, "use"), t.is(KEYWORD, "include"):
			p.next()
			path := p.next()
			if path.Type != PATH {
				return nil, p.errorf(path, "expected <path> after %s", t.Lexeme)
			}
			if t.Lexeme == "use" {
				f.Uses = append(f.Uses, path.Lexeme)
			} else {
				f.Includes = append(f.Includes, path.Lexeme)
			}
			if p.peek().is(PUNCT, ";") {
				p.next()
			}

		case t.Type == IDENT && p.toks[p.pos+1].is(PUNCT, "="):
			f.Variables = append(f.Variables, Variable{Name: t.Lexeme, Line: t.Line})
			p.next()
			p.next()
			if err := p.skipUntil(";"); err != nil {
				return nil, err
			}

		default:
			if err := p.statement(); err != nil {
				return nil, err
			}
		}
	}
}

// definition reads "module name(params) body" or
// "function name(params) = expr;".
func (p *parser) definition() (Callable, error) {
	kw := p.next()
	c := Callable{Kind: Module, Line: kw.Line}
	if kw.Lexeme == "function" {
		c.Kind = Function
	}

	name := p.next()
	if name.Type != IDENT {
		return c, p.errorf(name, "expected %s name", c.Kind)
	}
	c.Name = name.Lexeme

	if _, err := p.expect("("); err != nil {
		return c, err
	}
	if err := p.params(&c); err != nil {
		return c, err
	}

	if c.Kind == Function {
		if _, err := p.expect("="); err != nil {
			return c, err
		}
		return c, p.skipUntil(";")
	}
	return c, p.statement()
}

// params reads a parameter list up to and including the closing ")".
func (p *parser) params(c *Callable) error {
	for {
		t := p.next()
		switch {
		case t.is(PUNCT, ")"):
			return nil
		case t.Type == IDENT:
		default:
			return p.errorf(t, "expected parameter name")
		}

		after := p.next()
		switch {
		case after.is(PUNCT, "="):
			c.Keyword = append(c.Keyword, t.Lexeme)
			end, err := p.skipExpr()
			if err != nil {
				return err
			}
			if end.is(PUNCT, ")") {
				return nil
			}
		case after.is(PUNCT, ","):
			c.Positional = append(c.Positional, t.Lexeme)
		case after.is(PUNCT, ")"):
			c.Positional = append(c.Positional, t.Lexeme)
			return nil
		default:
			return p.errorf(after, "expected \",\", \"=\" or \")\" after parameter %s", t.Lexeme)
		}
	}
}

// skipExpr consumes a default-value expression up to a top-level "," or
// ")" and returns that terminator.
func (p *parser) skipExpr() (Token, error) {
	var stack []string
	for {
		t := p.next()
		switch {
		case t.Type == EOF:
			return t, p.errorf(t, "unexpected end of input in parameter list")
		case len(stack) == 0 && (t.is(PUNCT, ",") || t.is(PUNCT, ")")):
			return t, nil
		}
		var err error
		if stack, err = p.track(stack, t); err != nil {
			return t, err
		}
	}
}

// statement skips one statement: a block, or everything up to a top-level
// ";" (which may follow nested blocks, as in "if (x) { ... } else a();").
func (p *parser) statement() error {
	t := p.peek()
	if t.is(PUNCT, ";") {
		p.next()
		return nil
	}
	var stack []string
	for {
		t := p.next()
		if t.Type == EOF {
			if len(stack) == 0 {
				return nil
			}
			return p.errorf(t, "unexpected end of input, missing %q", closer[stack[len(stack)-1]])
		}
		var err error
		if stack, err = p.track(stack, t); err != nil {
			return err
		}
		if len(stack) > 0 {
			continue
		}
		if t.is(PUNCT, ";") {
			return nil
		}
		if t.is(PUNCT, "}") && !p.peek().is(KEYWORD, "else") {
			return nil
		}
	}
}

// skipUntil consumes tokens through the next top-level lexeme.
func (p *parser) skipUntil(lexeme string) error {
	var stack []string
	for {
		t := p.next()
		if t.Type == EOF {
			return p.errorf(t, "unexpected end of input, expected %q", lexeme)
		}
		if len(stack) == 0 && t.is(PUNCT, lexeme) {
			return nil
		}
		var err error
		if stack, err = p.track(stack, t); err != nil {
			return err
		}
	}
}

var closer = map[string]string{"(": ")", "[": "]", "{": "}"}

// track maintains the stack of open brackets, rejecting mismatched closers.
func (p *parser) track(stack []string, t Token) ([]string, error) {
	if t.Type != PUNCT {
		return stack, nil
	}
	switch t.Lexeme {
	case "(", "[", "{":
		return append(stack, t.Lexeme), nil
	case ")", "]", "}":
		if len(stack) == 0 || closer[stack[len(stack)-1]] != t.Lexeme {
			return stack, p.errorf(t, "unbalanced %q", t.Lexeme)
		}
		return stack[:len(stack)-1], nil
	}
	return stack, nil
}
