package scadparse

import "fmt"

// TokenType classifies a token.
type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL
	IDENT   // width, $fn
	NUMBER  // 10, 2.5, .5, 1e-3
	STRING  // "text", lexeme includes the quotes
	KEYWORD // module, function, use, ...
	PUNCT   // ( ) [ ] { } , ; = and operators
	PATH    // <lib/file.scad> after use or include, lexeme without brackets
)

func (t TokenType) String() string {
	switch t {
	case EOF:
		return "EOF"
	case ILLEGAL:
		return "ILLEGAL"
	case IDENT:
		return "IDENT"
	case NUMBER:
		return "NUMBER"
	case STRING:
		return "STRING"
	case KEYWORD:
		return "KEYWORD"
	case PUNCT:
		return "PUNCT"
	case PATH:
		return "PATH"
	default:
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
}

// Token is a lexical token. Line and Col are 1-based.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int
	Col    int
}

func (t Token) is(typ TokenType, lexeme string) bool {
	return t.Type == typ && t.Lexeme == lexeme
}

var keywords = map[string]bool{
	"module":   true,
	"function": true,
	"if":       true,
	"else":     true,
	"let":      true,
	"for":      true,
	"each":     true,
	"assert":   true,
	"echo":     true,
	"true":     true,
	"false":    true,
	"use":      true,
	"include":  true,
}

// IsKeyword reports whether word is reserved in the CAD DSL.
func IsKeyword(word string) bool {
	return keywords[word]
}

var twoCharPunct = map[string]bool{
	"==": true, "!=": true, "<=": true, ">=": true, "&&": true, "||": true,
}

// lexer scans CAD DSL source into tokens.
type lexer struct {
	src  string
	cur  int
	line int // 1-based
	col  int // 1-based

	tokens []Token
}

// Lex splits src into tokens, dropping whitespace and comments. The result
// always ends with an EOF token.
func Lex(src string) ([]Token, error) {
	l := &lexer{src: src, line: 1, col: 1}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *lexer) atEnd() bool { return l.cur >= len(l.src) }

func (l *lexer) peek(n int) byte {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *lexer) advance() byte {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *lexer) errAt(line, col int, lexeme, msg string) error {
	return &ParseError{Line: line, Col: col, Token: lexeme, TokenType: ILLEGAL, Msg: msg}
}

func (l *lexer) emit(typ TokenType, start, line, col int) {
	l.tokens = append(l.tokens, Token{Type: typ, Lexeme: l.src[start:l.cur], Line: line, Col: col})
}

func (l *lexer) lastIsDirective() bool {
	if len(l.tokens) == 0 {
		return false
	}
	last := l.tokens[len(l.tokens)-1]
	return last.Type == KEYWORD && (last.Lexeme == "use" || last.Lexeme == "include")
}

func (l *lexer) run() error {
	for {
		if err := l.skipTrivia(); err != nil {
			return err
		}
		if l.atEnd() {
			l.tokens = append(l.tokens, Token{Type: EOF, Line: l.line, Col: l.col})
			return nil
		}

		start, line, col := l.cur, l.line, l.col
		ch := l.peek(0)
		switch {
		case ch == '<' && l.lastIsDirective():
			l.advance()
			for !l.atEnd() && l.peek(0) != '>' && l.peek(0) != '\n' {
				l.advance()
			}
			if l.atEnd() || l.peek(0) != '>' {
				return l.errAt(line, col, l.src[start:l.cur], "unterminated include path")
			}
			l.tokens = append(l.tokens, Token{Type: PATH, Lexeme: l.src[start+1 : l.cur], Line: line, Col: col})
			l.advance()

		case isAlpha(ch) || ch == '$':
			l.advance()
			for !l.atEnd() && isAlphaNum(l.peek(0)) {
				l.advance()
			}
			if keywords[l.src[start:l.cur]] {
				l.emit(KEYWORD, start, line, col)
			} else {
				l.emit(IDENT, start, line, col)
			}

		case isDigit(ch) || (ch == '.' && isDigit(l.peek(1))):
			l.scanNumber()
			if isAlpha(l.peek(0)) && allDigits(l.src[start:l.cur]) {
				// identifiers may start with a digit: 2d_profile
				for !l.atEnd() && isAlphaNum(l.peek(0)) {
					l.advance()
				}
				l.emit(IDENT, start, line, col)
				break
			}
			l.emit(NUMBER, start, line, col)

		case ch == '"':
			if err := l.scanString(line, col); err != nil {
				return err
			}
			l.emit(STRING, start, line, col)

		case twoCharPunct[l.src[l.cur:min(l.cur+2, len(l.src))]]:
			l.advance()
			l.advance()
			l.emit(PUNCT, start, line, col)

		case isPunct(ch):
			l.advance()
			l.emit(PUNCT, start, line, col)

		default:
			return l.errAt(line, col, string(ch), fmt.Sprintf("unexpected character %q", ch))
		}
	}
}

// skipTrivia consumes whitespace, line comments and block comments.
func (l *lexer) skipTrivia() error {
	for !l.atEnd() {
		switch ch := l.peek(0); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == '/' && l.peek(1) == '/':
			for !l.atEnd() && l.peek(0) != '\n' {
				l.advance()
			}
		case ch == '/' && l.peek(1) == '*':
			line, col := l.line, l.col
			l.advance()
			l.advance()
			for {
				if l.atEnd() {
					return l.errAt(line, col, "/*", "unterminated block comment")
				}
				if l.peek(0) == '*' && l.peek(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

// scanNumber consumes 12, 1.5, .5, 1., 1e3 and 2.5E-4.
func (l *lexer) scanNumber() {
	for isDigit(l.peek(0)) {
		l.advance()
	}
	if l.peek(0) == '.' {
		l.advance()
		for isDigit(l.peek(0)) {
			l.advance()
		}
	}
	if e := l.peek(0); e == 'e' || e == 'E' {
		sign := l.peek(1)
		switch {
		case isDigit(sign):
			l.advance()
		case (sign == '+' || sign == '-') && isDigit(l.peek(2)):
			l.advance()
			l.advance()
		default:
			return
		}
		for isDigit(l.peek(0)) {
			l.advance()
		}
	}
}

// scanString consumes a double-quoted string with backslash escapes.
func (l *lexer) scanString(line, col int) error {
	start := l.cur
	l.advance()
	for !l.atEnd() {
		switch l.advance() {
		case '"':
			return nil
		case '\\':
			if l.atEnd() {
				return l.errAt(line, col, l.src[start:l.cur], "unfinished escape sequence")
			}
			l.advance()
		}
	}
	return l.errAt(line, col, l.src[start:l.cur], "string was not terminated")
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return isAlpha(b) || isDigit(b)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return s != ""
}

func isPunct(b byte) bool {
	switch b {
	case '(', ')', '[', ']', '{', '}', ',', ';', '=', '+', '-', '*', '/', '%',
		'!', '<', '>', '?', ':', '.', '#', '^':
		return true
	}
	return false
}
