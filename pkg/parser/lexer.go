package parser

import (
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes expression input.
type Lexer struct {
	input string
	pos   int // byte offset of the next unread rune
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

func (l *Lexer) peek() (rune, int) {
	if l.pos >= len(l.input) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.input[l.pos:])
}

func (l *Lexer) position(offset int) Position {
	return Position{Offset: offset, Column: utf8.RuneCountInString(l.input[:offset]) + 1}
}

// NextToken returns the next token in the input.
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	start := l.pos
	r, size := l.peek()
	if size == 0 {
		return Token{Type: TOKEN_EOF, Pos: l.position(start)}, nil
	}

	single := func(t TokenType) (Token, error) {
		l.pos += size
		return Token{Type: t, Literal: l.input[start:l.pos], Pos: l.position(start)}, nil
	}

	switch {
	case r == '+':
		return single(TOKEN_PLUS)
	case r == '-':
		return single(TOKEN_MINUS)
	case r == '*':
		// ** is the Python power operator
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '*' {
			l.pos += 2
			return Token{Type: TOKEN_CARET, Literal: "**", Pos: l.position(start)}, nil
		}
		return single(TOKEN_STAR)
	case r == '/':
		return single(TOKEN_SLASH)
	case r == '^':
		return single(TOKEN_CARET)
	case r == '(':
		return single(TOKEN_LPAREN)
	case r == ')':
		return single(TOKEN_RPAREN)
	case r == ',':
		return single(TOKEN_COMMA)
	case r == '%':
		l.pos += size
		name := l.readIdent()
		if name == "" {
			return Token{}, &LexError{Pos: l.position(start), Message: "expected parameter name after %"}
		}
		return Token{Type: TOKEN_PARAM, Literal: name, Pos: l.position(start)}, nil
	case r == '.' || unicode.IsDigit(r):
		return l.readNumber(start)
	case isIdentStart(r):
		name := l.readIdent()
		return Token{Type: TOKEN_IDENT, Literal: name, Pos: l.position(start)}, nil
	default:
		return Token{}, &LexError{Pos: l.position(start), Message: "unexpected character " + string(r)}
	}
}

func (l *Lexer) skipWhitespace() {
	for {
		r, size := l.peek()
		if size == 0 || !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func (l *Lexer) readIdent() string {
	start := l.pos
	for {
		r, size := l.peek()
		if size == 0 || !(isIdentStart(r) || unicode.IsDigit(r)) {
			break
		}
		l.pos += size
	}
	return l.input[start:l.pos]
}

// readNumber reads digits, an optional fraction and an optional exponent.
func (l *Lexer) readNumber(start int) (Token, error) {
	digits := func() int {
		n := 0
		for l.pos < len(l.input) && l.input[l.pos] >= '0' && l.input[l.pos] <= '9' {
			l.pos++
			n++
		}
		return n
	}

	n := digits()
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		n += digits()
	}
	if n == 0 {
		return Token{}, &LexError{Pos: l.position(start), Message: msgInvalidNumber}
	}

	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		mark := l.pos
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if digits() == 0 {
			// Not an exponent after all (e.g. "2e" followed by an identifier)
			l.pos = mark
		}
	}

	return Token{Type: TOKEN_NUMBER, Literal: l.input[start:l.pos], Pos: l.position(start)}, nil
}
