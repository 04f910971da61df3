package parser

import "fmt"

// TokenType identifies the lexical class of a token.
type TokenType int

// Token types produced by the Lexer.
const (
	TOKEN_ILLEGAL TokenType = iota
	TOKEN_EOF

	TOKEN_NUMBER // 2, 0.5, 1e-3
	TOKEN_IDENT  // theta, cos
	TOKEN_PARAM  // %theta (Quil parameter reference)

	TOKEN_PLUS   // +
	TOKEN_MINUS  // -
	TOKEN_STAR   // *
	TOKEN_SLASH  // /
	TOKEN_CARET  // ^ or **
	TOKEN_LPAREN // (
	TOKEN_RPAREN // )
	TOKEN_COMMA  // ,
)

var tokenNames = map[TokenType]string{
	TOKEN_ILLEGAL: "ILLEGAL",
	TOKEN_EOF:     "EOF",
	TOKEN_NUMBER:  "NUMBER",
	TOKEN_IDENT:   "IDENT",
	TOKEN_PARAM:   "PARAM",
	TOKEN_PLUS:    "+",
	TOKEN_MINUS:   "-",
	TOKEN_STAR:    "*",
	TOKEN_SLASH:   "/",
	TOKEN_CARET:   "^",
	TOKEN_LPAREN:  "(",
	TOKEN_RPAREN:  ")",
	TOKEN_COMMA:   ",",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", int(t))
}

// Position is a 1-based column offset into the input.
type Position struct {
	Offset int // byte offset, 0-based
	Column int // 1-based
}

// Token is a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}
