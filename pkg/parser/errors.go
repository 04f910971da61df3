package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSyntax matches every error returned by the lexer and parser.
var ErrSyntax = errors.New("syntax error")

// ParseError reports a token sequence that does not form an expression.
type ParseError struct {
	Pos     Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at column %d: %s", e.Pos.Column, e.Message)
}

func (e *ParseError) Is(target error) bool { return target == ErrSyntax }

// LexError reports input that cannot be split into tokens.
type LexError struct {
	Pos     Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("invalid input at column %d: %s", e.Pos.Column, e.Message)
}

func (e *LexError) Is(target error) bool { return target == ErrSyntax }

// Pointer renders input with a caret under the offending column, for
// errors produced by this package. Other errors yield "".
func Pointer(input string, err error) string {
	var col int
	var lexErr *LexError
	var parseErr *ParseError
	switch {
	case errors.As(err, &lexErr):
		col = lexErr.Pos.Column
	case errors.As(err, &parseErr):
		col = parseErr.Pos.Column
	default:
		return ""
	}
	if col < 1 {
		col = 1
	}
	return input + "\n" + strings.Repeat(" ", col-1) + "^"
}

const (
	msgUnexpectedToken = "unexpected token %s, expected %s"
	msgInvalidNumber   = "invalid number literal"
	msgEmptyExpression = "empty expression"
	msgTrailingInput   = "unexpected trailing input %q"
)
