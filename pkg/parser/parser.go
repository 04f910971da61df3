// Package parser reads infix expression text into core expression trees.
//
// The grammar covers what gate parameters need:
//
//	expr    := sum
//	sum     := product (("+" | "-") product)*
//	product := unary (("*" | "/") unary)*
//	unary   := ("-" | "+") unary | power
//	power   := primary (("^" | "**") unary)?
//	primary := NUMBER | IDENT | "%" IDENT | IDENT "(" args ")" | "(" expr ")"
//
// Function names are lowercased so Quil style COS(%theta) and Python style
// cos(theta) produce the same tree. The identifier pi is read as the number π.
package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapq/pkg/core"
)

// Precedence levels for infix operators.
const (
	PrecedenceNone = iota
	PrecedenceSum
	PrecedenceProduct
	PrecedenceUnary
	PrecedencePower
)

// Parser is a Pratt parser over a token stream.
type Parser struct {
	lexer *Lexer
	token Token
	peek  Token
	err   error
}

// Parse parses a complete expression.
func Parse(input string) (core.Expression, error) {
	p := NewParser(input)
	return p.ParseExpression()
}

// MustParse is like Parse but panics on error.
func MustParse(input string) core.Expression {
	e, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return e
}

// ParseAll parses each input, stopping at the first error.
func ParseAll(inputs []string) ([]core.Expression, error) {
	out := make([]core.Expression, len(inputs))
	for i, in := range inputs {
		e, err := Parse(in)
		if err != nil {
			return nil, fmt.Errorf("expression %d (%q): %w", i, in, err)
		}
		out[i] = e
	}
	return out, nil
}

// NewParser creates a parser for input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	// Prime token and peek
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.token = p.peek
	if p.err != nil {
		p.peek = Token{Type: TOKEN_EOF}
		return
	}
	tok, err := p.lexer.NextToken()
	if err != nil {
		p.err = err
		tok = Token{Type: TOKEN_EOF}
	}
	p.peek = tok
}

// ParseExpression parses the whole input as one expression.
func (p *Parser) ParseExpression() (core.Expression, error) {
	if p.token.Type == TOKEN_EOF && p.err == nil {
		return nil, &ParseError{Pos: p.token.Pos, Message: msgEmptyExpression}
	}

	expr, err := p.parseExpressionWithPrecedence(PrecedenceSum)
	if p.err != nil {
		return nil, p.err
	}
	if err != nil {
		return nil, err
	}
	if p.token.Type != TOKEN_EOF {
		return nil, &ParseError{Pos: p.token.Pos, Message: fmt.Sprintf(msgTrailingInput, p.token.Literal)}
	}
	return expr, nil
}

// parseExpressionWithPrecedence implements precedence climbing for binary operators.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) (core.Expression, error) {
	left, err := p.parsePrefixExpr()
	if err != nil {
		return nil, err
	}

	for {
		prec := infixPrecedence(p.token.Type)
		if prec == PrecedenceNone || prec < minPrecedence {
			return left, nil
		}

		op := p.token.Type
		p.nextToken()

		// Power is right-associative and binds its right operand as a unary.
		next := prec + 1
		if op == TOKEN_CARET {
			next = PrecedenceUnary
		}
		right, err := p.parseExpressionWithPrecedence(next)
		if err != nil {
			return nil, err
		}
		left = combine(op, left, right)
	}
}

func infixPrecedence(t TokenType) int {
	switch t {
	case TOKEN_PLUS, TOKEN_MINUS:
		return PrecedenceSum
	case TOKEN_STAR, TOKEN_SLASH:
		return PrecedenceProduct
	case TOKEN_CARET:
		return PrecedencePower
	default:
		return PrecedenceNone
	}
}

// combine builds the call for a binary operator, flattening add and mul chains.
func combine(op TokenType, left, right core.Expression) core.Expression {
	var name string
	switch op {
	case TOKEN_PLUS:
		name = core.OpAdd
	case TOKEN_MINUS:
		return core.Sub(left, right)
	case TOKEN_STAR:
		name = core.OpMul
	case TOKEN_SLASH:
		return core.Div(left, right)
	default:
		return core.Pow(left, right)
	}

	if call, ok := left.(core.FunctionCall); ok && call.Name == name && len(call.Args) >= 2 {
		args := make([]core.Expression, 0, len(call.Args)+1)
		args = append(args, call.Args...)
		return core.Call(name, append(args, right)...)
	}
	return core.Call(name, left, right)
}

// parsePrefixExpr parses unary operators and primary expressions.
func (p *Parser) parsePrefixExpr() (core.Expression, error) {
	switch p.token.Type {
	case TOKEN_MINUS:
		p.nextToken()
		operand, err := p.parseExpressionWithPrecedence(PrecedenceUnary)
		if err != nil {
			return nil, err
		}
		if n, ok := operand.(core.Number); ok {
			return core.Num(-n.Value), nil
		}
		return core.Neg(operand), nil

	case TOKEN_PLUS:
		p.nextToken()
		return p.parseExpressionWithPrecedence(PrecedenceUnary)

	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (core.Expression, error) {
	tok := p.token
	switch tok.Type {
	case TOKEN_NUMBER:
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, &ParseError{Pos: tok.Pos, Message: msgInvalidNumber}
		}
		p.nextToken()
		return core.Num(v), nil

	case TOKEN_PARAM:
		p.nextToken()
		return core.Sym(tok.Literal), nil

	case TOKEN_IDENT:
		if p.peek.Type == TOKEN_LPAREN {
			return p.parseCall()
		}
		p.nextToken()
		if strings.EqualFold(tok.Literal, "pi") {
			return core.Num(math.Pi), nil
		}
		return core.Sym(tok.Literal), nil

	case TOKEN_LPAREN:
		p.nextToken()
		inner, err := p.parseExpressionWithPrecedence(PrecedenceSum)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TOKEN_RPAREN); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		if p.err != nil {
			return nil, p.err
		}
		return nil, &ParseError{Pos: tok.Pos, Message: fmt.Sprintf(msgUnexpectedToken, tok.Type, "expression")}
	}
}

func (p *Parser) parseCall() (core.Expression, error) {
	name := strings.ToLower(p.token.Literal)
	p.nextToken() // name
	p.nextToken() // (

	var args []core.Expression
	if p.token.Type != TOKEN_RPAREN {
		for {
			arg, err := p.parseExpressionWithPrecedence(PrecedenceSum)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.token.Type != TOKEN_COMMA {
				break
			}
			p.nextToken()
		}
	}
	if err := p.expect(TOKEN_RPAREN); err != nil {
		return nil, err
	}
	return core.Call(name, args...), nil
}

func (p *Parser) expect(t TokenType) error {
	if p.token.Type != t {
		if p.err != nil {
			return p.err
		}
		return &ParseError{Pos: p.token.Pos, Message: fmt.Sprintf(msgUnexpectedToken, p.token.Type, t)}
	}
	p.nextToken()
	return nil
}
