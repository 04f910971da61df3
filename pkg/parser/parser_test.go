package parser_test

import (
	"errors"
	"math"
	"testing"

	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	x, y := core.Sym("x"), core.Sym("y")

	tests := []struct {
		name  string
		input string
		want  core.Expression
	}{
		{"number", "2", core.Num(2)},
		{"float", "0.5", core.Num(0.5)},
		{"leading dot", ".25", core.Num(0.25)},
		{"exponent", "1e-3", core.Num(0.001)},
		{"symbol", "theta_1", core.Sym("theta_1")},
		{"quil param", "%theta", core.Sym("theta")},
		{"pi", "pi", core.Num(math.Pi)},
		{"negative literal", "-1.5", core.Num(-1.5)},
		{"negated symbol", "-x", core.Neg(x)},
		{"unary plus", "+x", x},
		{"scenario", "2*x + cos(y)", core.Add(core.Mul(core.Num(2), x), core.Cos(y))},
		{"precedence", "x + y*2", core.Add(x, core.Mul(y, core.Num(2)))},
		{"parens", "(x + y)*2", core.Mul(core.Add(x, y), core.Num(2))},
		{"sub left assoc", "x - y - 1", core.Sub(core.Sub(x, y), core.Num(1))},
		{"div left assoc", "x / y / 2", core.Div(core.Div(x, y), core.Num(2))},
		{"add flattens", "x + y + 1", core.Add(x, y, core.Num(1))},
		{"pow right assoc", "x^2^3", core.Pow(x, core.Pow(core.Num(2), core.Num(3)))},
		{"python pow", "x**2", core.Pow(x, core.Num(2))},
		{"neg binds looser than pow", "-x^2", core.Neg(core.Pow(x, core.Num(2)))},
		{"negative exponent", "2^-1", core.Pow(core.Num(2), core.Num(-1))},
		{"quil call", "COS(%theta)", core.Cos(core.Sym("theta"))},
		{"multi arg call", "pow(x, 2)", core.Pow(x, core.Num(2))},
		{"nullary call", "f()", core.Call("f")},
		{"parenthesized negative", "(-1)*x", core.Mul(core.Num(-1), x)},
		{"whitespace", "  x\t+\n1 ", core.Add(x, core.Num(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.input)
			require.NoError(t, err)
			assert.True(t, core.Equal(tt.want, got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestParse_RoundTripsString(t *testing.T) {
	x, y := core.Sym("x"), core.Sym("y")
	exprs := []core.Expression{
		core.Add(core.Mul(core.Num(2), x), core.Cos(y)),
		core.Sub(x, core.Sub(y, core.Num(1))),
		core.Div(x, core.Mul(y, core.Num(2))),
		core.Pow(core.Pow(x, core.Num(2)), core.Num(3)),
		core.Neg(core.Tan(x)),
		core.Add(x, core.Num(-1)),
		core.Pow(x, core.Num(-0.5)),
		core.Sqrt(core.Exp(core.Mul(core.Num(0.5), x))),
		core.Add(x, core.Sub(y, core.Num(1))),
		core.Add(x, core.Add(y, core.Num(1))),
		core.Add(core.Sub(x, y), core.Num(1)),
		core.Mul(x, core.Div(y, core.Num(2))),
		core.Sub(core.Add(x, y), core.Num(1)),
	}

	for _, e := range exprs {
		t.Run(e.String(), func(t *testing.T) {
			got, err := parser.Parse(e.String())
			require.NoError(t, err)
			assert.True(t, core.Equal(e, got), "want %s, got %s", e, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		column int
		lex    bool
	}{
		{"empty", "", 1, false},
		{"blank", "   ", 4, false},
		{"dangling operator", "x +", 4, false},
		{"unclosed paren", "(x + 1", 7, false},
		{"trailing", "x y", 3, false},
		{"missing call close", "cos(x", 6, false},
		{"bad char", "x $ 1", 3, true},
		{"bare percent", "% + 1", 1, true},
		{"lone dot", ".", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, parser.ErrSyntax)

			if tt.lex {
				var lexErr *parser.LexError
				require.True(t, errors.As(err, &lexErr), "want LexError, got %T", err)
				assert.Equal(t, tt.column, lexErr.Pos.Column)
				return
			}
			var parseErr *parser.ParseError
			require.True(t, errors.As(err, &parseErr), "want ParseError, got %T", err)
			assert.Equal(t, tt.column, parseErr.Pos.Column)
		})
	}
}

func TestParse_RejectsOverflow(t *testing.T) {
	// Literals that overflow float64 would otherwise become +Inf, which has
	// no literal syntax.
	_, err := parser.Parse("1e999")
	assert.ErrorIs(t, err, parser.ErrSyntax)
}

func TestPointer(t *testing.T) {
	_, err := parser.Parse("x $ 1")
	require.Error(t, err)
	assert.Equal(t, "x $ 1\n  ^", parser.Pointer("x $ 1", err))

	_, err = parser.Parse("(x + 1")
	require.Error(t, err)
	assert.Equal(t, "(x + 1\n      ^", parser.Pointer("(x + 1", err))

	assert.Empty(t, parser.Pointer("x", errors.New("other")))
}

func TestParseAll(t *testing.T) {
	got, err := parser.ParseAll([]string{"theta", "2*theta"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2*theta", got[1].String())

	_, err = parser.ParseAll([]string{"theta", "2*"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expression 1")
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { parser.MustParse("(") })
}
