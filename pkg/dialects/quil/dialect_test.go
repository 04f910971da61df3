package quil_test

import (
	"errors"
	"math"
	"testing"

	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/dialects/quil"
	"github.com/leapstack-labs/leapq/pkg/parser"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2*x + cos(y)", "2*%x + COS(%y)"},
		{"tan(theta)", "SIN(%theta)/COS(%theta)"},
		{"sqrt(exp(x))", "SQRT(EXP(%x))"},
		{"x - (y - 1)", "%x - (%y - 1)"},
		{"x - y - 1", "%x - %y - 1"},
		{"(x + y)*z", "(%x + %y)*%z"},
		{"(x^2)^y", "(%x^2)^%y"},
		{"x^y^2", "%x^%y^2"},
		{"x^(-0.5)", "%x^(-0.5)"},
		{"-x", "(-1)*%x"},
		{"x/(y*2)", "%x/(%y*2)"},
		{"sin(x) + 0.25", "SIN(%x) + 0.25"},
		{"pi/2*x", "pi/2*%x"},
		{"1 + 2", "3"},
		{"2^3*x", "8*%x"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := quil.Translate(parser.MustParse(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestTranslate_NaryAddFoldsLeft(t *testing.T) {
	x, y, z := core.Sym("x"), core.Sym("y"), core.Sym("z")
	got, err := quil.Translate(core.Add(x, y, z))
	require.NoError(t, err)

	want := quil.Add(quil.Add(quil.Parameter{Name: "x"}, quil.Parameter{Name: "y"}), quil.Parameter{Name: "z"})
	assert.Equal(t, want, got)
	assert.Equal(t, "%x + %y + %z", got.String())
}

func TestTranslate_UnsupportedOperator(t *testing.T) {
	_, err := quil.Translate(core.Call("log", core.Sym("x")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, symbolic.ErrUnsupportedOperator))

	var opErr *symbolic.UnsupportedOperatorError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "log", opErr.Operator)
	assert.Equal(t, "quil", opErr.Dialect)
}

func TestTranslate_SameNameSameParameter(t *testing.T) {
	a, err := quil.Translate(core.Sym("theta"))
	require.NoError(t, err)
	b, err := quil.Translate(core.Sym("theta"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "0"},
		{1, "1"},
		{0.5, "0.5"},
		{-2.25, "-2.25"},
		{math.Pi, "pi"},
		{-math.Pi, "-pi"},
		{2 * math.Pi, "2*pi"},
		{math.Pi / 2, "pi/2"},
		{-math.Pi / 4, "-pi/4"},
		{3 * math.Pi / 4, "3*pi/4"},
		{math.Inf(1), "+Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, quil.FormatNumber(tt.value))
		})
	}
}

func TestParameters(t *testing.T) {
	e, err := quil.Translate(parser.MustParse("x*y + cos(x) - z"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, quil.Parameters(e))
	assert.Empty(t, quil.Parameters(quil.Number(1)))
}

func TestToCore(t *testing.T) {
	inputs := []string{
		"2*x + cos(y)",
		"x - (y - 1)",
		"sqrt(exp(x))/sin(y)",
		"x^2",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			want := parser.MustParse(in)
			native, err := quil.Translate(want)
			require.NoError(t, err)

			got, err := quil.ToCore(native)
			require.NoError(t, err)
			assert.True(t, core.Equal(want, got), "want %s, got %s", want, got)
		})
	}
}

func TestToCore_Tan(t *testing.T) {
	native, err := quil.Translate(core.Tan(core.Sym("x")))
	require.NoError(t, err)

	got, err := quil.ToCore(native)
	require.NoError(t, err)
	assert.True(t, core.Equal(core.Div(core.Sin(core.Sym("x")), core.Cos(core.Sym("x"))), got))
}

func TestToCore_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		expr quil.Expression
	}{
		{"cis", quil.Function{Name: quil.FuncCis, Arg: quil.Parameter{Name: "x"}}},
		{"nested cis", quil.Add(quil.Number(1), quil.Function{Name: quil.FuncCis, Arg: quil.Number(0)})},
		{"unknown operator", quil.BinaryExpression{Op: "%", Left: quil.Number(1), Right: quil.Number(2)}},
		{"nil", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := quil.ToCore(tt.expr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, symbolic.ErrUnsupportedExpressionKind))
		})
	}
}

func TestRegistered(t *testing.T) {
	d, ok := symbolic.Lookup[quil.Expression]("QUIL")
	require.True(t, ok)
	assert.Same(t, quil.Quil, d)
	for _, op := range core.CanonicalOperators {
		assert.True(t, d.Supports(op), op)
	}
}
