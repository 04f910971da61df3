package decimal_test

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapq/pkg/core"
	decimaldialect "github.com/leapstack-labs/leapq/pkg/dialects/decimal"
	"github.com/leapstack-labs/leapq/pkg/dialects/numeric"
	"github.com/leapstack-labs/leapq/pkg/parser"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

func TestEvaluate_Exact(t *testing.T) {
	bindings := map[string]decimal.Decimal{
		"x": decimal.RequireFromString("0.1"),
		"y": decimal.RequireFromString("0.2"),
	}

	tests := []struct {
		input string
		want  string
	}{
		{"x + y", "0.3"},
		{"x*y", "0.02"},
		{"y - x - x", "0"},
		{"1/3", "0.3333333333333333"},
		{"2^10", "1024"},
		{"sqrt(0)", "0"},
		{"(x + y)*10", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := decimaldialect.Evaluate(parser.MustParse(tt.input), bindings, decimaldialect.DefaultPrecision)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestEvaluate_MatchesFloat(t *testing.T) {
	floats := map[string]float64{"theta": 0.3, "gamma": 1.7}
	bindings, err := decimaldialect.FromFloats(floats)
	require.NoError(t, err)

	inputs := []string{
		"cos(theta) + sin(gamma)",
		"tan(theta)",
		"exp(theta*2)",
		"sqrt(gamma)",
		"sqrt(16)",
		"gamma^theta",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			e := parser.MustParse(in)
			want, err := numeric.Evaluate(e, floats)
			require.NoError(t, err)

			got, err := decimaldialect.Evaluate(e, bindings, decimaldialect.DefaultPrecision)
			require.NoError(t, err)
			assert.InDelta(t, want, got.InexactFloat64(), 1e-9)
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  core.Expression
		target error
	}{
		{"unbound", parser.MustParse("x + 1"), numeric.ErrUnboundSymbol},
		{"division by zero", parser.MustParse("1/(2 - 2)"), numeric.ErrDivisionByZero},
		{"negative sqrt", parser.MustParse("sqrt(-4)"), decimaldialect.ErrNegativeSqrt},
		{"nan literal", core.Num(math.NaN()), decimaldialect.ErrNonFinite},
		{"unsupported", core.Call("log", core.Num(1)), symbolic.ErrUnsupportedOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decimaldialect.Evaluate(tt.input, nil, decimaldialect.DefaultPrecision)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
}

func TestEvaluate_OutOfRange(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"3^20000000", true},
		{"3^-20000000", true},
		{"2^10000", false},
		{"10^4999", false},
		{"10^10001", true},
		{"123456^5000", true},
		{"0.001^4000", false},
		{"0.001^6000", true},
		{"0^20000", true},
		{"0^100", false},
		{"(2^5000)^2", false},
		{"(2^5000)^8", true},
		{"exp(10)", false},
		{"exp(1000000)", true},
		{"exp(-1000000)", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := decimaldialect.Evaluate(parser.MustParse(tt.input), nil, decimaldialect.DefaultPrecision)
			if tt.wantErr {
				assert.ErrorIs(t, err, decimaldialect.ErrOutOfRange)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestFromFloats_RejectsNonFinite(t *testing.T) {
	_, err := decimaldialect.FromFloats(map[string]float64{"x": math.Inf(1)})
	assert.ErrorIs(t, err, decimaldialect.ErrNonFinite)
}

func TestRegistered(t *testing.T) {
	d, ok := symbolic.Lookup[decimal.Decimal]("decimal")
	require.True(t, ok)
	assert.Same(t, decimaldialect.Decimal, d)
	assert.ElementsMatch(t, core.CanonicalOperators, d.FunctionNames())
}
