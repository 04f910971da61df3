package canonical_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/dialects/canonical"
	"github.com/leapstack-labs/leapq/pkg/parser"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

func TestBind(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		bindings map[string]float64
		want     string
	}{
		{"fully bound", "2*x + 1", map[string]float64{"x": 3}, "7"},
		{"partially bound", "x*y + cos(0)", map[string]float64{"x": 2}, "2*y + 1"},
		{"unbound kept", "theta + gamma", nil, "theta + gamma"},
		{"nested fold", "sin(x)^2 + y", map[string]float64{"x": 0}, "0 + y"},
		{"division by zero kept symbolic", "1/(x - 2)", map[string]float64{"x": 2}, "1/0"},
		{"bound value renders", "x", map[string]float64{"x": -0.5}, "-0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := canonical.Bind(parser.MustParse(tt.input), tt.bindings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestSimplify_PreservesSymbolicStructure(t *testing.T) {
	e := parser.MustParse("2*x + cos(y)")
	got, err := canonical.Simplify(e)
	require.NoError(t, err)

	if diff := cmp.Diff(e, got); diff != "" {
		t.Errorf("Simplify changed a tree with no constant subtrees (-want +got):\n%s", diff)
	}
}

func TestSimplify_FoldsConstants(t *testing.T) {
	got, err := canonical.Simplify(core.Mul(core.Add(core.Num(1), core.Num(2)), core.Sym("x")))
	require.NoError(t, err)
	assert.True(t, core.Equal(core.Mul(core.Num(3), core.Sym("x")), got))
}

func TestSimplify_ArityError(t *testing.T) {
	_, err := canonical.Simplify(core.Call(core.OpCos, core.Num(1), core.Num(2)))
	require.Error(t, err)

	var arity *symbolic.ArityError
	require.True(t, errors.As(err, &arity))
	assert.Equal(t, core.OpCos, arity.Function)
}

func TestSimplify_UnsupportedOperator(t *testing.T) {
	_, err := canonical.Simplify(core.Call("log", core.Sym("x")))
	assert.ErrorIs(t, err, symbolic.ErrUnsupportedOperator)
}

func TestRegistered(t *testing.T) {
	d, ok := symbolic.Lookup[core.Expression]("canonical")
	require.True(t, ok)
	assert.Same(t, canonical.Canonical, d)
	assert.ElementsMatch(t, core.CanonicalOperators, d.FunctionNames())
}
