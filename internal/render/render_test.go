package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapq/internal/render"
	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/dialects/numeric"

	_ "github.com/leapstack-labs/leapq/pkg/dialects/canonical"
	_ "github.com/leapstack-labs/leapq/pkg/dialects/decimal"
	_ "github.com/leapstack-labs/leapq/pkg/dialects/qiskit"
	_ "github.com/leapstack-labs/leapq/pkg/dialects/quil"
)

func TestSource(t *testing.T) {
	bindings := map[string]float64{"theta": 0.5}

	tests := []struct {
		dialect string
		input   string
		want    string
	}{
		{"quil", "2*x + cos(y)", "2*%x + COS(%y)"},
		{"QUIL", "theta", "%theta"},
		{"qiskit", "2*theta + cos(gamma)", "2*theta + cos(gamma)"},
		{"canonical", "theta + phi", "0.5 + phi"},
		{"numeric", "4*theta", "2"},
		{"decimal", "1/4 + theta", "0.75"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect+"/"+tt.input, func(t *testing.T) {
			got, err := render.Source(tt.dialect, tt.input, bindings, 16)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSource_Errors(t *testing.T) {
	_, err := render.Source("cirq", "x", nil, 16)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dialect")

	_, err = render.Source("numeric", "x + 1", nil, 16)
	assert.ErrorIs(t, err, numeric.ErrUnboundSymbol)

	_, err = render.Source("quil", "2*(", nil, 16)
	assert.Error(t, err)
}

func TestParseBindings(t *testing.T) {
	got, err := render.ParseBindings([]string{"theta=0.5", " phi = -2 "})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"theta": 0.5, "phi": -2}, got)

	for _, bad := range []string{"theta", "=1", "theta=abc"} {
		_, err := render.ParseBindings([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestMergeBindings(t *testing.T) {
	base := map[string]float64{"a": 1, "b": 2}
	override := map[string]float64{"b": 3}

	got := render.MergeBindings(base, override)
	assert.Equal(t, map[string]float64{"a": 1, "b": 3}, got)
	assert.Equal(t, 2.0, base["b"])
}

func TestCircuit(t *testing.T) {
	c := circuit.New(2)
	require.NoError(t, c.Append(circuit.H, 0))
	require.NoError(t, c.Append(circuit.RX(core.Mul(core.Num(2), core.Sym("theta"))), 1))

	quil, err := render.Circuit(c, render.TargetQuil, nil)
	require.NoError(t, err)
	assert.Contains(t, quil, "DEFCIRCUIT ANSATZ(%theta)")

	qasm, err := render.Circuit(c, render.TargetQASM, map[string]float64{"theta": 0.25})
	require.NoError(t, err)
	assert.Contains(t, qasm, "rx(0.5) q[1];")

	_, err = render.Circuit(c, render.TargetQASM, nil)
	assert.Error(t, err, "QASM needs bound parameters")

	yml, err := render.Circuit(c, render.TargetYAML, nil)
	require.NoError(t, err)
	assert.Contains(t, yml, "2*theta")
}

func TestParseTarget(t *testing.T) {
	got, err := render.ParseTarget(" QASM ")
	require.NoError(t, err)
	assert.Equal(t, render.TargetQASM, got)

	_, err = render.ParseTarget("cirq")
	assert.Error(t, err)
}
