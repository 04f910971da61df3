package ansatz_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapq/pkg/ansatz"
	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/leapstack-labs/leapq/pkg/core"
)

func TestLayeredRotations(t *testing.T) {
	a, err := ansatz.NewLayeredRotations(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, a.NumberOfQubits())
	assert.Equal(t, 2, a.NumberOfLayers())

	symbols, err := a.Symbols()
	require.NoError(t, err)
	assert.Equal(t, []string{"theta_0_0", "theta_0_1", "theta_0_2", "theta_1_0", "theta_1_1", "theta_1_2"}, symbols)

	c, err := a.ParametrizedCircuit()
	require.NoError(t, err)
	assert.Len(t, c.Operations, 10)

	exec, err := a.ExecutableCircuit([]float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Empty(t, exec.FreeSymbols())
	assert.Equal(t, "RY(2) 1", exec.Operations[1].String())

	_, err = a.ExecutableCircuit([]float64{1})
	assert.ErrorIs(t, err, ansatz.ErrParameterCount)

	_, err = ansatz.NewLayeredRotations(0, 1)
	assert.Error(t, err)
}

func TestBaseCachesCircuit(t *testing.T) {
	calls := 0
	a, err := ansatz.NewBase(1, 1, func(layers int) (*circuit.Circuit, error) {
		calls++
		c := circuit.New(1)
		for l := 0; l < layers; l++ {
			if err := c.Append(circuit.RX(core.Sym("a")), 0); err != nil {
				return nil, err
			}
		}
		return c, nil
	})
	require.NoError(t, err)

	first, err := a.ParametrizedCircuit()
	require.NoError(t, err)
	second, err := a.ParametrizedCircuit()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	require.NoError(t, a.SetNumberOfLayers(3))
	third, err := a.ParametrizedCircuit()
	require.NoError(t, err)
	assert.Len(t, third.Operations, 3)
	assert.Equal(t, 2, calls)

	n, err := a.NumberOfParams()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, a.SetNumberOfLayers(-1), ansatz.ErrInvalidLayers)
	_, err = ansatz.NewBase(1, -2, nil)
	assert.ErrorIs(t, err, ansatz.ErrInvalidLayers)
}

func TestGeneratorError(t *testing.T) {
	boom := errors.New("boom")
	a, err := ansatz.NewBase(1, 1, func(int) (*circuit.Circuit, error) { return nil, boom })
	require.NoError(t, err)
	_, err = a.ExecutableCircuit(nil)
	assert.ErrorIs(t, err, boom)
}

func TestSymbolsMap(t *testing.T) {
	m, err := ansatz.SymbolsMap([]string{"a", "b"}, []float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a": 1, "b": 2}, m)

	_, err = ansatz.SymbolsMap([]string{"a"}, nil)
	assert.ErrorIs(t, err, ansatz.ErrParameterCount)
}
