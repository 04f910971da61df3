package measurement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapq/pkg/measurement"
)

func measurements(t *testing.T, bits ...string) measurement.Measurements {
	t.Helper()
	var m measurement.Measurements
	for _, s := range bits {
		b, err := measurement.ParseBitstring(s)
		require.NoError(t, err)
		m.Bitstrings = append(m.Bitstrings, b)
	}
	return m
}

func TestConcatenate(t *testing.T) {
	got := measurement.Concatenate(
		measurement.ExpectationValues{Values: []float64{1, 2}},
		measurement.ExpectationValues{},
		measurement.ExpectationValues{Values: []float64{3}},
	)
	assert.Equal(t, []float64{1, 2, 3}, got.Values)
	assert.Equal(t, 6.0, got.Sum())
}

func TestParseBitstring(t *testing.T) {
	b, err := measurement.ParseBitstring("0110")
	require.NoError(t, err)
	assert.Equal(t, measurement.Bitstring{0, 1, 1, 0}, b)
	assert.Equal(t, "0110", b.String())

	_, err = measurement.ParseBitstring("012")
	assert.Error(t, err)
}

func TestParityExpectation(t *testing.T) {
	m := measurements(t, "00", "01", "11", "11")

	tests := []struct {
		name   string
		qubits []int
		want   float64
	}{
		{"identity", nil, 1},
		{"Z0", []int{0}, 0},
		{"Z1", []int{1}, -0.5},
		{"Z0 Z1", []int{0, 1}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ParityExpectation(tt.qubits)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	got, err := measurement.Measurements{}.ParityExpectation([]int{0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestParityExpectation_QubitOutOfRange(t *testing.T) {
	m := measurements(t, "00", "01")
	for _, qubits := range [][]int{{2}, {0, 5}, {-1}} {
		_, err := m.ParityExpectation(qubits)
		assert.ErrorIs(t, err, measurement.ErrQubitOutOfRange, "qubits %v", qubits)
	}
}

func TestDistributionAndCounts(t *testing.T) {
	m := measurements(t, "00", "11", "11", "01")

	dist := m.Distribution()
	assert.InDelta(t, 0.5, dist["11"], 1e-12)
	assert.InDelta(t, 0.25, dist["00"], 1e-12)

	counts := m.Counts()
	require.Len(t, counts, 3)
	assert.Equal(t, measurement.Count{Bitstring: "11", N: 2}, counts[0])
	assert.Equal(t, "00", counts[1].Bitstring)
}
