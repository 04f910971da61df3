package mock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapq/internal/testutil"
	"github.com/leapstack-labs/leapq/pkg/backend/mock"
	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/estimator"
	"github.com/leapstack-labs/leapq/pkg/hamiltonian"
)

func bellCircuit(t *testing.T) *circuit.Circuit {
	t.Helper()
	c := circuit.New(2)
	require.NoError(t, c.Append(circuit.H, 0))
	require.NoError(t, c.Append(circuit.CNOT, 0, 1))
	return c
}

func TestBackendRun(t *testing.T) {
	b := mock.New(mock.Config{NumSamples: 50, Seed: 7, Logger: testutil.NewTestLogger(t)})
	c := bellCircuit(t)

	results, err := b.RunCircuitsetAndMeasure(context.Background(), []*circuit.Circuit{c, c}, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, m := range results {
		require.Len(t, m.Bitstrings, 50)
		for _, bits := range m.Bitstrings {
			assert.Len(t, bits, 2)
		}
	}

	results, err = b.RunCircuitsetAndMeasure(context.Background(), []*circuit.Circuit{c}, []int{3})
	require.NoError(t, err)
	assert.Len(t, results[0].Bitstrings, 3)

	jobs := b.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, []int{50, 50}, jobs[0].Shots)
	assert.Equal(t, []int{3}, jobs[1].Shots)
	assert.NotEqual(t, jobs[0].ID, jobs[1].ID)
}

func TestBackendDeterministicSeed(t *testing.T) {
	c := bellCircuit(t)
	run := func() string {
		b := mock.New(mock.Config{NumSamples: 20, Seed: 42})
		results, err := b.RunCircuitsetAndMeasure(context.Background(), []*circuit.Circuit{c}, nil)
		require.NoError(t, err)
		out := ""
		for _, bits := range results[0].Bitstrings {
			out += bits.String()
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestBackendErrors(t *testing.T) {
	b := mock.New(mock.Config{})
	assert.Equal(t, mock.DefaultNumSamples, b.NumSamples())

	c := bellCircuit(t)
	_, err := b.RunCircuitsetAndMeasure(context.Background(), []*circuit.Circuit{c}, []int{1, 2})
	assert.Error(t, err)

	param := circuit.New(1)
	require.NoError(t, param.Append(circuit.RX(core.Sym("theta")), 0))
	_, err = b.RunCircuitsetAndMeasure(context.Background(), []*circuit.Circuit{param}, nil)
	assert.ErrorIs(t, err, mock.ErrUnboundCircuit)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.RunCircuitsetAndMeasure(ctx, []*circuit.Circuit{c}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulatorExactExpectationValues(t *testing.T) {
	s := mock.NewSimulator(mock.Config{Seed: 1})
	op, err := hamiltonian.ParseOperator("0.5 [Z0] + 2 [] + -1 [X0 X1]")
	require.NoError(t, err)

	values, err := s.ExactExpectationValues(context.Background(), bellCircuit(t), op)
	require.NoError(t, err)
	require.Len(t, values.Values, 3)
	assert.Equal(t, 1.0, values.Values[1])
	for _, v := range values.Values {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.Less(t, v, 1.0+1e-12)
	}

	est, err := estimator.ExactEstimator{}.EstimateExpectationValues(context.Background(), s, bellCircuit(t), op, estimator.Options{})
	require.NoError(t, err)
	assert.Len(t, est.Values, 3)
}

func TestBasicEstimatorWithMockBackend(t *testing.T) {
	b := mock.New(mock.Config{NumSamples: 100, Seed: 3})
	op, err := hamiltonian.ParseOperator("1 [Z0 Z1] + 0.5 [X0] + -2 []")
	require.NoError(t, err)

	est := estimator.NewBasicEstimator(hamiltonian.MethodGreedy, testutil.NewTestLogger(t))
	values, err := est.EstimateExpectationValues(context.Background(), b, bellCircuit(t), op, estimator.Options{
		Allocation:    estimator.AllocationOptimal,
		NTotalSamples: 90,
	})
	require.NoError(t, err)
	require.Len(t, values.Values, 3)
	assert.Equal(t, -2.0, values.Values[2])

	jobs := b.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, []int{60, 30}, jobs[0].Shots)
}

func TestBackendLogsJobs(t *testing.T) {
	logger, logs := testutil.NewCaptureLogger()
	b := mock.New(mock.Config{NumSamples: 5, Seed: 1, Logger: logger})

	_, err := b.RunCircuitsetAndMeasure(context.Background(), []*circuit.Circuit{bellCircuit(t)}, nil)
	require.NoError(t, err)

	jobs := b.Jobs()
	require.Len(t, jobs, 1)
	assert.Contains(t, logs.String(), "mock job complete")
	assert.Contains(t, logs.String(), "job_id="+jobs[0].ID.String())
}
