// Package estimator computes expectation values of qubit operators on a
// state prepared by a circuit, either from sampled measurements or exactly
// on a simulator.
package estimator

import (
	"context"

	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/leapstack-labs/leapq/pkg/hamiltonian"
	"github.com/leapstack-labs/leapq/pkg/measurement"
)

// Backend runs circuits and returns sampled measurements.
type Backend interface {
	// RunCircuitsetAndMeasure runs each circuit with the matching number of
	// shots. A nil shots slice means the backend's default for every circuit.
	RunCircuitsetAndMeasure(ctx context.Context, circuits []*circuit.Circuit, shots []int) ([]measurement.Measurements, error)
	// NumSamples returns the default number of shots per circuit.
	NumSamples() int
}

// Simulator is a backend that can also compute exact expectation values.
type Simulator interface {
	Backend
	ExactExpectationValues(ctx context.Context, c *circuit.Circuit, op *hamiltonian.QubitOperator) (measurement.ExpectationValues, error)
}

// Estimator estimates the expectation value of every term of an operator.
type Estimator interface {
	EstimateExpectationValues(ctx context.Context, backend Backend, c *circuit.Circuit, op *hamiltonian.QubitOperator, opts Options) (measurement.ExpectationValues, error)
}

// ShotAllocation selects how shots are split between measurement frames.
type ShotAllocation string

// Shot allocation strategies.
const (
	// AllocationUniform runs every frame with the same number of shots.
	AllocationUniform ShotAllocation = "uniform"
	// AllocationOptimal divides a total budget in proportion to each frame's
	// estimated standard deviation.
	AllocationOptimal ShotAllocation = "optimal"
)

// Options configures one estimation.
type Options struct {
	// NSamples is the per-frame shot count for uniform allocation.
	// Zero uses the backend default.
	NSamples int
	// NTotalSamples is the total shot budget for optimal allocation.
	NTotalSamples int
	// Allocation defaults to AllocationUniform.
	Allocation ShotAllocation
	// Prior expectation values refine variances for optimal allocation.
	Prior *measurement.ExpectationValues
}
