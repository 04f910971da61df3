package estimator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/leapstack-labs/leapq/pkg/hamiltonian"
	"github.com/leapstack-labs/leapq/pkg/measurement"
)

var (
	// ErrInvalidAllocation is returned for an unknown shot allocation strategy.
	ErrInvalidAllocation = errors.New("invalid shot allocation strategy")
	// ErrSampleOptions is returned for a sample count that does not fit the strategy.
	ErrSampleOptions = errors.New("invalid sample options")
	// ErrNotSimulator is returned when ExactEstimator gets a backend that cannot simulate.
	ErrNotSimulator = errors.New("to use the exact estimator, the backend must be a simulator")
)

// BasicEstimator measures each group of co-measureable terms in its own
// frame: the state circuit followed by a basis change.
type BasicEstimator struct {
	// DecompositionMethod defaults to hamiltonian.MethodGreedySorted.
	DecompositionMethod string
	Logger              *slog.Logger
}

// NewBasicEstimator returns a BasicEstimator for the given decomposition method.
func NewBasicEstimator(method string, logger *slog.Logger) *BasicEstimator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BasicEstimator{DecompositionMethod: method, Logger: logger}
}

// EstimateExpectationValues returns one value per grouped term, each scaled
// by its coefficient, followed by the constant term if op has one.
func (e *BasicEstimator) EstimateExpectationValues(ctx context.Context, backend Backend, c *circuit.Circuit, op *hamiltonian.QubitOperator, opts Options) (measurement.ExpectationValues, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	method := e.DecompositionMethod
	if method == "" {
		method = hamiltonian.MethodGreedySorted
	}
	allocation := opts.Allocation
	if allocation == "" {
		allocation = AllocationUniform
	}
	if allocation != AllocationUniform && allocation != AllocationOptimal {
		return measurement.ExpectationValues{}, fmt.Errorf("%w: %s", ErrInvalidAllocation, allocation)
	}

	decompose, err := hamiltonian.DecompositionFunction(method)
	if err != nil {
		return measurement.ExpectationValues{}, err
	}

	groups := decompose(op)
	frameCircuits := make([]*circuit.Circuit, len(groups))
	frameOperators := make([]*hamiltonian.QubitOperator, len(groups))
	for i, group := range groups {
		selection, frame, err := ContextSelectionCircuitForGroup(group)
		if err != nil {
			return measurement.ExpectationValues{}, err
		}
		frameCircuits[i] = c.Concat(selection)
		// Measure every qubit the frame reads, including idle ones.
		if n := frame.NumQubits(); frameCircuits[i].NQubits < n {
			frameCircuits[i].NQubits = n
		}
		frameOperators[i] = frame
	}

	var shots []int
	switch allocation {
	case AllocationUniform:
		if opts.NTotalSamples != 0 {
			return measurement.ExpectationValues{}, fmt.Errorf("%w: uniform sampling does not support a total sample count", ErrSampleOptions)
		}
		if opts.NSamples > 0 {
			logger.Warn("using per-call sample count instead of backend default",
				"n_samples", opts.NSamples,
				"backend_n_samples", backend.NumSamples())
			shots = make([]int, len(frameCircuits))
			for i := range shots {
				shots[i] = opts.NSamples
			}
		}

	case AllocationOptimal:
		if opts.NTotalSamples <= 0 {
			return measurement.ExpectationValues{}, fmt.Errorf("%w: optimal allocation requires a total sample count", ErrSampleOptions)
		}
		if opts.NSamples != 0 {
			return measurement.ExpectationValues{}, fmt.Errorf("%w: optimal allocation does not support a per-frame sample count", ErrSampleOptions)
		}
		est, err := hamiltonian.EstimateNMeasForFrames(frameOperators, opts.Prior)
		if err != nil {
			return measurement.ExpectationValues{}, err
		}
		shots, err = ScaleAndDiscretize(est.FrameMeasurements, opts.NTotalSamples)
		if err != nil {
			return measurement.ExpectationValues{}, err
		}
	}

	logger.Debug("running measurement frames", "frames", len(frameCircuits), "allocation", string(allocation), "shots", shots)
	results, err := backend.RunCircuitsetAndMeasure(ctx, frameCircuits, shots)
	if err != nil {
		return measurement.ExpectationValues{}, fmt.Errorf("failed to run frames: %w", err)
	}
	if len(results) != len(frameOperators) {
		return measurement.ExpectationValues{}, fmt.Errorf("backend returned %d results for %d frames", len(results), len(frameOperators))
	}

	sets := make([]measurement.ExpectationValues, 0, len(frameOperators)+1)
	for i, frame := range frameOperators {
		values, err := FrameExpectationValues(results[i], frame)
		if err != nil {
			return measurement.ExpectationValues{}, fmt.Errorf("frame %d: %w", i, err)
		}
		sets = append(sets, values)
	}
	if constant, ok := op.Constant(); ok {
		sets = append(sets, measurement.ExpectationValues{Values: []float64{constant}})
	}
	return measurement.Concatenate(sets...), nil
}

// FrameExpectationValues returns coefficient times the parity expectation
// of each Z-string term in frame.
func FrameExpectationValues(m measurement.Measurements, frame *hamiltonian.QubitOperator) (measurement.ExpectationValues, error) {
	terms := frame.Terms()
	values := make([]float64, len(terms))
	for i, t := range terms {
		parity, err := m.ParityExpectation(t.Pauli.Qubits())
		if err != nil {
			return measurement.ExpectationValues{}, fmt.Errorf("term %s: %w", t.Pauli, err)
		}
		values[i] = t.Coefficient * parity
	}
	return measurement.ExpectationValues{Values: values}, nil
}

// ExactEstimator delegates to a simulator's exact expectation values.
type ExactEstimator struct{}

// EstimateExpectationValues requires backend to be a Simulator.
func (ExactEstimator) EstimateExpectationValues(ctx context.Context, backend Backend, c *circuit.Circuit, op *hamiltonian.QubitOperator, _ Options) (measurement.ExpectationValues, error) {
	sim, ok := backend.(Simulator)
	if !ok {
		return measurement.ExpectationValues{}, ErrNotSimulator
	}
	return sim.ExactExpectationValues(ctx, c, op)
}

// ScaleAndDiscretize scales values to integers summing to total. Each value
// is scaled and truncated; the shortfall goes one unit at a time to the
// entries with the largest truncated remainders.
func ScaleAndDiscretize(values []float64, total int) ([]int, error) {
	var sum float64
	for _, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("cannot scale negative value %v", v)
		}
		sum += v
	}
	if sum == 0 {
		return nil, errors.New("cannot scale values that sum to zero")
	}

	scale := float64(total) / sum
	result := make([]int, len(values))
	remainders := make([]float64, len(values))
	assigned := 0
	for i, v := range values {
		scaled := v * scale
		result[i] = int(scaled)
		remainders[i] = scaled - float64(result[i])
		assigned += result[i]
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return remainders[order[a]] > remainders[order[b]] })
	for i := 0; i < total-assigned; i++ {
		result[order[i%len(order)]]++
	}
	return result, nil
}
