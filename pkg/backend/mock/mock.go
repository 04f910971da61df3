// Package mock provides seeded random backends for exercising estimators
// and optimizers without quantum hardware.
package mock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/google/uuid"

	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/leapstack-labs/leapq/pkg/estimator"
	"github.com/leapstack-labs/leapq/pkg/hamiltonian"
	"github.com/leapstack-labs/leapq/pkg/measurement"
)

// DefaultNumSamples is the shot count used when Config.NumSamples is zero.
const DefaultNumSamples = 1000

// ErrUnboundCircuit is returned when a circuit still has free parameters.
var ErrUnboundCircuit = errors.New("circuit has unbound parameters")

var (
	_ estimator.Backend   = (*Backend)(nil)
	_ estimator.Simulator = (*Simulator)(nil)
)

// Config configures a mock backend.
type Config struct {
	NumSamples int
	Seed       uint64
	Logger     *slog.Logger
}

// Job records one RunCircuitsetAndMeasure call.
type Job struct {
	ID    uuid.UUID
	Shots []int
}

// Backend returns uniformly random bitstrings.
type Backend struct {
	numSamples int
	logger     *slog.Logger

	mu   sync.Mutex
	rng  *rand.Rand
	jobs []Job
}

// New creates a mock backend.
func New(cfg Config) *Backend {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	n := cfg.NumSamples
	if n <= 0 {
		n = DefaultNumSamples
	}
	return &Backend{
		numSamples: n,
		logger:     logger,
		rng:        rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
	}
}

// NumSamples returns the default shot count.
func (b *Backend) NumSamples() int { return b.numSamples }

// RunCircuitsetAndMeasure samples random outcomes for each circuit.
func (b *Backend) RunCircuitsetAndMeasure(ctx context.Context, circuits []*circuit.Circuit, shots []int) ([]measurement.Measurements, error) {
	if shots != nil && len(shots) != len(circuits) {
		return nil, fmt.Errorf("got %d shot counts for %d circuits", len(shots), len(circuits))
	}
	for i, c := range circuits {
		if free := c.FreeSymbols(); len(free) > 0 {
			return nil, fmt.Errorf("circuit %d: %w: %v", i, ErrUnboundCircuit, free)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	job := Job{ID: uuid.New(), Shots: make([]int, len(circuits))}
	out := make([]measurement.Measurements, len(circuits))
	for i, c := range circuits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := b.numSamples
		if shots != nil {
			n = shots[i]
		}
		job.Shots[i] = n
		out[i] = b.sample(c.NQubits, n)
	}
	b.jobs = append(b.jobs, job)
	b.logger.Debug("mock job complete", "job_id", job.ID.String(), "circuits", len(circuits))
	return out, nil
}

func (b *Backend) sample(nQubits, n int) measurement.Measurements {
	bitstrings := make([]measurement.Bitstring, n)
	for i := range bitstrings {
		bits := make(measurement.Bitstring, nQubits)
		for q := range bits {
			bits[q] = uint8(b.rng.IntN(2))
		}
		bitstrings[i] = bits
	}
	return measurement.Measurements{Bitstrings: bitstrings}
}

// Jobs returns the jobs run so far, oldest first.
func (b *Backend) Jobs() []Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Job, len(b.jobs))
	copy(out, b.jobs)
	return out
}

// float returns a random value in [0, 1).
func (b *Backend) float() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rng.Float64()
}

// Simulator is a mock backend that also reports random exact expectation
// values in [-1, 1), with the constant term fixed at 1.
type Simulator struct {
	*Backend
}

// NewSimulator creates a mock simulator.
func NewSimulator(cfg Config) *Simulator {
	return &Simulator{Backend: New(cfg)}
}

// ExactExpectationValues returns one value per term of op.
func (s *Simulator) ExactExpectationValues(ctx context.Context, c *circuit.Circuit, op *hamiltonian.QubitOperator) (measurement.ExpectationValues, error) {
	if err := ctx.Err(); err != nil {
		return measurement.ExpectationValues{}, err
	}
	if free := c.FreeSymbols(); len(free) > 0 {
		return measurement.ExpectationValues{}, fmt.Errorf("%w: %v", ErrUnboundCircuit, free)
	}
	terms := op.Terms()
	values := make([]float64, len(terms))
	for i, t := range terms {
		if t.Pauli.IsIdentity() {
			values[i] = 1
			continue
		}
		values[i] = 2*s.float() - 1
	}
	return measurement.ExpectationValues{Values: values}, nil
}
