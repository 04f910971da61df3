// Package optimize provides cost functions over parameter vectors and
// optimizers that minimize them.
package optimize

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/leapstack-labs/leapq/pkg/ansatz"
	"github.com/leapstack-labs/leapq/pkg/estimator"
	"github.com/leapstack-labs/leapq/pkg/hamiltonian"
)

// DefaultEpsilon is the finite-difference step.
const DefaultEpsilon = 1e-5

// ErrUnknownGradient is returned for an unsupported gradient type.
var ErrUnknownGradient = errors.New("unknown gradient type")

// GradientType selects how a cost function computes its gradient.
type GradientType string

// Gradient types.
const (
	GradientAnalytic         GradientType = "analytic"
	GradientFiniteDifference GradientType = "finite_difference"
)

// CostFunction maps a parameter vector to a value.
type CostFunction interface {
	Evaluate(ctx context.Context, params []float64) (float64, error)
	Gradient(ctx context.Context, params []float64) ([]float64, error)
}

// EvaluatingGradient is implemented by cost functions whose gradient is
// built from evaluations. GradientWith computes the gradient calling
// evaluate for every evaluation it needs.
type EvaluatingGradient interface {
	GradientWith(ctx context.Context, evaluate EvaluateFunc, params []float64) ([]float64, error)
}

// EvaluateFunc evaluates a cost at params.
type EvaluateFunc func(ctx context.Context, params []float64) (float64, error)

// Evaluation is one recorded call to a cost function.
type Evaluation struct {
	Params []float64
	Value  float64
}

// Recorder wraps a cost function and records every evaluation.
type Recorder struct {
	CostFunction

	mu      sync.Mutex
	history []Evaluation
}

// Record wraps f.
func Record(f CostFunction) *Recorder {
	return &Recorder{CostFunction: f}
}

// Evaluate evaluates the wrapped function and records the result.
func (r *Recorder) Evaluate(ctx context.Context, params []float64) (float64, error) {
	v, err := r.CostFunction.Evaluate(ctx, params)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	r.history = append(r.history, Evaluation{Params: append([]float64(nil), params...), Value: v})
	r.mu.Unlock()
	return v, nil
}

// Gradient computes the wrapped gradient. Evaluations made by a
// finite-difference gradient are recorded too.
func (r *Recorder) Gradient(ctx context.Context, params []float64) ([]float64, error) {
	if g, ok := r.CostFunction.(EvaluatingGradient); ok {
		return g.GradientWith(ctx, r.Evaluate, params)
	}
	return r.CostFunction.Gradient(ctx, params)
}

// History returns the recorded evaluations, oldest first.
func (r *Recorder) History() []Evaluation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Evaluation, len(r.history))
	copy(out, r.history)
	return out
}

// FiniteDifferenceGradient approximates the gradient of evaluate with
// central differences of step epsilon.
func FiniteDifferenceGradient(ctx context.Context, evaluate EvaluateFunc, params []float64, epsilon float64) ([]float64, error) {
	if epsilon <= 0 {
		epsilon = DefaultEpsilon
	}
	grad := make([]float64, len(params))
	shifted := append([]float64(nil), params...)
	for i := range params {
		shifted[i] = params[i] + epsilon
		plus, err := evaluate(ctx, shifted)
		if err != nil {
			return nil, err
		}
		shifted[i] = params[i] - epsilon
		minus, err := evaluate(ctx, shifted)
		if err != nil {
			return nil, err
		}
		shifted[i] = params[i]
		grad[i] = (plus - minus) / (2 * epsilon)
	}
	return grad, nil
}

// SumOfSquares is the cost sum(p_i^2), with gradient 2p.
type SumOfSquares struct {
	GradientType GradientType
	Epsilon      float64
}

// Evaluate returns the sum of squared parameters.
func (s SumOfSquares) Evaluate(ctx context.Context, params []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var sum float64
	for _, p := range params {
		sum += p * p
	}
	return sum, nil
}

// Gradient returns 2p or its finite-difference approximation.
func (s SumOfSquares) Gradient(ctx context.Context, params []float64) ([]float64, error) {
	return s.GradientWith(ctx, s.Evaluate, params)
}

// GradientWith is Gradient with finite differences taken through evaluate.
func (s SumOfSquares) GradientWith(ctx context.Context, evaluate EvaluateFunc, params []float64) ([]float64, error) {
	switch s.GradientType {
	case GradientAnalytic, "":
		grad := make([]float64, len(params))
		for i, p := range params {
			grad[i] = 2 * p
		}
		return grad, nil
	case GradientFiniteDifference:
		return FiniteDifferenceGradient(ctx, evaluate, params, s.Epsilon)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownGradient, s.GradientType)
	}
}

// AnsatzCost is the estimated expectation value of an operator on the
// state prepared by an ansatz.
type AnsatzCost struct {
	Ansatz    ansatz.Ansatz
	Operator  *hamiltonian.QubitOperator
	Estimator estimator.Estimator
	Backend   estimator.Backend
	Options   estimator.Options
	Epsilon   float64
}

// Evaluate binds params, estimates every term and returns their sum.
func (a *AnsatzCost) Evaluate(ctx context.Context, params []float64) (float64, error) {
	c, err := a.Ansatz.ExecutableCircuit(params)
	if err != nil {
		return 0, err
	}
	values, err := a.Estimator.EstimateExpectationValues(ctx, a.Backend, c, a.Operator, a.Options)
	if err != nil {
		return 0, err
	}
	return values.Sum(), nil
}

// Gradient uses finite differences.
func (a *AnsatzCost) Gradient(ctx context.Context, params []float64) ([]float64, error) {
	return a.GradientWith(ctx, a.Evaluate, params)
}

// GradientWith takes finite differences through evaluate.
func (a *AnsatzCost) GradientWith(ctx context.Context, evaluate EvaluateFunc, params []float64) ([]float64, error) {
	return FiniteDifferenceGradient(ctx, evaluate, params, a.Epsilon)
}
