package optimize

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
)

// ErrNoParameters is returned when minimizing over an empty vector.
var ErrNoParameters = errors.New("no parameters to optimize")

// Result is the outcome of a minimization.
type Result struct {
	OptValue  float64
	OptParams []float64
	NFev      int
	History   []Evaluation
}

// Optimizer minimizes a cost function from an initial point.
type Optimizer interface {
	Minimize(ctx context.Context, cost CostFunction, initial []float64) (Result, error)
}

// RandomStep shifts every parameter by a random amount in [0, 1) and
// evaluates once.
type RandomStep struct {
	Seed   uint64
	Logger *slog.Logger
}

// Minimize returns the shifted point. initial is not modified.
func (r RandomStep) Minimize(ctx context.Context, cost CostFunction, initial []float64) (Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rng := rand.New(rand.NewPCG(r.Seed, r.Seed+1))

	params := make([]float64, len(initial))
	for i, p := range initial {
		params[i] = p + rng.Float64()
	}

	rec := Record(cost)
	v, err := rec.Evaluate(ctx, params)
	if err != nil {
		return Result{}, err
	}
	logger.Debug("random step", "value", v)
	return Result{OptValue: v, OptParams: params, NFev: 1, History: rec.History()}, nil
}

// GradientDescent takes fixed-size steps against the gradient until the
// gradient norm falls below Tolerance or MaxIter steps are taken.
type GradientDescent struct {
	LearningRate float64
	MaxIter      int
	Tolerance    float64
	Logger       *slog.Logger
}

// Minimize runs gradient descent from initial.
func (g GradientDescent) Minimize(ctx context.Context, cost CostFunction, initial []float64) (Result, error) {
	if len(initial) == 0 {
		return Result{}, ErrNoParameters
	}
	logger := g.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rate := g.LearningRate
	if rate <= 0 {
		rate = 0.1
	}
	maxIter := g.MaxIter
	if maxIter <= 0 {
		maxIter = 100
	}

	rec := Record(cost)
	params := append([]float64(nil), initial...)
	for iter := 0; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		grad, err := rec.Gradient(ctx, params)
		if err != nil {
			return Result{}, err
		}
		var norm float64
		for _, d := range grad {
			norm += d * d
		}
		norm = math.Sqrt(norm)
		if norm < g.Tolerance {
			logger.Debug("gradient descent converged", "iter", iter, "norm", norm)
			break
		}
		for i := range params {
			params[i] -= rate * grad[i]
		}
	}

	v, err := rec.Evaluate(ctx, params)
	if err != nil {
		return Result{}, err
	}
	history := rec.History()
	return Result{OptValue: v, OptParams: params, NFev: len(history), History: history}, nil
}
