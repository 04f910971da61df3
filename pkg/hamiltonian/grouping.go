package hamiltonian

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/leapstack-labs/leapq/pkg/measurement"
)

// Decomposition methods accepted by DecompositionFunction.
const (
	MethodGreedy       = "greedy"
	MethodGreedySorted = "greedy-sorted"
)

var (
	// ErrUnknownDecomposition is returned for an unrecognized decomposition method.
	ErrUnknownDecomposition = errors.New("grouping is not implemented")
	// ErrExpectationValueCount is returned when expectation values do not line up with group terms.
	ErrExpectationValueCount = errors.New("number of expectation values does not match number of terms")
)

// IsComeasureable reports whether two Pauli terms can be measured together:
// on every qubit both act on, they apply the same operator.
func IsComeasureable(a, b PauliTerm) bool {
	for _, fa := range a {
		for _, fb := range b {
			if fa.Qubit == fb.Qubit && fa.Op != fb.Op {
				return false
			}
		}
	}
	return true
}

// GroupComeasureableTermsGreedy assigns each non-identity term to the first
// group it is co-measureable with, starting a new group otherwise. With
// sortTerms, terms are visited by decreasing absolute coefficient.
func GroupComeasureableTermsGreedy(op *QubitOperator, sortTerms bool) []*QubitOperator {
	terms := op.Terms()
	if sortTerms {
		sort.SliceStable(terms, func(i, j int) bool {
			return math.Abs(terms[i].Coefficient) > math.Abs(terms[j].Coefficient)
		})
	}

	var groups []*QubitOperator
	for _, term := range terms {
		if term.Pauli.IsIdentity() {
			continue
		}
		assigned := false
		for _, group := range groups {
			if comeasureableWithAll(term.Pauli, group) {
				group.Add(term.Pauli, term.Coefficient)
				assigned = true
				break
			}
		}
		if !assigned {
			g := NewOperator()
			g.Add(term.Pauli, term.Coefficient)
			groups = append(groups, g)
		}
	}
	return groups
}

func comeasureableWithAll(t PauliTerm, group *QubitOperator) bool {
	for _, other := range group.Terms() {
		if !IsComeasureable(t, other.Pauli) {
			return false
		}
	}
	return true
}

// DecompositionFunction returns the grouping function for a method name.
func DecompositionFunction(method string) (func(*QubitOperator) []*QubitOperator, error) {
	switch method {
	case MethodGreedySorted:
		return func(op *QubitOperator) []*QubitOperator { return GroupComeasureableTermsGreedy(op, true) }, nil
	case MethodGreedy:
		return func(op *QubitOperator) []*QubitOperator { return GroupComeasureableTermsGreedy(op, false) }, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDecomposition, method)
	}
}

// ComputeGroupVariances returns the variance of each group. Without
// expectation values every Pauli variance is taken as its upper bound 1;
// otherwise a term with expectation value e has variance 1 - e². Covariances
// are ignored. Expectation values are consumed in group then term order.
func ComputeGroupVariances(groups []*QubitOperator, expecval *measurement.ExpectationValues) ([]float64, error) {
	variances := make([]float64, len(groups))
	if expecval == nil {
		for i, g := range groups {
			for _, c := range g.Coefficients() {
				variances[i] += c * c
			}
		}
		return variances, nil
	}

	total := 0
	for _, g := range groups {
		total += g.Len()
	}
	if total != len(expecval.Values) {
		return nil, fmt.Errorf("%w: %d terms, %d values", ErrExpectationValueCount, total, len(expecval.Values))
	}

	offset := 0
	for i, g := range groups {
		for _, c := range g.Coefficients() {
			e := expecval.Values[offset]
			variances[i] += c * c * (1 - e*e)
			offset++
		}
	}
	return variances, nil
}

// MeasurementEstimate is the result of EstimateNMeas.
type MeasurementEstimate struct {
	// K2 is the number of measurements needed for precision epsilon = 1.
	K2 float64
	// NTerms is the number of grouped terms.
	NTerms int
	// FrameMeasurements is the optimal share of measurements per group.
	FrameMeasurements []float64
}

// EstimateNMeasForFrames estimates the measurement budget for already
// grouped frame operators: M ~ (sum_i sqrt(Var_i))² / epsilon².
func EstimateNMeasForFrames(frames []*QubitOperator, expecval *measurement.ExpectationValues) (MeasurementEstimate, error) {
	variances, err := ComputeGroupVariances(frames, expecval)
	if err != nil {
		return MeasurementEstimate{}, err
	}

	sqrtLambda := 0.0
	for _, v := range variances {
		sqrtLambda += math.Sqrt(v)
	}
	est := MeasurementEstimate{FrameMeasurements: make([]float64, len(variances))}
	for i, v := range variances {
		est.FrameMeasurements[i] = sqrtLambda * math.Sqrt(v)
		est.K2 += est.FrameMeasurements[i]
	}
	for _, f := range frames {
		est.NTerms += f.Len()
	}
	return est, nil
}

// EstimateNMeas groups the terms of op with the given method and estimates
// the number of measurements needed to compute its expectation value.
func EstimateNMeas(op *QubitOperator, method string, expecval *measurement.ExpectationValues) (MeasurementEstimate, error) {
	decompose, err := DecompositionFunction(method)
	if err != nil {
		return MeasurementEstimate{}, err
	}
	return EstimateNMeasForFrames(decompose(op), expecval)
}
