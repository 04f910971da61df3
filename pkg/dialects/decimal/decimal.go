// Package decimal evaluates core expressions with arbitrary-precision
// decimals from github.com/shopspring/decimal.
//
// Precision is the number of digits after the decimal point kept by
// division, powers and the exponential. Trigonometric functions use the
// library's fixed series approximations.
package decimal

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/dialects/numeric"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

// DefaultPrecision is the precision of the registered dialect.
const DefaultPrecision int32 = 16

const (
	// MaxExponent bounds the magnitude of a power's exponent.
	MaxExponent = 10_000
	// MaxDigits bounds the estimated integer (or leading zero) digits of a
	// power result.
	MaxDigits = 10_000
	// MaxExpArgument bounds |x| in exp(x). The Taylor series needs more
	// terms as |x| grows.
	MaxExpArgument = 1_000
)

var maxExpArgument = decimal.NewFromInt(MaxExpArgument)

var (
	// ErrNonFinite is returned for NaN or infinite literals, which decimals cannot hold.
	ErrNonFinite = errors.New("non-finite number")
	// ErrNegativeSqrt is returned for the square root of a negative value.
	ErrNegativeSqrt = errors.New("square root of negative number")
	// ErrOutOfRange is returned for powers and exponentials whose result
	// would be too large to compute.
	ErrOutOfRange = errors.New("result out of range")
)

func init() {
	symbolic.Register(Decimal)
}

// Decimal is the decimal dialect with no bindings and DefaultPrecision.
var Decimal = New(nil, DefaultPrecision)

// New returns a decimal dialect that resolves symbols from bindings.
// Unbound symbols fail with a *numeric.UnboundSymbolError.
func New(bindings map[string]decimal.Decimal, precision int32) *symbolic.Dialect[decimal.Decimal] {
	values := make(map[string]decimal.Decimal, len(bindings))
	for k, v := range bindings {
		values[k] = v
	}
	half := decimal.NewFromBigRat(big.NewRat(1, 2), precision)

	return symbolic.NewDialect[decimal.Decimal]("decimal").
		Describe(fmt.Sprintf("arbitrary-precision decimal evaluation (%d digits)", precision)).
		Symbols(func(s core.Symbol) (decimal.Decimal, error) {
			v, ok := values[s.Name]
			if !ok {
				return decimal.Zero, &numeric.UnboundSymbolError{Name: s.Name}
			}
			return v, nil
		}).
		Numbers(func(n core.Number) (decimal.Decimal, error) {
			if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
				return decimal.Zero, fmt.Errorf("%w: %v", ErrNonFinite, n.Value)
			}
			return decimal.NewFromFloat(n.Value), nil
		}).
		Function(core.OpAdd, symbolic.Fold(decimal.Decimal.Add)).
		Function(core.OpMul, symbolic.Fold(decimal.Decimal.Mul)).
		Function(core.OpSub, symbolic.Binary(decimal.Decimal.Sub)).
		Function(core.OpDiv, symbolic.BinaryE(func(a, b decimal.Decimal) (decimal.Decimal, error) {
			if b.IsZero() {
				return decimal.Zero, numeric.ErrDivisionByZero
			}
			return a.DivRound(b, precision), nil
		})).
		Function(core.OpPow, symbolic.BinaryE(func(a, b decimal.Decimal) (decimal.Decimal, error) {
			if err := checkPow(a, b); err != nil {
				return decimal.Zero, err
			}
			return a.PowWithPrecision(b, precision)
		})).
		Function(core.OpCos, symbolic.Unary(decimal.Decimal.Cos)).
		Function(core.OpSin, symbolic.Unary(decimal.Decimal.Sin)).
		Function(core.OpTan, symbolic.Unary(decimal.Decimal.Tan)).
		Function(core.OpExp, symbolic.UnaryE(func(x decimal.Decimal) (decimal.Decimal, error) {
			if x.Abs().GreaterThan(maxExpArgument) {
				return decimal.Zero, fmt.Errorf("%w: exp(%s)", ErrOutOfRange, x)
			}
			return x.ExpTaylor(precision)
		})).
		Function(core.OpSqrt, symbolic.UnaryE(func(x decimal.Decimal) (decimal.Decimal, error) {
			switch {
			case x.IsNegative():
				return decimal.Zero, fmt.Errorf("%w: %s", ErrNegativeSqrt, x)
			case x.IsZero():
				return decimal.Zero, nil
			}
			return x.PowWithPrecision(half, precision)
		})).
		Build()
}

// checkPow rejects a^b when b is too large or the result would carry more
// than MaxDigits digits before or after the decimal point.
func checkPow(a, b decimal.Decimal) error {
	if b.Abs().GreaterThan(decimal.NewFromInt(MaxExponent)) {
		return fmt.Errorf("%w: exponent %s exceeds %d", ErrOutOfRange, b, MaxExponent)
	}
	if a.IsZero() {
		return nil
	}
	// floor(log10|a|) + 1
	magnitude := float64(a.NumDigits() + int(a.Exponent()))
	if digits := math.Abs(b.InexactFloat64() * magnitude); digits > MaxDigits {
		return fmt.Errorf("%w: %s^%s has about %.0f digits, limit %d", ErrOutOfRange, a, b, digits, MaxDigits)
	}
	return nil
}

// Evaluate computes e with the given bindings, rounded to precision digits.
func Evaluate(e core.Expression, bindings map[string]decimal.Decimal, precision int32) (decimal.Decimal, error) {
	v, err := symbolic.Translate(e, New(bindings, precision))
	if err != nil {
		return decimal.Zero, err
	}
	return v.Round(precision), nil
}

// FromFloats converts float64 bindings to decimals.
func FromFloats(bindings map[string]float64) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(bindings))
	for k, v := range bindings {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("binding %s: %w: %v", k, ErrNonFinite, v)
		}
		out[k] = decimal.NewFromFloat(v)
	}
	return out, nil
}
