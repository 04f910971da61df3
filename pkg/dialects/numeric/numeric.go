// Package numeric evaluates core expressions to float64 values.
//
// The dialect resolves symbols through a bindings map; a symbol without a
// binding is an error rather than NaN, so partially bound circuits are
// caught before they reach a backend.
package numeric

import (
	"errors"
	"fmt"
	"math"

	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

// ErrUnboundSymbol matches any *UnboundSymbolError via errors.Is.
var ErrUnboundSymbol = errors.New("unbound symbol")

// ErrDivisionByZero is returned when a divisor evaluates to zero.
var ErrDivisionByZero = errors.New("division by zero")

// UnboundSymbolError is returned when a symbol has no binding.
type UnboundSymbolError struct {
	Name string
}

func (e *UnboundSymbolError) Error() string {
	return fmt.Sprintf("symbol %q has no bound value", e.Name)
}

// Is makes errors.Is(err, ErrUnboundSymbol) succeed.
func (e *UnboundSymbolError) Is(target error) bool {
	return target == ErrUnboundSymbol
}

func init() {
	symbolic.Register(Numeric)
}

// Numeric is the numeric dialect with no bindings. Use New to evaluate
// expressions that reference symbols.
var Numeric = New(nil)

// Functions returns the float64 implementations of the canonical operators.
// The returned map is a fresh copy.
func Functions() map[string]symbolic.Func[float64] {
	return map[string]symbolic.Func[float64]{
		core.OpAdd:  symbolic.Fold(func(a, b float64) float64 { return a + b }),
		core.OpMul:  symbolic.Fold(func(a, b float64) float64 { return a * b }),
		core.OpSub:  symbolic.Binary(func(a, b float64) float64 { return a - b }),
		core.OpDiv:  symbolic.BinaryE(div),
		core.OpPow:  symbolic.Binary(math.Pow),
		core.OpCos:  symbolic.Unary(math.Cos),
		core.OpSin:  symbolic.Unary(math.Sin),
		core.OpExp:  symbolic.Unary(math.Exp),
		core.OpSqrt: symbolic.Unary(math.Sqrt),
		core.OpTan:  symbolic.Unary(math.Tan),
	}
}

func div(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// New returns a numeric dialect that resolves symbols from bindings.
// The map is copied; later changes to it are not observed.
func New(bindings map[string]float64) *symbolic.Dialect[float64] {
	values := make(map[string]float64, len(bindings))
	for k, v := range bindings {
		values[k] = v
	}

	return symbolic.NewDialect[float64]("numeric").
		Describe("float64 evaluation against bound symbol values").
		Symbols(func(s core.Symbol) (float64, error) {
			v, ok := values[s.Name]
			if !ok {
				return 0, &UnboundSymbolError{Name: s.Name}
			}
			return v, nil
		}).
		Numbers(symbolic.Identity).
		Functions(Functions()).
		Build()
}

// Evaluate computes the value of e with the given symbol bindings.
func Evaluate(e core.Expression, bindings map[string]float64) (float64, error) {
	return symbolic.Translate(e, New(bindings))
}
