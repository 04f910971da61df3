// Package canonical rebuilds core expressions, substituting bound symbols
// and folding subtrees whose arguments are all numbers.
//
// It is the dialect circuits use to bind parameter values: the result is
// still a core.Expression and can be translated to any other dialect.
package canonical

import (
	"errors"

	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/dialects/numeric"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

func init() {
	symbolic.Register(Canonical)
}

// Canonical is the canonical dialect with no bindings. Translating through
// it folds constant subtrees and leaves symbols untouched.
var Canonical = New(nil)

// New returns a canonical dialect that replaces bound symbols with numbers.
func New(bindings map[string]float64) *symbolic.Dialect[core.Expression] {
	values := make(map[string]float64, len(bindings))
	for k, v := range bindings {
		values[k] = v
	}

	b := symbolic.NewDialect[core.Expression]("canonical").
		Describe("core expression trees with bound symbols substituted and constants folded").
		Symbols(func(s core.Symbol) (core.Expression, error) {
			if v, ok := values[s.Name]; ok {
				return core.Num(v), nil
			}
			return s, nil
		}).
		Numbers(func(n core.Number) (core.Expression, error) {
			return n, nil
		})

	for name, fn := range numeric.Functions() {
		b.Function(name, fold(name, fn))
	}
	return b.Build()
}

// fold evaluates op when every argument is a number and rebuilds the call
// otherwise. Evaluation errors (division by zero) keep the call symbolic.
func fold(op string, eval symbolic.Func[float64]) symbolic.Func[core.Expression] {
	return func(args ...core.Expression) (core.Expression, error) {
		values := make([]float64, len(args))
		for i, arg := range args {
			n, ok := arg.(core.Number)
			if !ok {
				return core.Call(op, args...), nil
			}
			values[i] = n.Value
		}
		v, err := eval(values...)
		if err != nil {
			var arity *symbolic.ArityError
			if errors.As(err, &arity) {
				return nil, err
			}
			return core.Call(op, args...), nil
		}
		return core.Num(v), nil
	}
}

// Bind substitutes bindings into e and folds the constant subtrees.
func Bind(e core.Expression, bindings map[string]float64) (core.Expression, error) {
	return symbolic.Translate(e, New(bindings))
}

// Simplify folds the constant subtrees of e.
func Simplify(e core.Expression) (core.Expression, error) {
	return symbolic.Translate(e, Canonical)
}
