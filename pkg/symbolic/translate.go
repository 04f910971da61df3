package symbolic

import (
	"errors"

	"github.com/leapstack-labs/leapq/pkg/core"
)

// Translate converts a backend-agnostic expression into the dialect's native form.
//
// Numbers go through the number factory, symbols through the symbol factory.
// Function calls translate their arguments first, then invoke the dialect's
// implementation of the operator with the translated arguments in order.
func Translate[T any](e core.Expression, d *Dialect[T]) (T, error) {
	var zero T
	if d == nil {
		return zero, ErrDialectRequired
	}

	switch node := e.(type) {
	case core.Number:
		return d.Number(node)

	case core.Symbol:
		return d.Symbol(node)

	case core.FunctionCall:
		args := make([]T, len(node.Args))
		for i, arg := range node.Args {
			v, err := Translate(arg, d)
			if err != nil {
				return zero, err
			}
			args[i] = v
		}

		fn, ok := d.functions[node.Name]
		if !ok {
			return zero, &UnsupportedOperatorError{Operator: node.Name, Dialect: d.Name}
		}

		result, err := fn(args...)
		if err != nil {
			var arity *ArityError
			if errors.As(err, &arity) && arity.Function == "" {
				arity.Function = node.Name
			}
			return zero, err
		}
		return result, nil

	default:
		return zero, NewUnsupportedExpressionKind(e)
	}
}

// MustTranslate is like Translate but panics on error.
// It is intended for static tables built at init time.
func MustTranslate[T any](e core.Expression, d *Dialect[T]) T {
	v, err := Translate(e, d)
	if err != nil {
		panic(err)
	}
	return v
}

// TranslateAll translates a slice of expressions, stopping at the first error.
func TranslateAll[T any](exprs []core.Expression, d *Dialect[T]) ([]T, error) {
	out := make([]T, len(exprs))
	for i, e := range exprs {
		v, err := Translate(e, d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
