package qiskit

import (
	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

func init() {
	symbolic.Register(Qiskit)
}

// Qiskit maps core expressions onto Qiskit parameter expressions.
// Qiskit has no square root function; sqrt is expressed as x**0.5.
var Qiskit = symbolic.NewDialect[ParameterExpression]("qiskit").
	Describe("Qiskit ParameterExpression (sin, cos, tan, exp, **)").
	Symbols(func(s core.Symbol) (ParameterExpression, error) {
		return Parameter{Name: s.Name}, nil
	}).
	Numbers(func(n core.Number) (ParameterExpression, error) {
		return Constant(n.Value), nil
	}).
	Function(core.OpAdd, symbolic.FoldE(combine(KindAdd))).
	Function(core.OpMul, symbolic.FoldE(combine(KindMul))).
	Function(core.OpSub, symbolic.BinaryE(combine(KindSub))).
	Function(core.OpDiv, symbolic.BinaryE(combine(KindDiv))).
	Function(core.OpPow, symbolic.BinaryE(combine(KindPow))).
	Function(core.OpCos, symbolic.Unary(function("cos"))).
	Function(core.OpSin, symbolic.Unary(function("sin"))).
	Function(core.OpTan, symbolic.Unary(function("tan"))).
	Function(core.OpExp, symbolic.Unary(function("exp"))).
	Function(core.OpSqrt, symbolic.UnaryE(func(x ParameterExpression) (ParameterExpression, error) {
		return combine(KindPow)(x, Constant(0.5))
	})).
	Build()

// combine builds a binary expression. Two constants are evaluated
// immediately, as Python evaluates arithmetic on plain floats.
func combine(kind BinaryKind) func(a, b ParameterExpression) (ParameterExpression, error) {
	return func(a, b ParameterExpression) (ParameterExpression, error) {
		l, lok := a.(Constant)
		r, rok := b.(Constant)
		if lok && rok {
			v, err := apply(kind, float64(l), float64(r))
			if err != nil {
				return nil, err
			}
			return Constant(v), nil
		}
		return Binary{Kind: kind, Left: a, Right: b}, nil
	}
}

func function(name string) func(ParameterExpression) ParameterExpression {
	return func(x ParameterExpression) ParameterExpression {
		return Function{Name: name, Arg: x}
	}
}

// Translate converts a core expression into a Qiskit parameter expression.
func Translate(e core.Expression) (ParameterExpression, error) {
	return symbolic.Translate(e, Qiskit)
}
