package quil

import (
	"math"

	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

func init() {
	symbolic.Register(Quil)
}

// Quil maps core expressions onto Quil parameter expressions.
// Symbols become memory references; tan has no Quil built-in and is
// expressed as SIN(x)/COS(x).
var Quil = symbolic.NewDialect[Expression]("quil").
	Describe("Quil gate parameter expressions (%param, COS, SIN, EXP, SQRT)").
	Symbols(func(s core.Symbol) (Expression, error) {
		return Parameter{Name: s.Name}, nil
	}).
	Numbers(func(n core.Number) (Expression, error) {
		return Number(n.Value), nil
	}).
	Function(core.OpAdd, symbolic.Fold(arith(OpAdd))).
	Function(core.OpMul, symbolic.Fold(arith(OpMul))).
	Function(core.OpSub, symbolic.Binary(arith(OpSub))).
	Function(core.OpDiv, symbolic.Binary(arith(OpDiv))).
	Function(core.OpPow, symbolic.Binary(arith(OpPow))).
	Function(core.OpCos, symbolic.Unary(Cos)).
	Function(core.OpSin, symbolic.Unary(Sin)).
	Function(core.OpExp, symbolic.Unary(Exp)).
	Function(core.OpSqrt, symbolic.Unary(Sqrt)).
	Function(core.OpTan, symbolic.Unary(func(x Expression) Expression {
		return Div(Sin(x), Cos(x))
	})).
	Build()

// arith returns the infix constructor for op. Two plain numbers combine
// into a number, the way arithmetic on Quil constants evaluates eagerly.
func arith(op Operator) func(a, b Expression) Expression {
	return func(a, b Expression) Expression {
		x, xok := a.(Number)
		y, yok := b.(Number)
		if xok && yok {
			switch op {
			case OpAdd:
				return x + y
			case OpSub:
				return x - y
			case OpMul:
				return x * y
			case OpDiv:
				if y != 0 {
					return x / y
				}
			case OpPow:
				return Number(math.Pow(float64(x), float64(y)))
			}
		}
		return BinaryExpression{Op: op, Left: a, Right: b}
	}
}

// Translate converts a core expression into a Quil expression.
func Translate(e core.Expression) (Expression, error) {
	return symbolic.Translate(e, Quil)
}
