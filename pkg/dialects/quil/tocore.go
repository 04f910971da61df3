package quil

import (
	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

var operatorNames = map[Operator]string{
	OpAdd: core.OpAdd,
	OpSub: core.OpSub,
	OpMul: core.OpMul,
	OpDiv: core.OpDiv,
	OpPow: core.OpPow,
}

var functionNames = map[string]string{
	FuncCos:  core.OpCos,
	FuncSin:  core.OpSin,
	FuncExp:  core.OpExp,
	FuncSqrt: core.OpSqrt,
}

// ToCore converts a Quil expression back into a core expression tree.
// Nodes without a core counterpart, such as CIS, yield an
// UnsupportedExpressionKindError.
func ToCore(e Expression) (core.Expression, error) {
	switch n := e.(type) {
	case Number:
		return core.Num(float64(n)), nil

	case Parameter:
		return core.Sym(n.Name), nil

	case BinaryExpression:
		name, ok := operatorNames[n.Op]
		if !ok {
			return nil, symbolic.NewUnsupportedExpressionKind(e)
		}
		left, err := ToCore(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := ToCore(n.Right)
		if err != nil {
			return nil, err
		}
		return core.Call(name, left, right), nil

	case Function:
		name, ok := functionNames[n.Name]
		if !ok {
			return nil, symbolic.NewUnsupportedExpressionKind(e)
		}
		arg, err := ToCore(n.Arg)
		if err != nil {
			return nil, err
		}
		return core.Call(name, arg), nil

	default:
		return nil, symbolic.NewUnsupportedExpressionKind(e)
	}
}
