package qiskit

import (
	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

var kindOps = map[BinaryKind]string{
	KindAdd: core.OpAdd,
	KindSub: core.OpSub,
	KindMul: core.OpMul,
	KindDiv: core.OpDiv,
	KindPow: core.OpPow,
}

// ToCore converts a Qiskit parameter expression back into a core expression.
func ToCore(e ParameterExpression) (core.Expression, error) {
	switch n := e.(type) {
	case Constant:
		return core.Num(float64(n)), nil

	case Parameter:
		return core.Sym(n.Name), nil

	case Binary:
		op, ok := kindOps[n.Kind]
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
		return core.Call(op, left, right), nil

	case Function:
		if _, ok := elementary[n.Name]; !ok {
			return nil, symbolic.NewUnsupportedExpressionKind(e)
		}
		arg, err := ToCore(n.Arg)
		if err != nil {
			return nil, err
		}
		return core.Call(n.Name, arg), nil

	default:
		return nil, symbolic.NewUnsupportedExpressionKind(e)
	}
}
