// Package starlark exposes circuit construction to Starlark scripts:
// symbolic expressions with operator overloading and gate builtins that
// produce circuit operations.
package starlark

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/leapstack-labs/leapq/pkg/core"
)

// Expr wraps a core.Expression so scripts can combine symbols and numbers
// with + - * /.
type Expr struct {
	E core.Expression
}

var (
	_ starlark.HasBinary = Expr{}
	_ starlark.HasUnary  = Expr{}
)

func (x Expr) String() string        { return x.E.String() }
func (x Expr) Type() string          { return "expr" }
func (x Expr) Freeze()               {}
func (x Expr) Truth() starlark.Bool  { return starlark.True }
func (x Expr) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: expr") }

// Binary implements arithmetic with numbers and other expressions.
func (x Expr) Binary(op syntax.Token, y starlark.Value, side starlark.Side) (starlark.Value, error) {
	other, ok := toExpr(y)
	if !ok {
		return nil, nil
	}
	l, r := x.E, other
	if side == starlark.Right {
		l, r = r, l
	}
	switch op {
	case syntax.PLUS:
		return Expr{core.Add(l, r)}, nil
	case syntax.MINUS:
		return Expr{core.Sub(l, r)}, nil
	case syntax.STAR:
		return Expr{core.Mul(l, r)}, nil
	case syntax.SLASH:
		return Expr{core.Div(l, r)}, nil
	}
	return nil, nil
}

// Unary implements negation.
func (x Expr) Unary(op syntax.Token) (starlark.Value, error) {
	switch op {
	case syntax.MINUS:
		return Expr{core.Neg(x.E)}, nil
	case syntax.PLUS:
		return x, nil
	}
	return nil, nil
}

// toExpr converts numbers and Expr values to expressions.
func toExpr(v starlark.Value) (core.Expression, bool) {
	switch v := v.(type) {
	case Expr:
		return v.E, true
	case starlark.Int:
		f, ok := starlark.AsFloat(v)
		return core.Num(f), ok
	case starlark.Float:
		return core.Num(float64(v)), true
	}
	return nil, false
}

// Operation wraps a circuit.Operation produced by a gate builtin.
type Operation struct {
	Op circuit.Operation
}

func (o Operation) String() string        { return o.Op.String() }
func (o Operation) Type() string          { return "operation" }
func (o Operation) Freeze()               {}
func (o Operation) Truth() starlark.Bool  { return starlark.True }
func (o Operation) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: operation") }

// Operations extracts the operations from a list or tuple value.
func Operations(v starlark.Value) ([]circuit.Operation, error) {
	iterable, ok := v.(starlark.Indexable)
	if !ok {
		return nil, fmt.Errorf("want list of operations, got %s", v.Type())
	}
	ops := make([]circuit.Operation, iterable.Len())
	for i := range ops {
		op, ok := iterable.Index(i).(Operation)
		if !ok {
			return nil, fmt.Errorf("item %d: want operation, got %s", i, iterable.Index(i).Type())
		}
		ops[i] = op.Op
	}
	return ops, nil
}
