package starlark

import (
	"fmt"
	"math"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/parser"
)

// Predeclared returns the globals available to ansatz scripts:
// number_of_qubits, number_of_layers, pi, symbol, expr, the elementary
// functions, controlled and one builtin per gate (e.g. RX(theta, 0)).
func Predeclared(qubits, layers int) starlark.StringDict {
	globals := starlark.StringDict{
		"number_of_qubits": starlark.MakeInt(qubits),
		"number_of_layers": starlark.MakeInt(layers),
		"pi":               starlark.Float(math.Pi),
		"symbol":           starlark.NewBuiltin("symbol", symbol),
		"expr":             starlark.NewBuiltin("expr", parseExpr),
		"pow":              starlark.NewBuiltin("pow", pow),
		"controlled":       starlark.NewBuiltin("controlled", controlled),
	}
	for name, fn := range map[string]func(core.Expression) core.FunctionCall{
		"cos":  core.Cos,
		"sin":  core.Sin,
		"tan":  core.Tan,
		"exp":  core.Exp,
		"sqrt": core.Sqrt,
	} {
		globals[name] = starlark.NewBuiltin(name, elementary(fn))
	}
	for _, spec := range circuit.Builtins() {
		globals[spec.Name] = starlark.NewBuiltin(spec.Name, gate(spec))
	}
	return globals
}

func symbol(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%s: empty symbol name", b.Name())
	}
	return Expr{core.Sym(name)}, nil
}

func parseExpr(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var src string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &src); err != nil {
		return nil, err
	}
	e, err := parser.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return Expr{e}, nil
}

func pow(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var base, exponent starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &base, &exponent); err != nil {
		return nil, err
	}
	l, err := exprArg(b, 0, base)
	if err != nil {
		return nil, err
	}
	r, err := exprArg(b, 1, exponent)
	if err != nil {
		return nil, err
	}
	return Expr{core.Pow(l, r)}, nil
}

func elementary(fn func(core.Expression) core.FunctionCall) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var x starlark.Value
		if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &x); err != nil {
			return nil, err
		}
		e, err := exprArg(b, 0, x)
		if err != nil {
			return nil, err
		}
		return Expr{fn(e)}, nil
	}
}

// gate returns a builtin taking the gate's parameters followed by its qubits.
func gate(spec circuit.GateSpec) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
		}
		if want := spec.NumParams + spec.NumQubits; len(args) != want {
			return nil, fmt.Errorf("%s: got %d arguments, want %d parameters and %d qubits", b.Name(), len(args), spec.NumParams, spec.NumQubits)
		}

		params := make([]core.Expression, spec.NumParams)
		for i := range params {
			e, err := exprArg(b, i, args[i])
			if err != nil {
				return nil, err
			}
			params[i] = e
		}
		qubits, err := qubitArgs(b, args[spec.NumParams:], spec.NumParams)
		if err != nil {
			return nil, err
		}

		g, err := circuit.NewGate(spec.Name, params...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		op, err := circuit.NewOperation(g, qubits...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		return Operation{op}, nil
	}
}

// controlled(op, *controls) adds control qubits in front of op's qubits.
func controlled(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("%s: want an operation and at least one control qubit", b.Name())
	}
	target, ok := args[0].(Operation)
	if !ok {
		return nil, fmt.Errorf("%s: argument 1: want operation, got %s", b.Name(), args[0].Type())
	}
	controls, err := qubitArgs(b, args[1:], 1)
	if err != nil {
		return nil, err
	}
	op, err := circuit.NewOperation(
		circuit.Controlled(target.Op.Gate, len(controls)),
		append(controls, target.Op.Qubits...)...,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return Operation{op}, nil
}

func exprArg(b *starlark.Builtin, i int, v starlark.Value) (core.Expression, error) {
	e, ok := toExpr(v)
	if !ok {
		return nil, fmt.Errorf("%s: argument %d: want number or expr, got %s", b.Name(), i+1, v.Type())
	}
	return e, nil
}

func qubitArgs(b *starlark.Builtin, args starlark.Tuple, offset int) ([]int, error) {
	qubits := make([]int, len(args))
	for i, a := range args {
		q, err := starlark.AsInt32(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: qubit must be an int: %w", b.Name(), offset+i+1, err)
		}
		qubits[i] = q
	}
	return qubits, nil
}
