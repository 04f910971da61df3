// Package qiskit provides the Qiskit ParameterExpression dialect.
//
// Expressions render the way Qiskit prints a ParameterExpression
// (2*theta + cos(gamma), x**2) and expose the set of unbound parameters.
package qiskit

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrUnboundParameter is returned when a numeric value is requested from an
// expression that still references parameters.
var ErrUnboundParameter = errors.New("parameter expression has unbound parameters")

// ParameterExpression is a native Qiskit parameter expression.
type ParameterExpression interface {
	String() string
	paramExpr()
}

// Parameter is a named circuit parameter. Parameters with the same name
// are the same parameter.
type Parameter struct {
	Name string
}

func (Parameter) paramExpr() {}

func (p Parameter) String() string { return p.Name }

// Constant is a bound real value.
type Constant float64

func (Constant) paramExpr() {}

func (c Constant) String() string {
	return strconv.FormatFloat(float64(c), 'g', -1, 64)
}

// BinaryKind identifies an arithmetic operator.
type BinaryKind int

// Arithmetic operators, in increasing binding strength per group.
const (
	KindAdd BinaryKind = iota
	KindSub
	KindMul
	KindDiv
	KindPow
)

var binarySymbols = [...]string{
	KindAdd: " + ",
	KindSub: " - ",
	KindMul: "*",
	KindDiv: "/",
	KindPow: "**",
}

func (k BinaryKind) String() string {
	if int(k) < len(binarySymbols) {
		return strings.TrimSpace(binarySymbols[k])
	}
	return "BinaryKind(" + strconv.Itoa(int(k)) + ")"
}

func (k BinaryKind) precedence() int {
	switch k {
	case KindAdd, KindSub:
		return 1
	case KindMul, KindDiv:
		return 2
	default:
		return 3
	}
}

// Binary is an arithmetic combination of two expressions.
type Binary struct {
	Kind  BinaryKind
	Left  ParameterExpression
	Right ParameterExpression
}

func (Binary) paramExpr() {}

func (b Binary) String() string {
	if int(b.Kind) >= len(binarySymbols) {
		return fmt.Sprintf("%s(%s, %s)", b.Kind, b.Left, b.Right)
	}
	prec := b.Kind.precedence()
	left := operand(b.Left, prec, b.Kind == KindPow)
	right := operand(b.Right, prec, b.Kind == KindSub || b.Kind == KindDiv)
	return left + binarySymbols[b.Kind] + right
}

func operand(e ParameterExpression, parent int, strict bool) string {
	switch n := e.(type) {
	case Binary:
		p := n.Kind.precedence()
		if p < parent || (strict && p == parent) {
			return "(" + n.String() + ")"
		}
	case Constant:
		if n < 0 && parent > 1 {
			return "(" + n.String() + ")"
		}
	}
	return e.String()
}

// Function applies one of the elementary functions Qiskit supports.
type Function struct {
	Name string // sin, cos, tan, exp
	Arg  ParameterExpression
}

func (Function) paramExpr() {}

func (f Function) String() string { return f.Name + "(" + f.Arg.String() + ")" }

var elementary = map[string]func(float64) float64{
	"sin": math.Sin,
	"cos": math.Cos,
	"tan": math.Tan,
	"exp": math.Exp,
}

// Parameters returns the distinct parameters in e, sorted by name.
func Parameters(e ParameterExpression) []Parameter {
	set := make(map[string]struct{})
	collect(e, set)
	out := make([]Parameter, 0, len(set))
	for name := range set {
		out = append(out, Parameter{Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func collect(e ParameterExpression, set map[string]struct{}) {
	switch n := e.(type) {
	case Parameter:
		set[n.Name] = struct{}{}
	case Binary:
		collect(n.Left, set)
		collect(n.Right, set)
	case Function:
		collect(n.Arg, set)
	}
}

// Float returns the numeric value of a fully bound expression.
func Float(e ParameterExpression) (float64, error) {
	if params := Parameters(e); len(params) > 0 {
		names := make([]string, len(params))
		for i, p := range params {
			names[i] = p.Name
		}
		return 0, fmt.Errorf("%w: %s", ErrUnboundParameter, strings.Join(names, ", "))
	}
	return eval(e)
}

func eval(e ParameterExpression) (float64, error) {
	switch n := e.(type) {
	case Constant:
		return float64(n), nil
	case Binary:
		l, err := eval(n.Left)
		if err != nil {
			return 0, err
		}
		r, err := eval(n.Right)
		if err != nil {
			return 0, err
		}
		return apply(n.Kind, l, r)
	case Function:
		fn, ok := elementary[n.Name]
		if !ok {
			return 0, fmt.Errorf("unknown function %q", n.Name)
		}
		v, err := eval(n.Arg)
		if err != nil {
			return 0, err
		}
		return fn(v), nil
	default:
		return 0, fmt.Errorf("cannot evaluate %T", e)
	}
}

func apply(kind BinaryKind, l, r float64) (float64, error) {
	switch kind {
	case KindAdd:
		return l + r, nil
	case KindSub:
		return l - r, nil
	case KindMul:
		return l * r, nil
	case KindDiv:
		if r == 0 {
			return 0, errors.New("division by zero")
		}
		return l / r, nil
	case KindPow:
		return math.Pow(l, r), nil
	default:
		return 0, fmt.Errorf("unknown operator %s", kind)
	}
}
