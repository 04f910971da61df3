package core

import (
	"math"
	"strconv"
	"strings"
)

// Canonical operator names understood by the built-in dialects.
const (
	OpAdd  = "add"
	OpMul  = "mul"
	OpSub  = "sub"
	OpDiv  = "div"
	OpPow  = "pow"
	OpCos  = "cos"
	OpSin  = "sin"
	OpExp  = "exp"
	OpSqrt = "sqrt"
	OpTan  = "tan"
)

// CanonicalOperators lists the operator names every built-in dialect maps.
var CanonicalOperators = []string{
	OpAdd, OpMul, OpSub, OpDiv, OpPow,
	OpCos, OpSin, OpExp, OpSqrt, OpTan,
}

// Expression is a backend-agnostic expression tree node.
//
// The set of node kinds is closed: Symbol, Number and FunctionCall.
// Translators treat anything else as an unsupported expression kind.
type Expression interface {
	// String returns the infix rendering of the expression.
	String() string
	exprNode() // Marker method to distinguish expressions
}

// Symbol is a reference to a free parameter by name.
type Symbol struct {
	Name string
}

func (Symbol) exprNode() {}

func (s Symbol) String() string { return s.Name }

// Number is a real numeric literal.
type Number struct {
	Value float64
}

func (Number) exprNode() {}

// String formats n in the shortest form that reads back to the same value.
// NaN and infinities render as "NaN", "+Inf" and "-Inf"; they have no
// literal syntax, so they do not read back as numbers.
func (n Number) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// FunctionCall applies a named operator to an ordered list of arguments.
type FunctionCall struct {
	Name string
	Args []Expression
}

func (FunctionCall) exprNode() {}

func (f FunctionCall) String() string {
	return render(f, precLowest)
}

// Sym creates a symbol reference.
func Sym(name string) Symbol { return Symbol{Name: name} }

// Num creates a numeric literal.
func Num(v float64) Number { return Number{Value: v} }

// Call creates a function application.
func Call(name string, args ...Expression) FunctionCall {
	return FunctionCall{Name: name, Args: args}
}

// Add returns add(args...).
func Add(args ...Expression) FunctionCall { return Call(OpAdd, args...) }

// Mul returns mul(args...).
func Mul(args ...Expression) FunctionCall { return Call(OpMul, args...) }

// Sub returns sub(a, b).
func Sub(a, b Expression) FunctionCall { return Call(OpSub, a, b) }

// Div returns div(a, b).
func Div(a, b Expression) FunctionCall { return Call(OpDiv, a, b) }

// Pow returns pow(base, exponent).
func Pow(base, exponent Expression) FunctionCall { return Call(OpPow, base, exponent) }

// Neg returns mul(-1, e).
func Neg(e Expression) FunctionCall { return Call(OpMul, Num(-1), e) }

// Cos returns cos(e).
func Cos(e Expression) FunctionCall { return Call(OpCos, e) }

// Sin returns sin(e).
func Sin(e Expression) FunctionCall { return Call(OpSin, e) }

// Exp returns exp(e).
func Exp(e Expression) FunctionCall { return Call(OpExp, e) }

// Sqrt returns sqrt(e).
func Sqrt(e Expression) FunctionCall { return Call(OpSqrt, e) }

// Tan returns tan(e).
func Tan(e Expression) FunctionCall { return Call(OpTan, e) }

// FreeSymbols returns the names of all symbols in e, in order of first appearance.
func FreeSymbols(e Expression) []string {
	var names []string
	seen := make(map[string]struct{})
	Walk(e, func(node Expression) {
		if s, ok := node.(Symbol); ok {
			if _, dup := seen[s.Name]; !dup {
				seen[s.Name] = struct{}{}
				names = append(names, s.Name)
			}
		}
	})
	return names
}

// Walk visits e and all of its descendants in pre-order.
func Walk(e Expression, visit func(Expression)) {
	if e == nil {
		return
	}
	visit(e)
	if f, ok := e.(FunctionCall); ok {
		for _, arg := range f.Args {
			Walk(arg, visit)
		}
	}
}

// Equal reports whether two expression trees are structurally identical.
// NaN literals compare equal to each other.
func Equal(a, b Expression) bool {
	switch x := a.(type) {
	case Symbol:
		y, ok := b.(Symbol)
		return ok && x.Name == y.Name
	case Number:
		y, ok := b.(Number)
		if !ok {
			return false
		}
		return x.Value == y.Value || (math.IsNaN(x.Value) && math.IsNaN(y.Value))
	case FunctionCall:
		y, ok := b.(FunctionCall)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	default:
		return a == nil && b == nil
	}
}

// ---------- Rendering ----------

const (
	precLowest = iota
	precSum
	precProduct
	precUnary
	precPower
	precAtom
)

var infixOps = map[string]struct {
	symbol string
	prec   int
}{
	OpAdd: {" + ", precSum},
	OpSub: {" - ", precSum},
	OpMul: {"*", precProduct},
	OpDiv: {"/", precProduct},
	OpPow: {"^", precPower},
}

func render(e Expression, parent int) string {
	f, ok := e.(FunctionCall)
	if !ok {
		if e == nil {
			return "<nil>"
		}
		s := e.String()
		if n, isNum := e.(Number); isNum && n.Value < 0 && parent > precSum {
			return "(" + s + ")"
		}
		return s
	}

	op, infix := infixOps[f.Name]
	if !infix || len(f.Args) < 2 || (f.Name == OpPow || f.Name == OpSub || f.Name == OpDiv) && len(f.Args) != 2 {
		args := make([]string, len(f.Args))
		for i, arg := range f.Args {
			args[i] = render(arg, precLowest)
		}
		return f.Name + "(" + strings.Join(args, ", ") + ")"
	}

	parts := make([]string, len(f.Args))
	for i, arg := range f.Args {
		// Operands after the first bind tighter so that a nested call of
		// equal precedence keeps its parentheses. pow is right associative.
		child := op.prec
		if i > 0 && f.Name != OpPow {
			child++
		}
		if f.Name == OpPow && i == 0 {
			child++
		}
		parts[i] = render(arg, child)
	}
	out := strings.Join(parts, op.symbol)
	if op.prec < parent {
		return "(" + out + ")"
	}
	return out
}
