// Package quil provides the Quil parameter-expression dialect.
//
// Quil gate parameters are arithmetic over declared memory regions
// (%theta), numbers and the functions COS, SIN, EXP, SQRT and CIS.
// The native types here mirror pyQuil's quilatom expression classes and
// render in Quil syntax, e.g. 2*%x + COS(%y).
package quil

import (
	"math"
	"strconv"
	"strings"
)

// Expression is a native Quil parameter expression.
type Expression interface {
	String() string
	quilExpr()
}

// Parameter references a declared classical memory region by name.
type Parameter struct {
	Name string
}

func (Parameter) quilExpr() {}

func (p Parameter) String() string { return "%" + p.Name }

// Number is a real constant.
type Number float64

func (Number) quilExpr() {}

func (n Number) String() string { return FormatNumber(float64(n)) }

// Operator is a Quil infix operator.
type Operator string

// Quil infix operators.
const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
	OpPow Operator = "^"
)

var precedence = map[Operator]int{
	OpAdd: 1,
	OpSub: 1,
	OpMul: 2,
	OpDiv: 2,
	OpPow: 3,
}

// BinaryExpression applies an infix operator.
type BinaryExpression struct {
	Op    Operator
	Left  Expression
	Right Expression
}

func (BinaryExpression) quilExpr() {}

func (b BinaryExpression) String() string {
	prec := precedence[b.Op]
	left := wrap(b.Left, prec, b.Op == OpPow)
	right := wrap(b.Right, prec, b.Op == OpSub || b.Op == OpDiv)
	if b.Op == OpAdd || b.Op == OpSub {
		return left + " " + string(b.Op) + " " + right
	}
	return left + string(b.Op) + right
}

// wrap parenthesizes child when it binds looser than the parent operator.
// strict also parenthesizes children of equal precedence.
func wrap(child Expression, parent int, strict bool) string {
	s := child.String()
	switch c := child.(type) {
	case BinaryExpression:
		p := precedence[c.Op]
		if p < parent || (strict && p == parent) {
			return "(" + s + ")"
		}
	case Number:
		if c < 0 && parent > precedence[OpAdd] {
			return "(" + s + ")"
		}
	}
	return s
}

// Function is a call to one of Quil's built-in functions.
type Function struct {
	Name string // upper case, e.g. COS
	Arg  Expression
}

func (Function) quilExpr() {}

func (f Function) String() string {
	return f.Name + "(" + f.Arg.String() + ")"
}

// Quil built-in function names.
const (
	FuncCos  = "COS"
	FuncSin  = "SIN"
	FuncExp  = "EXP"
	FuncSqrt = "SQRT"
	FuncCis  = "CIS"
)

// ---------- Constructors (quilatom-style) ----------

// Add returns a + b.
func Add(a, b Expression) Expression { return BinaryExpression{Op: OpAdd, Left: a, Right: b} }

// Sub returns a - b.
func Sub(a, b Expression) Expression { return BinaryExpression{Op: OpSub, Left: a, Right: b} }

// Mul returns a*b.
func Mul(a, b Expression) Expression { return BinaryExpression{Op: OpMul, Left: a, Right: b} }

// Div returns a/b.
func Div(a, b Expression) Expression { return BinaryExpression{Op: OpDiv, Left: a, Right: b} }

// Pow returns a^b.
func Pow(a, b Expression) Expression { return BinaryExpression{Op: OpPow, Left: a, Right: b} }

// Cos returns COS(x).
func Cos(x Expression) Expression { return Function{Name: FuncCos, Arg: x} }

// Sin returns SIN(x).
func Sin(x Expression) Expression { return Function{Name: FuncSin, Arg: x} }

// Exp returns EXP(x).
func Exp(x Expression) Expression { return Function{Name: FuncExp, Arg: x} }

// Sqrt returns SQRT(x).
func Sqrt(x Expression) Expression { return Function{Name: FuncSqrt, Arg: x} }

// Parameters returns the names of all parameters in e, in order of first appearance.
func Parameters(e Expression) []string {
	var names []string
	seen := make(map[string]struct{})
	var visit func(Expression)
	visit = func(e Expression) {
		switch n := e.(type) {
		case Parameter:
			if _, ok := seen[n.Name]; !ok {
				seen[n.Name] = struct{}{}
				names = append(names, n.Name)
			}
		case BinaryExpression:
			visit(n.Left)
			visit(n.Right)
		case Function:
			visit(n.Arg)
		}
	}
	visit(e)
	return names
}

// piFractions lists denominators rendered as exact fractions of pi.
var piFractions = []int{1, 2, 3, 4, 6, 8}

// FormatNumber renders a real number the way Quil programs spell it,
// using pi fractions where the value is an exact small multiple.
func FormatNumber(v float64) string {
	if v != 0 && !math.IsInf(v, 0) && !math.IsNaN(v) {
		for _, den := range piFractions {
			num := v * float64(den) / math.Pi
			rounded := math.Round(num)
			if rounded == 0 || math.Abs(rounded) > 16 || math.Abs(num-rounded) > 1e-12 {
				continue
			}
			return formatPiFraction(int(rounded), den)
		}
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatPiFraction(num, den int) string {
	var b strings.Builder
	if num < 0 {
		b.WriteByte('-')
		num = -num
	}
	if num != 1 {
		b.WriteString(strconv.Itoa(num))
		b.WriteByte('*')
	}
	b.WriteString("pi")
	if den != 1 {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(den))
	}
	return b.String()
}
