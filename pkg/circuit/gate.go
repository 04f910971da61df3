// Package circuit models quantum circuits whose gate parameters are core
// expressions.
//
// A Circuit is a list of operations, each applying a Gate to an ordered set
// of qubit indices. Parameters stay symbolic until Bind substitutes values.
package circuit

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/dialects/canonical"
)

// ErrUnknownGate is returned when a gate name is not a built-in gate.
var ErrUnknownGate = errors.New("unknown gate")

// Gate is a quantum gate with symbolic parameters.
type Gate interface {
	Name() string
	Params() []core.Expression
	NumQubits() int
	// Bind returns a copy of the gate with bindings substituted into its parameters.
	Bind(bindings map[string]float64) (Gate, error)
}

// MatrixFreeGate is one of the named gates every backend converter understands.
type MatrixFreeGate struct {
	name      string
	params    []core.Expression
	numQubits int
}

// Name returns the upper case gate name, e.g. RX.
func (g MatrixFreeGate) Name() string { return g.name }

// Params returns the gate parameters.
func (g MatrixFreeGate) Params() []core.Expression { return g.params }

// NumQubits returns how many qubits the gate acts on.
func (g MatrixFreeGate) NumQubits() int { return g.numQubits }

// Bind substitutes bindings into every parameter.
func (g MatrixFreeGate) Bind(bindings map[string]float64) (Gate, error) {
	if len(g.params) == 0 {
		return g, nil
	}
	params := make([]core.Expression, len(g.params))
	for i, p := range g.params {
		bound, err := canonical.Bind(p, bindings)
		if err != nil {
			return nil, fmt.Errorf("%s parameter %d: %w", g.name, i, err)
		}
		params[i] = bound
	}
	return MatrixFreeGate{name: g.name, params: params, numQubits: g.numQubits}, nil
}

func (g MatrixFreeGate) String() string {
	if len(g.params) == 0 {
		return g.name
	}
	parts := make([]string, len(g.params))
	for i, p := range g.params {
		parts[i] = p.String()
	}
	return g.name + "(" + strings.Join(parts, ", ") + ")"
}

// GateSpec describes the shape of a built-in gate.
type GateSpec struct {
	Name      string
	NumQubits int
	NumParams int
}

var builtins = builtinSpecs()

func builtinSpecs() map[string]GateSpec {
	specs := make(map[string]GateSpec)
	define := func(qubits, params int, names ...string) {
		for _, name := range names {
			specs[name] = GateSpec{Name: name, NumQubits: qubits, NumParams: params}
		}
	}
	define(1, 0, "X", "Y", "Z", "T", "H", "I")
	define(2, 0, "CNOT", "CZ", "SWAP", "ISWAP")
	define(1, 1, "RX", "RY", "RZ", "PHASE")
	define(2, 1, "CPHASE", "XX", "YY", "ZZ")
	return specs
}

// Lookup returns the shape of a built-in gate (case-insensitive).
func Lookup(name string) (GateSpec, bool) {
	spec, ok := builtins[strings.ToUpper(name)]
	return spec, ok
}

// Builtins returns all built-in gate shapes sorted by name.
func Builtins() []GateSpec {
	out := make([]GateSpec, 0, len(builtins))
	for _, spec := range builtins {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// NewGate builds a built-in gate by name, checking the parameter count.
func NewGate(name string, params ...core.Expression) (Gate, error) {
	spec, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGate, name)
	}
	if len(params) != spec.NumParams {
		return nil, fmt.Errorf("gate %s takes %d parameters, got %d", spec.Name, spec.NumParams, len(params))
	}
	return MatrixFreeGate{name: spec.Name, params: append([]core.Expression(nil), params...), numQubits: spec.NumQubits}, nil
}

func mustNew(name string, params ...core.Expression) Gate {
	g, err := NewGate(name, params...)
	if err != nil {
		panic(err)
	}
	return g
}

// Fixed gates.
var (
	X     = mustNew("X")
	Y     = mustNew("Y")
	Z     = mustNew("Z")
	T     = mustNew("T")
	H     = mustNew("H")
	I     = mustNew("I")
	CNOT  = mustNew("CNOT")
	CZ    = mustNew("CZ")
	SWAP  = mustNew("SWAP")
	ISWAP = mustNew("ISWAP")
)

// RX rotates about the X axis by angle.
func RX(angle core.Expression) Gate { return mustNew("RX", angle) }

// RY rotates about the Y axis by angle.
func RY(angle core.Expression) Gate { return mustNew("RY", angle) }

// RZ rotates about the Z axis by angle.
func RZ(angle core.Expression) Gate { return mustNew("RZ", angle) }

// PHASE applies a relative phase of angle.
func PHASE(angle core.Expression) Gate { return mustNew("PHASE", angle) }

// CPHASE applies a controlled phase of angle.
func CPHASE(angle core.Expression) Gate { return mustNew("CPHASE", angle) }

// XX is the two-qubit XX rotation.
func XX(angle core.Expression) Gate { return mustNew("XX", angle) }

// YY is the two-qubit YY rotation.
func YY(angle core.Expression) Gate { return mustNew("YY", angle) }

// ZZ is the two-qubit ZZ rotation.
func ZZ(angle core.Expression) Gate { return mustNew("ZZ", angle) }

// ControlledGate applies Wrapped conditioned on NumControls control qubits.
// Control qubits come first in an operation's qubit list.
type ControlledGate struct {
	Wrapped     Gate
	NumControls int
}

// Controlled wraps g with n control qubits. Controlling a controlled gate
// adds to its control count.
func Controlled(g Gate, n int) Gate {
	if n <= 0 {
		return g
	}
	if c, ok := g.(ControlledGate); ok {
		return ControlledGate{Wrapped: c.Wrapped, NumControls: c.NumControls + n}
	}
	return ControlledGate{Wrapped: g, NumControls: n}
}

// Name returns the Quil spelling, one CONTROLLED modifier per control.
func (c ControlledGate) Name() string {
	return strings.Repeat("CONTROLLED ", c.NumControls) + c.Wrapped.Name()
}

// Params returns the wrapped gate's parameters.
func (c ControlledGate) Params() []core.Expression { return c.Wrapped.Params() }

// NumQubits counts the controls and the wrapped gate's qubits.
func (c ControlledGate) NumQubits() int { return c.NumControls + c.Wrapped.NumQubits() }

// Bind binds the wrapped gate.
func (c ControlledGate) Bind(bindings map[string]float64) (Gate, error) {
	inner, err := c.Wrapped.Bind(bindings)
	if err != nil {
		return nil, err
	}
	return ControlledGate{Wrapped: inner, NumControls: c.NumControls}, nil
}

// GateEqual reports whether two gates have the same name, shape and parameters.
func GateEqual(a, b Gate) bool {
	if a.Name() != b.Name() || a.NumQubits() != b.NumQubits() {
		return false
	}
	pa, pb := a.Params(), b.Params()
	if len(pa) != len(pb) {
		return false
	}
	for i := range pa {
		if !core.Equal(pa[i], pb[i]) {
			return false
		}
	}
	return true
}
