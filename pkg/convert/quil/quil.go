// Package quil renders circuits as Quil programs.
//
// Bound circuits become a flat instruction list. Circuits with free symbols
// become a DEFCIRCUIT whose %parameters are the free symbols and whose
// formal qubits q0..qN-1 stand for the circuit's register.
package quil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapq/pkg/circuit"
	quilexpr "github.com/leapstack-labs/leapq/pkg/dialects/quil"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

// ErrUnsupportedGate is returned for gates Quil's standard gate set lacks.
var ErrUnsupportedGate = errors.New("unsupported gate")

// standardGates is the subset of built-in gates in Quil's standard gate set.
var standardGates = map[string]bool{
	"X": true, "Y": true, "Z": true, "T": true, "H": true, "I": true,
	"CNOT": true, "CZ": true, "SWAP": true, "ISWAP": true,
	"RX": true, "RY": true, "RZ": true, "PHASE": true, "CPHASE": true,
}

// DefaultCircuitName names the DEFCIRCUIT emitted for parametrized circuits.
const DefaultCircuitName = "ANSATZ"

// Instruction is one Quil gate application.
type Instruction struct {
	Modifiers []string // e.g. CONTROLLED
	Gate      string
	Params    []quilexpr.Expression
	Qubits    []int
}

func (inst Instruction) render(qubit func(int) string) string {
	var b strings.Builder
	for _, m := range inst.Modifiers {
		b.WriteString(m)
		b.WriteByte(' ')
	}
	b.WriteString(inst.Gate)
	if len(inst.Params) > 0 {
		parts := make([]string, len(inst.Params))
		for i, p := range inst.Params {
			parts[i] = p.String()
		}
		b.WriteString("(" + strings.Join(parts, ", ") + ")")
	}
	for _, q := range inst.Qubits {
		b.WriteByte(' ')
		b.WriteString(qubit(q))
	}
	return b.String()
}

// Program is a converted circuit.
type Program struct {
	Name         string   // DEFCIRCUIT name when Parameters is non-empty
	Parameters   []string // free symbols, in order of first appearance
	NumQubits    int
	Instructions []Instruction
}

// ToQuil converts c, translating gate parameters with the Quil dialect.
func ToQuil(c *circuit.Circuit) (*Program, error) {
	p := &Program{
		Name:         DefaultCircuitName,
		Parameters:   c.FreeSymbols(),
		NumQubits:    c.NQubits,
		Instructions: make([]Instruction, 0, len(c.Operations)),
	}
	for i, op := range c.Operations {
		inst, err := convertGate(op.Gate)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		inst.Qubits = append([]int(nil), op.Qubits...)
		p.Instructions = append(p.Instructions, inst)
	}
	return p, nil
}

func convertGate(g circuit.Gate) (Instruction, error) {
	if cg, ok := g.(circuit.ControlledGate); ok {
		inner, err := convertGate(cg.Wrapped)
		if err != nil {
			return Instruction{}, err
		}
		mods := make([]string, cg.NumControls, cg.NumControls+len(inner.Modifiers))
		for i := range mods {
			mods[i] = "CONTROLLED"
		}
		inner.Modifiers = append(mods, inner.Modifiers...)
		return inner, nil
	}

	if !standardGates[g.Name()] {
		return Instruction{}, fmt.Errorf("%w: %s is not a standard Quil gate", ErrUnsupportedGate, g.Name())
	}
	params, err := symbolic.TranslateAll(g.Params(), quilexpr.Quil)
	if err != nil {
		return Instruction{}, fmt.Errorf("%s parameters: %w", g.Name(), err)
	}
	return Instruction{Gate: g.Name(), Params: params}, nil
}

// String renders the program as Quil text.
func (p *Program) String() string {
	var b strings.Builder
	if len(p.Parameters) == 0 {
		for _, inst := range p.Instructions {
			b.WriteString(inst.render(strconv.Itoa))
			b.WriteByte('\n')
		}
		return b.String()
	}

	params := make([]string, len(p.Parameters))
	for i, name := range p.Parameters {
		params[i] = quilexpr.Parameter{Name: name}.String()
	}
	formal := func(q int) string { return "q" + strconv.Itoa(q) }
	qubits := make([]string, p.NumQubits)
	for i := range qubits {
		qubits[i] = formal(i)
	}

	fmt.Fprintf(&b, "DEFCIRCUIT %s(%s) %s:\n", p.Name, strings.Join(params, ", "), strings.Join(qubits, " "))
	for _, inst := range p.Instructions {
		b.WriteString("    ")
		b.WriteString(inst.render(formal))
		b.WriteByte('\n')
	}
	return b.String()
}
