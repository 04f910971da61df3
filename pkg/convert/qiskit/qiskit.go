// Package qiskit converts circuits to and from a Qiskit QuantumCircuit
// model and exports bound circuits as OpenQASM 2.0.
package qiskit

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/leapq/pkg/circuit"
	qiskitexpr "github.com/leapstack-labs/leapq/pkg/dialects/qiskit"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

// ErrUnsupportedGate matches any *UnsupportedGateError via errors.Is.
var ErrUnsupportedGate = errors.New("unsupported gate")

// UnsupportedGateError is returned for gates with no Qiskit counterpart.
type UnsupportedGateError struct {
	Gate   string
	Reason string
}

func (e *UnsupportedGateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("conversion of %s to Qiskit is unsupported: %s", e.Gate, e.Reason)
	}
	return fmt.Sprintf("conversion of %s to Qiskit is unsupported", e.Gate)
}

// Is makes errors.Is(err, ErrUnsupportedGate) succeed.
func (e *UnsupportedGateError) Is(target error) bool {
	return target == ErrUnsupportedGate
}

// gateClasses maps built-in gate names to Qiskit gate classes.
var gateClasses = map[string]string{
	"X":      "XGate",
	"Y":      "YGate",
	"Z":      "ZGate",
	"T":      "TGate",
	"H":      "HGate",
	"I":      "IGate",
	"CNOT":   "CXGate",
	"CZ":     "CZGate",
	"SWAP":   "SwapGate",
	"ISWAP":  "iSwapGate",
	"RX":     "RXGate",
	"RY":     "RYGate",
	"RZ":     "RZGate",
	"PHASE":  "PhaseGate",
	"CPHASE": "CPhaseGate",
	"XX":     "RXXGate",
	"YY":     "RYYGate",
	"ZZ":     "RZZGate",
}

var gateNames = func() map[string]string {
	out := make(map[string]string, len(gateClasses))
	for name, class := range gateClasses {
		out[class] = name
	}
	return out
}()

// Instruction is one gate application in a QuantumCircuit.
type Instruction struct {
	Class         string // Qiskit gate class, e.g. RXGate
	Params        []qiskitexpr.ParameterExpression
	NumCtrlQubits int
	Qubits        []int // controls first
}

// QuantumCircuit mirrors qiskit.QuantumCircuit with a single register q.
type QuantumCircuit struct {
	NumQubits int
	Data      []Instruction
}

// Parameters returns the unbound parameters of the circuit, sorted by name.
func (qc *QuantumCircuit) Parameters() []qiskitexpr.Parameter {
	seen := make(map[string]bool)
	var out []qiskitexpr.Parameter
	for _, inst := range qc.Data {
		for _, p := range inst.Params {
			for _, param := range qiskitexpr.Parameters(p) {
				if !seen[param.Name] {
					seen[param.Name] = true
					out = append(out, param)
				}
			}
		}
	}
	sortParameters(out)
	return out
}

// ToQiskit converts c, translating gate parameters with the Qiskit dialect.
// Parametrized circuits are allowed; QASM export requires bound parameters.
func ToQiskit(c *circuit.Circuit) (*QuantumCircuit, error) {
	qc := &QuantumCircuit{NumQubits: c.NQubits, Data: make([]Instruction, 0, len(c.Operations))}
	for i, op := range c.Operations {
		inst, err := convertGate(op.Gate)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		inst.Qubits = append([]int(nil), op.Qubits...)
		qc.Data = append(qc.Data, inst)
	}
	return qc, nil
}

func convertGate(g circuit.Gate) (Instruction, error) {
	if cg, ok := g.(circuit.ControlledGate); ok {
		inner, err := convertGate(cg.Wrapped)
		if err != nil {
			return Instruction{}, err
		}
		inner.NumCtrlQubits += cg.NumControls
		return inner, nil
	}

	class, ok := gateClasses[g.Name()]
	if !ok {
		return Instruction{}, &UnsupportedGateError{Gate: g.Name()}
	}
	params, err := symbolic.TranslateAll(g.Params(), qiskitexpr.Qiskit)
	if err != nil {
		return Instruction{}, fmt.Errorf("%s parameters: %w", g.Name(), err)
	}
	return Instruction{Class: class, Params: params}, nil
}

// FromQiskit converts a QuantumCircuit back into a circuit.
func FromQiskit(qc *QuantumCircuit) (*circuit.Circuit, error) {
	c := circuit.New(qc.NumQubits)
	for i, inst := range qc.Data {
		name, ok := gateNames[inst.Class]
		if !ok {
			return nil, fmt.Errorf("instruction %d: %w", i, &UnsupportedGateError{Gate: inst.Class, Reason: "unknown Qiskit gate class"})
		}
		params, err := paramsToCore(inst.Params)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		g, err := circuit.NewGate(name, params...)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		if err := c.Append(circuit.Controlled(g, inst.NumCtrlQubits), inst.Qubits...); err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
	}
	return c, nil
}
