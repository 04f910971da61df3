package estimator

import (
	"errors"
	"fmt"
	"math"

	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/hamiltonian"
)

// ErrNotComeasureable is returned when a group contains terms that act with
// different Pauli operators on the same qubit.
var ErrNotComeasureable = errors.New("terms are not co-measureable")

// basisChange returns the rotation that maps the eigenbasis of op onto the
// computational basis, or nil for Z.
func basisChange(op hamiltonian.Pauli) circuit.Gate {
	switch op {
	case hamiltonian.PauliX:
		return circuit.RY(core.Num(-math.Pi / 2))
	case hamiltonian.PauliY:
		return circuit.RX(core.Num(math.Pi / 2))
	default:
		return nil
	}
}

// zString returns the Z-only term on the same qubits as t.
func zString(t hamiltonian.PauliTerm) hamiltonian.PauliTerm {
	out := make(hamiltonian.PauliTerm, len(t))
	for i, f := range t {
		out[i] = hamiltonian.Factor{Qubit: f.Qubit, Op: hamiltonian.PauliZ}
	}
	return out
}

// ContextSelectionCircuit returns the basis change for measuring a single
// Pauli term and the equivalent Z-string frame term.
func ContextSelectionCircuit(term hamiltonian.PauliTerm) (*circuit.Circuit, hamiltonian.PauliTerm, error) {
	c := circuit.New(0)
	for _, f := range term {
		if g := basisChange(f.Op); g != nil {
			if err := c.Append(g, f.Qubit); err != nil {
				return nil, nil, err
			}
		}
	}
	return c, zString(term), nil
}

// ContextSelectionCircuitForGroup returns the basis change for measuring a
// group of co-measureable terms and the frame operator, which replaces each
// term by its Z-string and keeps the coefficients.
func ContextSelectionCircuitForGroup(group *hamiltonian.QubitOperator) (*circuit.Circuit, *hamiltonian.QubitOperator, error) {
	frame := hamiltonian.NewOperator()
	var context []hamiltonian.Factor
	seen := make(map[int]hamiltonian.Pauli)

	for _, term := range group.Terms() {
		for _, f := range term.Pauli {
			if existing, ok := seen[f.Qubit]; ok {
				if existing != f.Op {
					return nil, nil, fmt.Errorf("%w: qubit %d measured in both %c and %c", ErrNotComeasureable, f.Qubit, existing, f.Op)
				}
				continue
			}
			seen[f.Qubit] = f.Op
			context = append(context, f)
		}
		frame.Add(zString(term.Pauli), term.Coefficient)
	}

	c := circuit.New(0)
	for _, f := range context {
		if g := basisChange(f.Op); g != nil {
			if err := c.Append(g, f.Qubit); err != nil {
				return nil, nil, err
			}
		}
	}
	return c, frame, nil
}
