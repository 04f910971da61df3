package ansatz

import (
	"fmt"

	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/leapstack-labs/leapq/pkg/core"
)

// NewLayeredRotations returns a hardware-efficient ansatz: each layer
// applies RY(theta_<layer>_<qubit>) to every qubit followed by a CNOT
// ladder.
func NewLayeredRotations(qubits, layers int) (*Base, error) {
	if qubits < 1 {
		return nil, fmt.Errorf("layered rotations need at least one qubit, got %d", qubits)
	}
	return NewBase(qubits, layers, func(layers int) (*circuit.Circuit, error) {
		c := circuit.New(qubits)
		for l := 0; l < layers; l++ {
			for q := 0; q < qubits; q++ {
				name := fmt.Sprintf("theta_%d_%d", l, q)
				if err := c.Append(circuit.RY(core.Sym(name)), q); err != nil {
					return nil, err
				}
			}
			for q := 0; q+1 < qubits; q++ {
				if err := c.Append(circuit.CNOT, q, q+1); err != nil {
					return nil, err
				}
			}
		}
		return c, nil
	})
}
