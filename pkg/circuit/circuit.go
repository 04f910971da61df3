package circuit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapq/pkg/core"
)

// ErrInvalidQubits is returned when an operation's qubit list does not fit its gate.
var ErrInvalidQubits = errors.New("invalid qubit indices")

// Operation applies a gate to qubits, control qubits first.
type Operation struct {
	Gate   Gate
	Qubits []int
}

// NewOperation validates the qubit list against the gate.
func NewOperation(g Gate, qubits ...int) (Operation, error) {
	if len(qubits) != g.NumQubits() {
		return Operation{}, fmt.Errorf("%w: %s acts on %d qubits, got %d", ErrInvalidQubits, g.Name(), g.NumQubits(), len(qubits))
	}
	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if q < 0 {
			return Operation{}, fmt.Errorf("%w: negative index %d", ErrInvalidQubits, q)
		}
		if seen[q] {
			return Operation{}, fmt.Errorf("%w: qubit %d repeated in %s", ErrInvalidQubits, q, g.Name())
		}
		seen[q] = true
	}
	return Operation{Gate: g, Qubits: append([]int(nil), qubits...)}, nil
}

func (op Operation) String() string {
	var b strings.Builder
	if s, ok := op.Gate.(fmt.Stringer); ok {
		b.WriteString(s.String())
	} else {
		b.WriteString(op.Gate.Name())
		writeParams(&b, op.Gate.Params())
	}
	for _, q := range op.Qubits {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(q))
	}
	return b.String()
}

func (c ControlledGate) String() string {
	var b strings.Builder
	b.WriteString(c.Name())
	writeParams(&b, c.Params())
	return b.String()
}

func writeParams(b *strings.Builder, params []core.Expression) {
	if len(params) == 0 {
		return
	}
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
}

// Circuit is an ordered list of operations on NQubits qubits.
type Circuit struct {
	Operations []Operation
	NQubits    int
}

// New returns an empty circuit on n qubits.
func New(n int) *Circuit {
	return &Circuit{NQubits: n}
}

// Append applies g to qubits, growing NQubits to cover them.
func (c *Circuit) Append(g Gate, qubits ...int) error {
	op, err := NewOperation(g, qubits...)
	if err != nil {
		return err
	}
	c.AppendOperation(op)
	return nil
}

// AppendOperation adds an already validated operation.
func (c *Circuit) AppendOperation(op Operation) {
	for _, q := range op.Qubits {
		if q >= c.NQubits {
			c.NQubits = q + 1
		}
	}
	c.Operations = append(c.Operations, op)
}

// Extend appends all operations of other.
func (c *Circuit) Extend(other *Circuit) {
	if other.NQubits > c.NQubits {
		c.NQubits = other.NQubits
	}
	for _, op := range other.Operations {
		c.AppendOperation(op)
	}
}

// Concat returns a new circuit running c then other.
func (c *Circuit) Concat(other *Circuit) *Circuit {
	out := c.Clone()
	out.Extend(other)
	return out
}

// Clone returns a copy that shares gates but not the operation list.
func (c *Circuit) Clone() *Circuit {
	out := &Circuit{NQubits: c.NQubits, Operations: make([]Operation, len(c.Operations))}
	copy(out.Operations, c.Operations)
	return out
}

// FreeSymbols returns the symbol names in all gate parameters, in order of
// first appearance.
func (c *Circuit) FreeSymbols() []string {
	var names []string
	seen := make(map[string]bool)
	for _, op := range c.Operations {
		for _, p := range op.Gate.Params() {
			for _, name := range core.FreeSymbols(p) {
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
	}
	return names
}

// Bind returns a copy of the circuit with bindings substituted into every
// gate parameter. Symbols without a binding stay symbolic.
func (c *Circuit) Bind(bindings map[string]float64) (*Circuit, error) {
	out := &Circuit{NQubits: c.NQubits, Operations: make([]Operation, len(c.Operations))}
	for i, op := range c.Operations {
		g, err := op.Gate.Bind(bindings)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		out.Operations[i] = Operation{Gate: g, Qubits: op.Qubits}
	}
	return out, nil
}

// Equal reports whether two circuits have the same size and operations.
func (c *Circuit) Equal(other *Circuit) bool {
	if c.NQubits != other.NQubits || len(c.Operations) != len(other.Operations) {
		return false
	}
	for i, op := range c.Operations {
		o := other.Operations[i]
		if !GateEqual(op.Gate, o.Gate) || len(op.Qubits) != len(o.Qubits) {
			return false
		}
		for j := range op.Qubits {
			if op.Qubits[j] != o.Qubits[j] {
				return false
			}
		}
	}
	return true
}

func (c *Circuit) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "circuit(%d qubits)", c.NQubits)
	for _, op := range c.Operations {
		b.WriteString("\n  ")
		b.WriteString(op.String())
	}
	return b.String()
}
