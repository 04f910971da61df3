// Package hamiltonian models qubit operators as weighted sums of Pauli
// terms and groups their terms for joint measurement.
package hamiltonian

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Pauli is a single-qubit Pauli operator.
type Pauli byte

// Pauli operators.
const (
	PauliX Pauli = 'X'
	PauliY Pauli = 'Y'
	PauliZ Pauli = 'Z'
)

func (p Pauli) valid() bool { return p == PauliX || p == PauliY || p == PauliZ }

// Factor is a Pauli operator acting on one qubit.
type Factor struct {
	Qubit int
	Op    Pauli
}

// PauliTerm is a product of Pauli factors ordered by qubit.
// The empty term is the identity.
type PauliTerm []Factor

// NewTerm builds a term from factors, sorting them by qubit.
// Two factors on the same qubit are an error.
func NewTerm(factors ...Factor) (PauliTerm, error) {
	t := make(PauliTerm, len(factors))
	copy(t, factors)
	sort.Slice(t, func(i, j int) bool { return t[i].Qubit < t[j].Qubit })
	for i, f := range t {
		if !f.Op.valid() {
			return nil, fmt.Errorf("invalid Pauli operator %q", rune(f.Op))
		}
		if f.Qubit < 0 {
			return nil, fmt.Errorf("negative qubit index %d", f.Qubit)
		}
		if i > 0 && t[i-1].Qubit == f.Qubit {
			return nil, fmt.Errorf("qubit %d appears twice in term", f.Qubit)
		}
	}
	return t, nil
}

// ParseTerm reads a term such as "X0 Y1 Z3". The empty string is the identity.
func ParseTerm(s string) (PauliTerm, error) {
	fields := strings.Fields(s)
	factors := make([]Factor, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			return nil, fmt.Errorf("invalid factor %q", f)
		}
		q, err := strconv.Atoi(f[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid qubit in factor %q", f)
		}
		factors = append(factors, Factor{Qubit: q, Op: Pauli(strings.ToUpper(f[:1])[0])})
	}
	return NewTerm(factors...)
}

// MustParseTerm is like ParseTerm but panics on error.
func MustParseTerm(s string) PauliTerm {
	t, err := ParseTerm(s)
	if err != nil {
		panic(err)
	}
	return t
}

// IsIdentity reports whether the term has no factors.
func (t PauliTerm) IsIdentity() bool { return len(t) == 0 }

// Qubits returns the qubits the term acts on.
func (t PauliTerm) Qubits() []int {
	out := make([]int, len(t))
	for i, f := range t {
		out[i] = f.Qubit
	}
	return out
}

// String renders the term as "X0 Y1"; the identity renders empty.
func (t PauliTerm) String() string {
	parts := make([]string, len(t))
	for i, f := range t {
		parts[i] = string(rune(f.Op)) + strconv.Itoa(f.Qubit)
	}
	return strings.Join(parts, " ")
}

// Term is a Pauli term with its coefficient.
type Term struct {
	Pauli       PauliTerm
	Coefficient float64
}

// QubitOperator is a real linear combination of Pauli terms.
// Terms keep the order in which they were first added.
type QubitOperator struct {
	order []string
	terms map[string]Term
}

// NewOperator returns an empty operator.
func NewOperator() *QubitOperator {
	return &QubitOperator{terms: make(map[string]Term)}
}

// Add adds coefficient*term, merging with an existing equal term.
func (op *QubitOperator) Add(term PauliTerm, coefficient float64) {
	if op.terms == nil {
		op.terms = make(map[string]Term)
	}
	key := term.String()
	if existing, ok := op.terms[key]; ok {
		existing.Coefficient += coefficient
		op.terms[key] = existing
		return
	}
	op.order = append(op.order, key)
	op.terms[key] = Term{Pauli: term, Coefficient: coefficient}
}

// Terms returns the terms in insertion order.
func (op *QubitOperator) Terms() []Term {
	out := make([]Term, len(op.order))
	for i, key := range op.order {
		out[i] = op.terms[key]
	}
	return out
}

// Len returns the number of terms, including the identity.
func (op *QubitOperator) Len() int { return len(op.order) }

// Constant returns the coefficient of the identity term, if present.
func (op *QubitOperator) Constant() (float64, bool) {
	t, ok := op.terms[""]
	return t.Coefficient, ok
}

// Coefficients returns the term coefficients in insertion order.
func (op *QubitOperator) Coefficients() []float64 {
	out := make([]float64, len(op.order))
	for i, key := range op.order {
		out[i] = op.terms[key].Coefficient
	}
	return out
}

// String renders the operator as "0.5 [X0 Y1] + -1 [Z0]".
func (op *QubitOperator) String() string {
	if len(op.order) == 0 {
		return "0"
	}
	parts := make([]string, len(op.order))
	for i, key := range op.order {
		t := op.terms[key]
		parts[i] = strconv.FormatFloat(t.Coefficient, 'g', -1, 64) + " [" + key + "]"
	}
	return strings.Join(parts, " + ")
}

// NumQubits returns one more than the highest qubit index any term acts on.
func (op *QubitOperator) NumQubits() int {
	n := 0
	for _, t := range op.terms {
		for _, f := range t.Pauli {
			if f.Qubit+1 > n {
				n = f.Qubit + 1
			}
		}
	}
	return n
}
