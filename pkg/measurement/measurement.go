// Package measurement holds measurement outcomes and expectation values.
package measurement

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrQubitOutOfRange is returned for a qubit index outside a bitstring.
var ErrQubitOutOfRange = errors.New("qubit index out of range")

// ExpectationValues is an ordered list of estimated expectation values.
type ExpectationValues struct {
	Values []float64
}

// Concatenate joins several sets of expectation values in order.
func Concatenate(sets ...ExpectationValues) ExpectationValues {
	n := 0
	for _, s := range sets {
		n += len(s.Values)
	}
	out := make([]float64, 0, n)
	for _, s := range sets {
		out = append(out, s.Values...)
	}
	return ExpectationValues{Values: out}
}

// Sum returns the total of all values, e.g. the energy of a Hamiltonian
// whose per-term expectation values already include coefficients.
func (e ExpectationValues) Sum() float64 {
	var total float64
	for _, v := range e.Values {
		total += v
	}
	return total
}

// Bitstring is one measurement outcome, indexed by qubit.
type Bitstring []uint8

func (b Bitstring) String() string {
	var sb strings.Builder
	for _, bit := range b {
		sb.WriteByte('0' + bit)
	}
	return sb.String()
}

// ParseBitstring reads a string of 0s and 1s, qubit 0 first.
func ParseBitstring(s string) (Bitstring, error) {
	out := make(Bitstring, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			out[i] = 1
		default:
			return nil, fmt.Errorf("invalid bit %q at position %d", s[i], i)
		}
	}
	return out, nil
}

// Measurements is a list of sampled bitstrings.
type Measurements struct {
	Bitstrings []Bitstring
}

// Distribution returns the relative frequency of each outcome.
func (m Measurements) Distribution() map[string]float64 {
	dist := make(map[string]float64)
	if len(m.Bitstrings) == 0 {
		return dist
	}
	w := 1 / float64(len(m.Bitstrings))
	for _, b := range m.Bitstrings {
		dist[b.String()] += w
	}
	return dist
}

// Counts returns outcomes with their counts, most frequent first.
func (m Measurements) Counts() []Count {
	counts := make(map[string]int)
	for _, b := range m.Bitstrings {
		counts[b.String()]++
	}
	out := make([]Count, 0, len(counts))
	for bits, n := range counts {
		out = append(out, Count{Bitstring: bits, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Bitstring < out[j].Bitstring
	})
	return out
}

// Count is the number of times an outcome was observed.
type Count struct {
	Bitstring string
	N         int
}

// ParityExpectation estimates the expectation value of the Z-string acting
// on qubits: each outcome contributes +1 when the marked bits have even
// parity and -1 otherwise. An empty qubit list is the identity. Every
// index must address a bit of every outcome.
func (m Measurements) ParityExpectation(qubits []int) (float64, error) {
	if len(m.Bitstrings) == 0 {
		return 0, nil
	}
	var total float64
	for i, b := range m.Bitstrings {
		parity := uint8(0)
		for _, q := range qubits {
			if q < 0 || q >= len(b) {
				return 0, fmt.Errorf("%w: qubit %d in outcome %d of width %d", ErrQubitOutOfRange, q, i, len(b))
			}
			parity ^= b[q]
		}
		if parity == 0 {
			total++
		} else {
			total--
		}
	}
	return total / float64(len(m.Bitstrings)), nil
}
