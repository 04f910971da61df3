// Package ansatz defines layered parametrized circuits whose symbols are
// bound from a flat parameter vector.
package ansatz

import (
	"errors"
	"fmt"
	"sync"

	"github.com/leapstack-labs/leapq/pkg/circuit"
)

var (
	// ErrParameterCount is returned when the parameter vector does not match
	// the number of ansatz symbols.
	ErrParameterCount = errors.New("wrong number of parameters")
	// ErrInvalidLayers is returned for a negative layer count.
	ErrInvalidLayers = errors.New("number of layers must be non-negative")
)

// Ansatz is a family of circuits parametrized by a layer count and a list
// of symbols.
type Ansatz interface {
	NumberOfQubits() int
	NumberOfLayers() int
	// Symbols returns the ansatz symbols in parameter order.
	Symbols() ([]string, error)
	ParametrizedCircuit() (*circuit.Circuit, error)
	// ExecutableCircuit binds params to Symbols in order.
	ExecutableCircuit(params []float64) (*circuit.Circuit, error)
}

// Generator builds the parametrized circuit for a layer count.
type Generator func(layers int) (*circuit.Circuit, error)

// Base implements Ansatz around a Generator. The parametrized circuit is
// built once per layer count.
type Base struct {
	qubits   int
	generate Generator

	mu     sync.Mutex
	layers int
	cached *circuit.Circuit
}

// NewBase returns an ansatz on qubits qubits with the given layer count.
func NewBase(qubits, layers int, generate Generator) (*Base, error) {
	if layers < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLayers, layers)
	}
	return &Base{qubits: qubits, layers: layers, generate: generate}, nil
}

// NumberOfQubits returns the qubit count.
func (b *Base) NumberOfQubits() int { return b.qubits }

// NumberOfLayers returns the layer count.
func (b *Base) NumberOfLayers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.layers
}

// SetNumberOfLayers changes the layer count and drops the cached circuit.
func (b *Base) SetNumberOfLayers(layers int) error {
	if layers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLayers, layers)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if layers != b.layers {
		b.layers = layers
		b.cached = nil
	}
	return nil
}

// ParametrizedCircuit returns the cached circuit, generating it on first use.
// Callers must not modify the result.
func (b *Base) ParametrizedCircuit() (*circuit.Circuit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cached == nil {
		c, err := b.generate(b.layers)
		if err != nil {
			return nil, fmt.Errorf("failed to generate ansatz circuit: %w", err)
		}
		b.cached = c
	}
	return b.cached, nil
}

// Symbols returns the free symbols of the parametrized circuit in order of
// first appearance.
func (b *Base) Symbols() ([]string, error) {
	c, err := b.ParametrizedCircuit()
	if err != nil {
		return nil, err
	}
	return c.FreeSymbols(), nil
}

// NumberOfParams returns the number of symbols.
func (b *Base) NumberOfParams() (int, error) {
	symbols, err := b.Symbols()
	if err != nil {
		return 0, err
	}
	return len(symbols), nil
}

// ExecutableCircuit binds params to the symbols in order.
func (b *Base) ExecutableCircuit(params []float64) (*circuit.Circuit, error) {
	c, err := b.ParametrizedCircuit()
	if err != nil {
		return nil, err
	}
	bindings, err := SymbolsMap(c.FreeSymbols(), params)
	if err != nil {
		return nil, err
	}
	return c.Bind(bindings)
}

// SymbolsMap pairs symbols with params.
func SymbolsMap(symbols []string, params []float64) (map[string]float64, error) {
	if len(symbols) != len(params) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrParameterCount, len(params), len(symbols))
	}
	m := make(map[string]float64, len(symbols))
	for i, s := range symbols {
		m[s] = params[i]
	}
	return m, nil
}
