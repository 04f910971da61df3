package circuit

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/parser"
)

// FileParseError is returned for malformed circuit files.
type FileParseError struct {
	Path    string
	Message string
}

func (e *FileParseError) Error() string {
	if e.Path == "" {
		return "circuit file: " + e.Message
	}
	return fmt.Sprintf("circuit file %s: %s", e.Path, e.Message)
}

// UnknownFieldError is returned when a circuit file has a field the format does not define.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q in circuit file", e.Field)
}

// fileYAML is the on-disk circuit format.
type fileYAML struct {
	Qubits     int             `yaml:"qubits"`
	Operations []operationYAML `yaml:"operations"`
}

type operationYAML struct {
	Gate     string   `yaml:"gate"`
	Params   []string `yaml:"params,omitempty"`
	Qubits   []int    `yaml:"qubits,flow"`
	Controls int      `yaml:"controls,omitempty"`
}

var knownFields = map[string]bool{
	"qubits":     true,
	"operations": true,
}

// LoadFile reads a circuit from a YAML file.
func LoadFile(path string) (*Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read circuit file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		if pe, ok := err.(*FileParseError); ok {
			pe.Path = path
		}
		return nil, err
	}
	return c, nil
}

// Parse decodes a circuit from YAML.
//
//	qubits: 2
//	operations:
//	  - gate: RX
//	    params: ["2*theta"]
//	    qubits: [0]
//	  - gate: X
//	    controls: 1
//	    qubits: [0, 1]
func Parse(data []byte) (*Circuit, error) {
	// First, decode into a map to check for unknown fields
	var rawMap map[string]any
	if err := yaml.Unmarshal(data, &rawMap); err != nil {
		return nil, &FileParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	for field := range rawMap {
		if !knownFields[field] {
			return nil, &UnknownFieldError{Field: field}
		}
	}

	var file fileYAML
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &FileParseError{Message: fmt.Sprintf("failed to parse circuit: %v", err)}
	}
	if file.Qubits < 0 {
		return nil, &FileParseError{Message: fmt.Sprintf("qubits must be non-negative, got %d", file.Qubits)}
	}

	c := New(file.Qubits)
	for i, raw := range file.Operations {
		op, err := raw.decode()
		if err != nil {
			return nil, &FileParseError{Message: fmt.Sprintf("operation %d: %v", i, err)}
		}
		c.AppendOperation(op)
	}
	return c, nil
}

func (o operationYAML) decode() (Operation, error) {
	params, err := parser.ParseAll(o.Params)
	if err != nil {
		return Operation{}, err
	}
	g, err := NewGate(o.Gate, params...)
	if err != nil {
		return Operation{}, err
	}
	if o.Controls < 0 {
		return Operation{}, fmt.Errorf("controls must be non-negative, got %d", o.Controls)
	}
	return NewOperation(Controlled(g, o.Controls), o.Qubits...)
}

// Marshal encodes c in the YAML circuit format. Parameters are written in
// infix form and read back with the expression parser.
func Marshal(c *Circuit) ([]byte, error) {
	file := fileYAML{Qubits: c.NQubits, Operations: make([]operationYAML, 0, len(c.Operations))}
	for i, op := range c.Operations {
		g, controls := op.Gate, 0
		if cg, ok := g.(ControlledGate); ok {
			g, controls = cg.Wrapped, cg.NumControls
		}
		if _, ok := Lookup(g.Name()); !ok {
			return nil, fmt.Errorf("operation %d: %w: %s", i, ErrUnknownGate, g.Name())
		}
		file.Operations = append(file.Operations, operationYAML{
			Gate:     g.Name(),
			Params:   paramStrings(g.Params()),
			Qubits:   op.Qubits,
			Controls: controls,
		})
	}
	return yaml.Marshal(file)
}

func paramStrings(params []core.Expression) []string {
	if len(params) == 0 {
		return nil
	}
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = p.String()
	}
	return out
}
