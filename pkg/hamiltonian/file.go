package hamiltonian

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseOperator reads an operator in the text form produced by String,
// e.g. "0.5 [X0 Y1] + -1 [Z0] + 2 []".
func ParseOperator(s string) (*QubitOperator, error) {
	op := NewOperator()
	chunks := strings.Split(s, "]")
	if rest := strings.TrimSpace(chunks[len(chunks)-1]); rest != "" {
		return nil, fmt.Errorf("unexpected trailing input %q", rest)
	}
	for i, chunk := range chunks[:len(chunks)-1] {
		chunk = strings.TrimSpace(chunk)
		if i > 0 {
			if !strings.HasPrefix(chunk, "+") {
				return nil, fmt.Errorf("term %d: expected + before term", i)
			}
			chunk = strings.TrimSpace(chunk[1:])
		}
		coef, term, ok := strings.Cut(chunk, "[")
		if !ok {
			return nil, fmt.Errorf("term %d: missing [", i)
		}
		c := 1.0
		if coef = strings.TrimSpace(coef); coef != "" {
			v, err := strconv.ParseFloat(coef, 64)
			if err != nil {
				return nil, fmt.Errorf("term %d: invalid coefficient %q", i, coef)
			}
			c = v
		}
		pt, err := ParseTerm(term)
		if err != nil {
			return nil, fmt.Errorf("term %d: %w", i, err)
		}
		op.Add(pt, c)
	}
	return op, nil
}

// operatorYAML is the on-disk operator format.
type operatorYAML struct {
	Terms []termYAML `yaml:"terms"`
}

type termYAML struct {
	Pauli       string  `yaml:"pauli"`
	Coefficient float64 `yaml:"coefficient"`
}

// LoadOperatorFile reads an operator from a YAML file:
//
//	terms:
//	  - pauli: "Z0 Z1"
//	    coefficient: 0.5
//	  - pauli: ""
//	    coefficient: -1
func LoadOperatorFile(path string) (*QubitOperator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read operator file: %w", err)
	}
	op, err := UnmarshalOperator(data)
	if err != nil {
		return nil, fmt.Errorf("operator file %s: %w", path, err)
	}
	return op, nil
}

// UnmarshalOperator decodes the YAML operator format.
func UnmarshalOperator(data []byte) (*QubitOperator, error) {
	var file operatorYAML
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	op := NewOperator()
	for i, t := range file.Terms {
		pt, err := ParseTerm(t.Pauli)
		if err != nil {
			return nil, fmt.Errorf("term %d: %w", i, err)
		}
		op.Add(pt, t.Coefficient)
	}
	return op, nil
}

// MarshalOperator encodes op in the YAML operator format.
func MarshalOperator(op *QubitOperator) ([]byte, error) {
	file := operatorYAML{Terms: make([]termYAML, 0, op.Len())}
	for _, t := range op.Terms() {
		file.Terms = append(file.Terms, termYAML{Pauli: t.Pauli.String(), Coefficient: t.Coefficient})
	}
	return yaml.Marshal(file)
}
