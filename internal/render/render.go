// Package render turns expressions and circuits into dialect text.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapq/pkg/circuit"
	qiskitconv "github.com/leapstack-labs/leapq/pkg/convert/qiskit"
	quilconv "github.com/leapstack-labs/leapq/pkg/convert/quil"
	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/dialects/canonical"
	"github.com/leapstack-labs/leapq/pkg/dialects/decimal"
	"github.com/leapstack-labs/leapq/pkg/dialects/numeric"
	"github.com/leapstack-labs/leapq/pkg/dialects/qiskit"
	"github.com/leapstack-labs/leapq/pkg/dialects/quil"
	"github.com/leapstack-labs/leapq/pkg/parser"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

// Renderer turns a canonical expression into the text form of one dialect.
type Renderer func(e core.Expression, bindings map[string]float64, precision int32) (string, error)

// renderers maps registered dialect names to their text rendering.
var renderers = map[string]Renderer{
	"quil": func(e core.Expression, _ map[string]float64, _ int32) (string, error) {
		v, err := quil.Translate(e)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	},
	"qiskit": func(e core.Expression, _ map[string]float64, _ int32) (string, error) {
		v, err := qiskit.Translate(e)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	},
	"canonical": func(e core.Expression, bindings map[string]float64, _ int32) (string, error) {
		v, err := canonical.Bind(e, bindings)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	},
	"numeric": func(e core.Expression, bindings map[string]float64, _ int32) (string, error) {
		v, err := numeric.Evaluate(e, bindings)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	},
	"decimal": func(e core.Expression, bindings map[string]float64, precision int32) (string, error) {
		decs, err := decimal.FromFloats(bindings)
		if err != nil {
			return "", err
		}
		v, err := decimal.Evaluate(e, decs, precision)
		if err != nil {
			return "", err
		}
		return v.String(), nil
	},
}

// Expression translates e into dialect and returns its text form.
func Expression(dialect string, e core.Expression, bindings map[string]float64, precision int32) (string, error) {
	name := strings.ToLower(dialect)
	if _, ok := symbolic.Get(name); !ok {
		return "", fmt.Errorf("unknown dialect %q (available: %s)", dialect, strings.Join(symbolic.List(), ", "))
	}
	fn, ok := renderers[name]
	if !ok {
		return "", fmt.Errorf("dialect %q has no text rendering", dialect)
	}
	return fn(e, bindings, precision)
}

// Source parses input and renders it in dialect.
func Source(dialect, input string, bindings map[string]float64, precision int32) (string, error) {
	e, err := parser.Parse(input)
	if err != nil {
		return "", err
	}
	return Expression(dialect, e, bindings, precision)
}

// ParseBindings parses name=value pairs.
func ParseBindings(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid binding %q (want name=value)", p)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid binding %q: %w", p, err)
		}
		out[name] = v
	}
	return out, nil
}

// MergeBindings overlays override on base without modifying either.
func MergeBindings(base, override map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// Circuit conversion targets.
const (
	TargetQuil = "quil"
	TargetQASM = "qasm"
	TargetYAML = "yaml"
)

// ParseTarget normalizes a conversion target name.
func ParseTarget(s string) (string, error) {
	switch t := strings.ToLower(strings.TrimSpace(s)); t {
	case TargetQuil, TargetQASM, TargetYAML:
		return t, nil
	default:
		return "", fmt.Errorf("unknown target %q (want quil, qasm or yaml)", s)
	}
}

// Circuit binds c and renders it as target. An empty bindings map leaves
// the circuit parametric, which only Quil and YAML can express.
func Circuit(c *circuit.Circuit, target string, bindings map[string]float64) (string, error) {
	if len(bindings) > 0 {
		var err error
		if c, err = c.Bind(bindings); err != nil {
			return "", err
		}
	}

	switch target {
	case TargetQASM:
		qc, err := qiskitconv.ToQiskit(c)
		if err != nil {
			return "", err
		}
		return qc.QASM()
	case TargetYAML:
		data, err := circuit.Marshal(c)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case TargetQuil:
		p, err := quilconv.ToQuil(c)
		if err != nil {
			return "", err
		}
		return p.String(), nil
	default:
		return "", fmt.Errorf("unknown target %q", target)
	}
}
