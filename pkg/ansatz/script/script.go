// Package script loads ansatzes written in Starlark.
//
// A script sees number_of_qubits, number_of_layers, pi, symbol(name),
// expr(text), the elementary functions, controlled(op, *controls) and one
// builtin per gate, and must define a global circuit holding a list of
// operations:
//
//	circuit = []
//	for l in range(number_of_layers):
//	    for q in range(number_of_qubits):
//	        circuit.append(RY(symbol("theta_%d_%d" % (l, q)), q))
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	lqstarlark "github.com/leapstack-labs/leapq/internal/starlark"
	"github.com/leapstack-labs/leapq/pkg/ansatz"
	"github.com/leapstack-labs/leapq/pkg/circuit"
)

// ErrNoCircuit is returned when a script does not define circuit.
var ErrNoCircuit = errors.New("script does not define circuit")

// Config configures script execution.
type Config struct {
	Qubits int
	Layers int
	Logger *slog.Logger
	// Pool is shared between scripts when set.
	Pool *lqstarlark.ThreadPool
}

// Load reads and compiles the ansatz script at path.
func Load(path string, cfg Config) (*ansatz.Base, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ansatz script: %w", err)
	}
	return New(filepath.Base(path), src, cfg)
}

// New compiles src and generates the circuit once so script errors
// surface immediately.
func New(name string, src []byte, cfg Config) (*ansatz.Base, error) {
	if cfg.Qubits < 1 {
		return nil, fmt.Errorf("ansatz script %s: need at least one qubit, got %d", name, cfg.Qubits)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pool := cfg.Pool
	if pool == nil {
		pool = lqstarlark.NewThreadPool(1, logger)
	}

	opts := &syntax.FileOptions{Set: true, While: true, TopLevelControl: true, GlobalReassign: true}
	if _, err := opts.Parse(name, src, 0); err != nil {
		return nil, fmt.Errorf("ansatz script %s: %w", name, err)
	}

	qubits := cfg.Qubits
	generate := func(layers int) (*circuit.Circuit, error) {
		thread := pool.Get(name)
		defer pool.Put(thread)

		globals, err := starlark.ExecFileOptions(opts, thread, name, src, lqstarlark.Predeclared(qubits, layers))
		if err != nil {
			var evalErr *starlark.EvalError
			if errors.As(err, &evalErr) {
				return nil, fmt.Errorf("ansatz script %s: %s", name, evalErr.Backtrace())
			}
			return nil, fmt.Errorf("ansatz script %s: %w", name, err)
		}

		value, ok := globals["circuit"]
		if !ok {
			return nil, fmt.Errorf("ansatz script %s: %w", name, ErrNoCircuit)
		}
		ops, err := lqstarlark.Operations(value)
		if err != nil {
			return nil, fmt.Errorf("ansatz script %s: circuit: %w", name, err)
		}

		c := circuit.New(qubits)
		for i, op := range ops {
			for _, q := range op.Qubits {
				if q >= qubits {
					return nil, fmt.Errorf("ansatz script %s: operation %d uses qubit %d of a %d-qubit ansatz", name, i, q, qubits)
				}
			}
			c.AppendOperation(op)
		}
		logger.Debug("generated ansatz circuit", "script", name, "layers", layers, "operations", len(ops))
		return c, nil
	}

	a, err := ansatz.NewBase(qubits, cfg.Layers, generate)
	if err != nil {
		return nil, err
	}
	if _, err := a.ParametrizedCircuit(); err != nil {
		return nil, err
	}
	return a, nil
}
