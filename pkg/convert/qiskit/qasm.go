package qiskit

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapq/pkg/core"
	qiskitexpr "github.com/leapstack-labs/leapq/pkg/dialects/qiskit"
)

// ErrUnboundParameters is returned when exporting a circuit that still has
// free parameters.
var ErrUnboundParameters = errors.New("circuit has unbound parameters")

// qasmNames maps gate classes to qelib1.inc gate names, indexed by the
// number of controls.
var qasmNames = map[string][]string{
	"XGate":      {"x", "cx", "ccx"},
	"YGate":      {"y", "cy"},
	"ZGate":      {"z", "cz"},
	"HGate":      {"h", "ch"},
	"TGate":      {"t"},
	"IGate":      {"id"},
	"CXGate":     {"cx", "ccx"},
	"CZGate":     {"cz"},
	"SwapGate":   {"swap", "cswap"},
	"iSwapGate":  {"iswap"},
	"RXGate":     {"rx", "crx"},
	"RYGate":     {"ry", "cry"},
	"RZGate":     {"rz", "crz"},
	"PhaseGate":  {"p", "cp"},
	"CPhaseGate": {"cp"},
	"RXXGate":    {"rxx"},
	"RYYGate":    {"ryy"},
	"RZZGate":    {"rzz"},
}

// definitions holds gates outside qelib1.inc, emitted on first use.
var definitions = map[string]string{
	"iswap": "gate iswap q0,q1 { s q0; s q1; h q0; cx q0,q1; cx q1,q0; h q1; }",
	"ryy":   "gate ryy(param0) q0,q1 { rx(pi/2) q0; rx(pi/2) q1; cx q0,q1; rz(param0) q1; cx q0,q1; rx(-pi/2) q0; rx(-pi/2) q1; }",
}

// QASM renders the circuit as OpenQASM 2.0. Every parameter must be bound.
func (qc *QuantumCircuit) QASM() (string, error) {
	if params := qc.Parameters(); len(params) > 0 {
		names := make([]string, len(params))
		for i, p := range params {
			names[i] = p.Name
		}
		return "", fmt.Errorf("%w: %s", ErrUnboundParameters, strings.Join(names, ", "))
	}

	var header, body strings.Builder
	header.WriteString("OPENQASM 2.0;\ninclude \"qelib1.inc\";\n")
	defined := make(map[string]bool)

	for i, inst := range qc.Data {
		name, err := qasmName(inst)
		if err != nil {
			return "", fmt.Errorf("instruction %d: %w", i, err)
		}
		if def, ok := definitions[name]; ok && !defined[name] {
			defined[name] = true
			header.WriteString(def)
			header.WriteByte('\n')
		}

		body.WriteString(name)
		if len(inst.Params) > 0 {
			values := make([]string, len(inst.Params))
			for j, p := range inst.Params {
				v, err := qiskitexpr.Float(p)
				if err != nil {
					return "", fmt.Errorf("instruction %d: %w", i, err)
				}
				values[j] = strconv.FormatFloat(v, 'g', -1, 64)
			}
			body.WriteString("(" + strings.Join(values, ",") + ")")
		}
		qubits := make([]string, len(inst.Qubits))
		for j, q := range inst.Qubits {
			qubits[j] = fmt.Sprintf("q[%d]", q)
		}
		body.WriteString(" " + strings.Join(qubits, ",") + ";\n")
	}

	fmt.Fprintf(&header, "qreg q[%d];\n", qc.NumQubits)
	return header.String() + body.String(), nil
}

func qasmName(inst Instruction) (string, error) {
	names, ok := qasmNames[inst.Class]
	if !ok {
		return "", &UnsupportedGateError{Gate: inst.Class, Reason: "no OpenQASM 2.0 name"}
	}
	if inst.NumCtrlQubits >= len(names) {
		return "", &UnsupportedGateError{
			Gate:   inst.Class,
			Reason: fmt.Sprintf("no OpenQASM 2.0 name with %d controls", inst.NumCtrlQubits),
		}
	}
	return names[inst.NumCtrlQubits], nil
}

func sortParameters(params []qiskitexpr.Parameter) {
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
}

func paramsToCore(params []qiskitexpr.ParameterExpression) ([]core.Expression, error) {
	out := make([]core.Expression, len(params))
	for i, p := range params {
		e, err := qiskitexpr.ToCore(p)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}
