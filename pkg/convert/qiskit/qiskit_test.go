package qiskit_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/leapstack-labs/leapq/pkg/convert/qiskit"
	"github.com/leapstack-labs/leapq/pkg/core"
	qiskitexpr "github.com/leapstack-labs/leapq/pkg/dialects/qiskit"
	"github.com/leapstack-labs/leapq/pkg/parser"
)

type testGate struct{ circuit.Gate }

func (testGate) Name() string { return "U3" }

func buildCircuit(t *testing.T, n int, ops ...circuit.Operation) *circuit.Circuit {
	t.Helper()
	c := circuit.New(n)
	for _, op := range ops {
		require.NoError(t, c.Append(op.Gate, op.Qubits...))
	}
	return c
}

func op(g circuit.Gate, qubits ...int) circuit.Operation {
	return circuit.Operation{Gate: g, Qubits: qubits}
}

func TestToQiskit(t *testing.T) {
	theta, gamma := core.Sym("theta"), core.Sym("gamma")

	tests := []struct {
		name string
		c    *circuit.Circuit
		want []qiskit.Instruction
	}{
		{
			name: "single qubit gates",
			c:    buildCircuit(t, 6, op(circuit.X, 0), op(circuit.Z, 2)),
			want: []qiskit.Instruction{
				{Class: "XGate", Params: []qiskitexpr.ParameterExpression{}, Qubits: []int{0}},
				{Class: "ZGate", Params: []qiskitexpr.ParameterExpression{}, Qubits: []int{2}},
			},
		},
		{
			name: "two qubit gate",
			c:    buildCircuit(t, 4, op(circuit.CNOT, 0, 1)),
			want: []qiskit.Instruction{
				{Class: "CXGate", Params: []qiskitexpr.ParameterExpression{}, Qubits: []int{0, 1}},
			},
		},
		{
			name: "parametric gate",
			c:    buildCircuit(t, 4, op(circuit.RX(core.Add(core.Mul(core.Num(2), theta), core.Cos(gamma))), 1)),
			want: []qiskit.Instruction{
				{
					Class: "RXGate",
					Params: []qiskitexpr.ParameterExpression{
						qiskitexpr.Binary{
							Kind:  qiskitexpr.KindAdd,
							Left:  qiskitexpr.Binary{Kind: qiskitexpr.KindMul, Left: qiskitexpr.Constant(2), Right: qiskitexpr.Parameter{Name: "theta"}},
							Right: qiskitexpr.Function{Name: "cos", Arg: qiskitexpr.Parameter{Name: "gamma"}},
						},
					},
					Qubits: []int{1},
				},
			},
		},
		{
			name: "controlled gate",
			c:    buildCircuit(t, 5, op(circuit.Controlled(circuit.SWAP, 1), 2, 0, 3)),
			want: []qiskit.Instruction{
				{Class: "SwapGate", Params: []qiskitexpr.ParameterExpression{}, NumCtrlQubits: 1, Qubits: []int{2, 0, 3}},
			},
		},
		{
			name: "multi controlled gate",
			c:    buildCircuit(t, 6, op(circuit.Controlled(circuit.Y, 2), 4, 5, 2)),
			want: []qiskit.Instruction{
				{Class: "YGate", Params: []qiskitexpr.ParameterExpression{}, NumCtrlQubits: 2, Qubits: []int{4, 5, 2}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qc, err := qiskit.ToQiskit(tt.c)
			require.NoError(t, err)
			assert.Equal(t, tt.c.NQubits, qc.NumQubits)
			assert.Equal(t, tt.want, qc.Data)

			back, err := qiskit.FromQiskit(qc)
			require.NoError(t, err)
			assert.True(t, tt.c.Equal(back), "round trip changed circuit:\n%s\n%s", tt.c, back)
		})
	}
}

func TestToQiskit_UnsupportedGate(t *testing.T) {
	c := circuit.New(1)
	c.AppendOperation(circuit.Operation{Gate: testGate{circuit.X}, Qubits: []int{0}})

	_, err := qiskit.ToQiskit(c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, qiskit.ErrUnsupportedGate))
	assert.Contains(t, err.Error(), "conversion of U3 to Qiskit is unsupported")
}

func TestFromQiskit_UnknownClass(t *testing.T) {
	qc := &qiskit.QuantumCircuit{NumQubits: 1, Data: []qiskit.Instruction{{Class: "U3Gate", Qubits: []int{0}}}}
	_, err := qiskit.FromQiskit(qc)
	assert.ErrorIs(t, err, qiskit.ErrUnsupportedGate)
}

func TestParameters(t *testing.T) {
	c := buildCircuit(t, 2,
		op(circuit.RX(parser.MustParse("theta*gamma")), 0),
		op(circuit.ZZ(parser.MustParse("alpha + theta")), 0, 1),
	)
	qc, err := qiskit.ToQiskit(c)
	require.NoError(t, err)
	assert.Equal(t, []qiskitexpr.Parameter{{Name: "alpha"}, {Name: "gamma"}, {Name: "theta"}}, qc.Parameters())
}

func TestQASM(t *testing.T) {
	c := buildCircuit(t, 3,
		op(circuit.H, 0),
		op(circuit.CNOT, 0, 1),
		op(circuit.RX(parser.MustParse("2*theta")), 2),
		op(circuit.Controlled(circuit.X, 2), 0, 1, 2),
		op(circuit.YY(core.Num(0.5)), 1, 2),
	)

	qc, err := qiskit.ToQiskit(c)
	require.NoError(t, err)
	_, err = qc.QASM()
	require.Error(t, err)
	assert.True(t, errors.Is(err, qiskit.ErrUnboundParameters))
	assert.Contains(t, err.Error(), "theta")

	bound, err := c.Bind(map[string]float64{"theta": 0.25})
	require.NoError(t, err)
	qc, err = qiskit.ToQiskit(bound)
	require.NoError(t, err)

	got, err := qc.QASM()
	require.NoError(t, err)
	want := `OPENQASM 2.0;
include "qelib1.inc";
gate ryy(param0) q0,q1 { rx(pi/2) q0; rx(pi/2) q1; cx q0,q1; rz(param0) q1; cx q0,q1; rx(-pi/2) q0; rx(-pi/2) q1; }
qreg q[3];
h q[0];
cx q[0],q[1];
rx(0.5) q[2];
ccx q[0],q[1],q[2];
ryy(0.5) q[1],q[2];
`
	assert.Equal(t, want, got)
}

func TestQASM_TooManyControls(t *testing.T) {
	c := buildCircuit(t, 3, op(circuit.Controlled(circuit.RZ(core.Num(1)), 2), 0, 1, 2))
	qc, err := qiskit.ToQiskit(c)
	require.NoError(t, err)

	_, err = qc.QASM()
	assert.ErrorIs(t, err, qiskit.ErrUnsupportedGate)
}
