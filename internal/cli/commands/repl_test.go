package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/leapq/internal/cli/config"
	"github.com/leapstack-labs/leapq/internal/cli/output"
	"github.com/leapstack-labs/leapq/internal/cli/testutil"
)

func newTestSession(t *testing.T) (*replSession, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := testutil.TestConfig(t)
	cfg.Bindings = map[string]float64{"theta": 1}
	var out, errOut bytes.Buffer
	cc := &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(context.Background()),
		Renderer: output.NewRendererWithTTY(&out, &errOut, false, output.ModeText),
	}
	return newREPLSession(cc, nil, &out, &errOut), &out, &errOut
}

func TestREPLSession(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		wantOut   string
		wantErr   string
		wantQuit  bool
		wantState string
	}{
		{
			name:      "translate in default dialect",
			lines:     []string{"2*theta"},
			wantOut:   "%theta",
			wantState: "quil",
		},
		{
			name:      "switch dialect",
			lines:     []string{".dialect NUMERIC", "2*theta"},
			wantOut:   "2\n",
			wantState: "numeric",
		},
		{
			name:      "bind and unbind",
			lines:     []string{".dialect numeric", ".bind x=3", "x*theta", ".unbind x", "x"},
			wantOut:   "3\n",
			wantErr:   "unbound symbol",
			wantState: "numeric",
		},
		{
			name:      "list bindings",
			lines:     []string{".bind a=0.5", ".bindings"},
			wantOut:   "a = 0.5\ntheta = 1\n",
			wantState: "quil",
		},
		{
			name:      "unknown dialect",
			lines:     []string{".dialect cirq"},
			wantErr:   "unknown dialect",
			wantState: "quil",
		},
		{
			name:      "unknown command",
			lines:     []string{".tables"},
			wantErr:   "Unknown command: .tables",
			wantState: "quil",
		},
		{
			name:      "parse error keeps session",
			lines:     []string{"2*(", ".dialect"},
			wantOut:   "quil\n",
			wantErr:   "2*(\n   ^",
			wantState: "quil",
		},
		{
			name:      "quit",
			lines:     []string{".quit"},
			wantQuit:  true,
			wantState: "quil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, out, errOut := newTestSession(t)
			quit := false
			for _, line := range tt.lines {
				quit = s.handleLine(context.Background(), line)
			}
			assert.Equal(t, tt.wantQuit, quit)
			assert.Equal(t, tt.wantState, s.dialect)
			if tt.wantOut != "" {
				assert.Contains(t, out.String(), tt.wantOut)
			}
			if tt.wantErr != "" {
				assert.Contains(t, errOut.String(), tt.wantErr)
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestREPLSession_DoesNotMutateConfigBindings(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.handleLine(context.Background(), ".bind theta=5")
	assert.Equal(t, 1.0, s.cc.Cfg.Bindings["theta"])
	assert.Equal(t, 5.0, s.bindings["theta"])
}
