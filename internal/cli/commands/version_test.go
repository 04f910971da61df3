package commands

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapq/internal/cli/testutil"
)

func TestVersion(t *testing.T) {
	info := BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-02"}

	tests := []struct {
		name    string
		output  string
		wantOut []string
	}{
		{
			name:   "text",
			output: "text",
			wantOut: []string{
				"leapq v1.2.3\n",
				"quantum circuit parameters",
				"commit abc123, built 2026-01-02, " + runtime.Version(),
				"dialects: ",
				"quil",
			},
		},
		{
			name:    "markdown falls back to text",
			output:  "markdown",
			wantOut: []string{"leapq v1.2.3\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testutil.TestConfig(t)
			cfg.Output = tt.output
			res := testutil.RunCommand(t, NewVersionCommand(info), cfg, "")
			require.NoError(t, res.Err)
			for _, want := range tt.wantOut {
				assert.Contains(t, res.Out, want)
			}
		})
	}
}

func TestVersion_JSON(t *testing.T) {
	cfg := testutil.TestConfig(t)
	cfg.Output = "json"
	res := testutil.RunCommand(t, NewVersionCommand(BuildInfo{Version: "dev"}), cfg, "")
	require.NoError(t, res.Err)

	var got BuildInfo
	require.NoError(t, json.Unmarshal([]byte(res.Out), &got))
	assert.Equal(t, "dev", got.Version)
	assert.Equal(t, runtime.Version(), got.GoVersion)
	assert.Contains(t, got.Dialects, "qiskit")
}

func TestVersion_RejectsArgs(t *testing.T) {
	res := testutil.RunCommand(t, NewVersionCommand(BuildInfo{}), testutil.TestConfig(t), "", "extra")
	assert.Error(t, res.Err)
}
