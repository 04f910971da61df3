// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/leapstack-labs/leapq/internal/cli/config"
	"github.com/leapstack-labs/leapq/internal/cli/output"
	"github.com/spf13/cobra"
)

// TestConfig returns a default configuration whose history database lives
// in a per-test temporary directory.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Dialect:   config.DefaultDialect,
		StatePath: filepath.Join(t.TempDir(), "history.db"),
		Output:    "text",
		Precision: config.DefaultPrecision,
		History:   true,
		Backend:   config.BackendConfig{Samples: 100, Seed: 1},
	}
}

// WriteFile writes content to name under dir and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// CommandResult is the captured output of a command run.
type CommandResult struct {
	Out    string
	ErrOut string
	Err    error
}

// RunCommand executes cmd with args and cfg in its context, capturing
// stdout and stderr. stdin is used as the command's input when non-empty.
func RunCommand(t *testing.T, cmd *cobra.Command, cfg *config.Config, stdin string, args ...string) CommandResult {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)

	ctx := config.WithConfig(context.Background(), cfg)
	err := cmd.ExecuteContext(ctx)
	return CommandResult{Out: out.String(), ErrOut: errOut.String(), Err: err}
}

// SyncBuffer is a bytes.Buffer safe for a running command to write while
// the test reads.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// StartCommand runs cmd in the background under ctx. The returned channel
// receives the command's error once it exits.
func StartCommand(ctx context.Context, cmd *cobra.Command, cfg *config.Config, args ...string) (out, errOut *SyncBuffer, done <-chan error) {
	out, errOut = &SyncBuffer{}, &SyncBuffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(""))
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)

	ch := make(chan error, 1)
	go func() {
		ch <- cmd.ExecuteContext(config.WithConfig(ctx, cfg))
	}()
	return out, errOut, ch
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
