// Package commands implements the leapq CLI commands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/leapq/internal/cli/config"
	"github.com/leapstack-labs/leapq/internal/cli/output"
	"github.com/leapstack-labs/leapq/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common resources for command execution.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the command's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := config.FromContext(ctx)
	mode := output.Mode(cfg.Output)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}
}

// OpenHistory opens the history store, creating its directory if needed.
// It returns nil when history is disabled.
func (c *CommandContext) OpenHistory() (state.Store, error) {
	if !c.Cfg.History {
		return nil, nil
	}
	if c.Cfg.StatePath != ":memory:" {
		if dir := filepath.Dir(c.Cfg.StatePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}
	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(c.Cfg.StatePath); err != nil {
		return nil, err
	}
	return store, nil
}

// Record writes one history entry. Failures are logged, not returned.
func (c *CommandContext) Record(ctx context.Context, store state.Store, kind state.Kind, dialect, input, out string, opErr error, started time.Time) {
	if store == nil {
		return
	}
	e := state.Entry{
		Kind:     kind,
		Dialect:  dialect,
		Input:    input,
		Output:   out,
		Duration: time.Since(started),
	}
	if opErr != nil {
		e.Error = opErr.Error()
	}
	if _, err := store.Record(ctx, e); err != nil {
		c.Logger.Warn("failed to record history", "kind", kind, "error", err)
	}
}

// closeStore closes store if it is open.
func closeStore(store state.Store) {
	if store != nil {
		_ = store.Close()
	}
}
