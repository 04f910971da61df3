package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/leapq/internal/cli/output"
	"github.com/leapstack-labs/leapq/internal/state"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Kind    string
	Dialect string
	Limit   int
}

// historyEntry is the listed form of a history entry.
type historyEntry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Dialect   string    `json:"dialect"`
	Input     string    `json:"input"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	Duration  string    `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
}

func toHistoryEntry(e *state.Entry) historyEntry {
	return historyEntry{
		ID:        e.ID,
		Kind:      string(e.Kind),
		Dialect:   e.Dialect,
		Input:     e.Input,
		Output:    e.Output,
		Error:     e.Error,
		Duration:  e.Duration.String(),
		CreatedAt: e.CreatedAt,
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded translations and conversions",
		Long: `Show the history of translate, convert, evaluate and estimate runs,
newest first. History is stored in the state database (see --state).`,
		Example: `  leapq history --limit 10
  leapq history --kind convert -o json
  leapq history show <id>
  leapq history clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistoryList(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Kind, "kind", "", "Only show entries of this kind (translate, convert, evaluate, estimate)")
	cmd.Flags().StringVar(&opts.Dialect, "for-dialect", "", "Only show entries for this dialect or target")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of entries (0 for all)")

	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryClearCommand())

	return cmd
}

func openHistoryOrFail(cc *CommandContext) (state.Store, error) {
	if !cc.Cfg.History {
		return nil, fmt.Errorf("history is disabled (set history: true in leapq.yaml)")
	}
	return cc.OpenHistory()
}

func runHistoryList(cmd *cobra.Command, opts *HistoryOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	switch state.Kind(opts.Kind) {
	case "", state.KindTranslate, state.KindConvert, state.KindEvaluate, state.KindEstimate:
	default:
		return fmt.Errorf("unknown kind %q", opts.Kind)
	}
	if opts.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	store, err := openHistoryOrFail(cc)
	if err != nil {
		return err
	}
	defer closeStore(store)

	entries, err := store.List(cmd.Context(), state.Filter{
		Kind:    state.Kind(opts.Kind),
		Dialect: opts.Dialect,
		Limit:   opts.Limit,
	})
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		out := make([]historyEntry, len(entries))
		for i, e := range entries {
			out[i] = toHistoryEntry(e)
		}
		return r.JSON(out)
	}

	if len(entries) == 0 {
		r.Println("No history recorded.")
		return nil
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		result := e.Output
		if e.Error != "" {
			result = "error: " + e.Error
		}
		rows[i] = []string{
			shortID(e.ID),
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			string(e.Kind),
			e.Dialect,
			truncate(e.Input, 40),
			truncate(result, 40),
		}
	}
	r.Table([]string{"ID", "Time", "Kind", "Dialect", "Input", "Result"}, rows)
	return nil
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one history entry in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			r := cc.Renderer

			store, err := openHistoryOrFail(cc)
			if err != nil {
				return err
			}
			defer closeStore(store)

			e, err := findEntry(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(toHistoryEntry(e))
			}
			r.Println(output.FormatKeyValue("ID", e.ID))
			r.Println(output.FormatKeyValue("Kind", string(e.Kind)))
			r.Println(output.FormatKeyValue("Dialect", e.Dialect))
			r.Println(output.FormatKeyValue("Duration", e.Duration.String()))
			r.Println(output.FormatKeyValue("Created", e.CreatedAt.Local().Format(time.RFC3339)))
			r.Println()
			r.Println(output.FormatCode("", e.Input))
			if e.Error != "" {
				r.Println(output.FormatKeyValue("Error", e.Error))
			} else {
				r.Println(output.FormatCode(e.Dialect, e.Output))
			}
			return nil
		},
	}
}

func newHistoryClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc := NewCommandContext(cmd)

			store, err := openHistoryOrFail(cc)
			if err != nil {
				return err
			}
			defer closeStore(store)

			n, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			cc.Renderer.Successf("Deleted %d entries.", n)
			return nil
		},
	}
}

// findEntry looks up an entry by full ID or by a unique ID prefix.
func findEntry(ctx context.Context, store state.Store, id string) (*state.Entry, error) {
	e, err := store.Get(ctx, id)
	if !errors.Is(err, state.ErrNotFound) {
		return e, err
	}
	all, lerr := store.List(ctx, state.Filter{})
	if lerr != nil {
		return nil, lerr
	}
	var match *state.Entry
	for _, candidate := range all {
		if !strings.HasPrefix(candidate.ID, id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("ambiguous history id prefix %q", id)
		}
		match = candidate
	}
	if match == nil {
		return nil, err
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate collapses whitespace and cuts s to n runes.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
