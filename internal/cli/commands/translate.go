package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/leapstack-labs/leapq/internal/cli/output"
	"github.com/leapstack-labs/leapq/internal/render"
	"github.com/leapstack-labs/leapq/internal/state"
	"github.com/spf13/cobra"
)

// TranslateOptions holds options for the translate command.
type TranslateOptions struct {
	Bindings []string
}

// translation is one translated expression.
type translation struct {
	Input   string `json:"input"`
	Dialect string `json:"dialect"`
	Output  string `json:"output"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand() *cobra.Command {
	opts := &TranslateOptions{}

	cmd := &cobra.Command{
		Use:   "translate [EXPR...]",
		Short: "Translate expressions into a dialect",
		Long: `Translate symbolic expressions into the native form of a dialect.

Expressions are read from the arguments, or one per line from stdin when
no arguments are given. Evaluating dialects (numeric, decimal) and the
canonical dialect use bindings from the config file and --bind.`,
		Example: `  # Quil parameter arithmetic
  leapq translate "2*theta + pi/2" -d quil

  # Qiskit ParameterExpression
  leapq translate "cos(theta)^2" -d qiskit

  # Several expressions from a file
  leapq translate -d qiskit < angles.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args, opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Bindings, "bind", "b", nil, "Bind a symbol: name=value (repeatable)")

	return cmd
}

func runTranslate(cmd *cobra.Command, args []string, opts *TranslateOptions) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()
	r := cc.Renderer

	dialect := cc.Cfg.Dialect
	flagBindings, err := render.ParseBindings(opts.Bindings)
	if err != nil {
		return err
	}
	bindings := render.MergeBindings(cc.Cfg.Bindings, flagBindings)

	inputs := args
	if len(inputs) == 0 {
		if inputs, err = readLines(cmd.InOrStdin()); err != nil {
			return err
		}
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no expressions given")
	}

	store, err := cc.OpenHistory()
	if err != nil {
		cc.Logger.Warn("history disabled", "error", err)
	}
	defer closeStore(store)

	results := make([]translation, 0, len(inputs))
	for _, in := range inputs {
		started := time.Now()
		out, err := render.Source(dialect, in, bindings, cc.Cfg.Precision)
		cc.Record(ctx, store, state.KindTranslate, dialect, in, out, err, started)
		if err != nil {
			return fmt.Errorf("translate %q: %w", in, err)
		}
		cc.Logger.Debug("translated", "dialect", dialect, "input", in, "output", out)
		results = append(results, translation{Input: in, Dialect: dialect, Output: out})
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(results)
	case output.ModeMarkdown:
		rows := make([][]string, len(results))
		for i, res := range results {
			rows[i] = []string{res.Input, res.Output}
		}
		r.Table([]string{"Expression", dialect}, rows)
	default:
		for _, res := range results {
			r.Println(res.Output)
		}
	}
	return nil
}

// readLines reads non-empty, non-comment lines from r.
func readLines(r io.Reader) ([]string, error) {
	if f, ok := r.(*os.File); ok && isTerminal(f) {
		return nil, nil
	}
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return lines, nil
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
