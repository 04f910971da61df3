package commands

import (
	"fmt"
	"time"

	"github.com/leapstack-labs/leapq/internal/cli/output"
	"github.com/leapstack-labs/leapq/internal/render"
	"github.com/leapstack-labs/leapq/internal/state"
	"github.com/leapstack-labs/leapq/pkg/core"
	"github.com/leapstack-labs/leapq/pkg/parser"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// EvaluateOptions holds options for the evaluate command.
type EvaluateOptions struct {
	Bindings []string
	Exact    bool
}

// evaluation is the result of evaluating one expression.
type evaluation struct {
	Input   string             `json:"input"`
	Value   string             `json:"value"`
	Symbols []string           `json:"symbols,omitempty"`
	Mode    string             `json:"mode"`
	Binding map[string]float64 `json:"bindings,omitempty"`
}

// NewEvaluateCommand creates the evaluate command.
func NewEvaluateCommand() *cobra.Command {
	opts := &EvaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate EXPR",
		Short: "Evaluate an expression numerically",
		Long: `Evaluate an expression with every symbol bound.

Values are computed in float64 by default, or with arbitrary-precision
decimals using --exact (see --precision).`,
		Example: `  leapq evaluate "2*theta + 1" --bind theta=0.5
  leapq evaluate "1/3" --exact --precision 30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Bindings, "bind", "b", nil, "Bind a symbol: name=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Exact, "exact", false, "Use arbitrary-precision decimal arithmetic")

	return cmd
}

func runEvaluate(cmd *cobra.Command, input string, opts *EvaluateOptions) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	flagBindings, err := render.ParseBindings(opts.Bindings)
	if err != nil {
		return err
	}
	bindings := render.MergeBindings(cc.Cfg.Bindings, flagBindings)

	mode := "numeric"
	if opts.Exact {
		mode = "decimal"
	}

	store, err := cc.OpenHistory()
	if err != nil {
		cc.Logger.Warn("history disabled", "error", err)
	}
	defer closeStore(store)

	started := time.Now()
	e, err := parser.Parse(input)
	var value string
	if err == nil {
		value, err = render.Expression(mode, e, bindings, cc.Cfg.Precision)
	}
	cc.Record(cmd.Context(), store, state.KindEvaluate, mode, input, value, err, started)
	if err != nil {
		return fmt.Errorf("evaluate %q: %w", input, err)
	}

	res := evaluation{Input: input, Value: value, Symbols: core.FreeSymbols(e), Mode: mode, Binding: bindings}
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(res)
	case output.ModeMarkdown:
		r.Println(output.FormatKeyValue("Expression", "`"+input+"`"))
		r.Println(output.FormatKeyValue("Value", value))
		r.Println(output.FormatKeyValue("Mode", cases.Title(language.English).String(mode)))
	default:
		r.Println(value)
	}
	return nil
}
