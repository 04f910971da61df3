package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapq/internal/cli/output"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
	"github.com/spf13/cobra"
)

// dialectInfo is the listed form of a registered dialect.
type dialectInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Functions   []string `json:"functions"`
	Default     bool     `json:"default"`
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects [NAME]",
		Short: "List registered dialects",
		Long: `List the registered dialects and the operators each one supports.

With a name, show only that dialect.`,
		Example: `  leapq dialects
  leapq dialects qiskit -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDialects(cmd, args)
		},
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return symbolic.List(), cobra.ShellCompDirectiveNoFileComp
		},
	}
}

func runDialects(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)
	r := cc.Renderer

	names := symbolic.List()
	if len(args) == 1 {
		if _, ok := symbolic.Get(args[0]); !ok {
			return fmt.Errorf("unknown dialect %q (available: %s)", args[0], strings.Join(names, ", "))
		}
		names = []string{strings.ToLower(args[0])}
	}

	infos := make([]dialectInfo, 0, len(names))
	for _, name := range names {
		d, _ := symbolic.Get(name)
		infos = append(infos, dialectInfo{
			Name:        d.GetName(),
			Description: d.GetDescription(),
			Functions:   d.FunctionNames(),
			Default:     strings.EqualFold(name, cc.Cfg.Dialect),
		})
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(infos)
	}

	rows := make([][]string, len(infos))
	for i, info := range infos {
		name := info.Name
		if info.Default {
			name += " *"
		}
		rows[i] = []string{name, info.Description, strings.Join(info.Functions, ", ")}
	}
	r.Table([]string{"Dialect", "Description", "Functions"}, rows)
	return nil
}
