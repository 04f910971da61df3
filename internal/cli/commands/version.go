package commands

import (
	"runtime"
	"strings"

	"github.com/leapstack-labs/leapq/internal/cli/output"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
	"github.com/spf13/cobra"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string   `json:"version"`
	Commit    string   `json:"commit"`
	Date      string   `json:"date"`
	GoVersion string   `json:"go_version"`
	Dialects  []string `json:"dialects"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display leapq version, build information and the registered dialects.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info.GoVersion = runtime.Version()
			info.Dialects = symbolic.List()

			r := NewCommandContext(cmd).Renderer
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(info)
			}
			r.Printf("leapq v%s\n", info.Version)
			r.Println("Symbolic expression translator for quantum circuit parameters")
			r.Printf("commit %s, built %s, %s\n", info.Commit, info.Date, info.GoVersion)
			if len(info.Dialects) > 0 {
				r.Printf("dialects: %s\n", strings.Join(info.Dialects, ", "))
			}
			return nil
		},
	}
}
