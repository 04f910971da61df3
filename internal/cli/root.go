// Package cli provides the command-line interface for leapq.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/leapq/internal/cli/commands"
	"github.com/leapstack-labs/leapq/internal/cli/config"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
	"github.com/spf13/cobra"

	// Register the built-in dialects.
	_ "github.com/leapstack-labs/leapq/pkg/dialects/canonical"
	_ "github.com/leapstack-labs/leapq/pkg/dialects/decimal"
	_ "github.com/leapstack-labs/leapq/pkg/dialects/numeric"
	_ "github.com/leapstack-labs/leapq/pkg/dialects/qiskit"
	_ "github.com/leapstack-labs/leapq/pkg/dialects/quil"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "leapq",
		Short: "leapq - symbolic expression translator for quantum circuits",
		Long: `leapq translates symbolic gate parameters between dialects.

Expressions are parsed into a canonical tree and translated into Quil,
Qiskit, exact decimal or float64 form. Circuits can be converted to Quil
or OpenQASM, and operator expectation values estimated on a mock backend.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			res, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			cfg := res.Config

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)

			if res.FileUsed != "" {
				logger.Debug("using config file", "path", res.FileUsed)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: leapq.yaml, searched upward)")
	rootCmd.PersistentFlags().StringP("dialect", "d", "", "Target dialect (default quil)")
	rootCmd.PersistentFlags().String("state", "", "Path to history database")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Int32("precision", config.DefaultPrecision, "Decimal digits for the decimal dialect")
	rootCmd.PersistentFlags().Bool("history", true, "Record commands in the history database")
	rootCmd.PersistentFlags().Int("samples", config.DefaultSamples, "Mock backend samples per circuit")
	rootCmd.PersistentFlags().Uint64("seed", 0, "Mock backend random seed")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return symbolic.List(), cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(commands.BuildInfo{Version: Version, Commit: GitCommit, Date: BuildDate}))
	rootCmd.AddCommand(commands.NewTranslateCommand())
	rootCmd.AddCommand(commands.NewConvertCommand())
	rootCmd.AddCommand(commands.NewDialectsCommand())
	rootCmd.AddCommand(commands.NewEvaluateCommand())
	rootCmd.AddCommand(commands.NewREPLCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewEstimateCommand())
	rootCmd.AddCommand(commands.NewAnsatzCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for leapq.

To load completions:

Bash:
  $ source <(leapq completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ leapq completion bash > /etc/bash_completion.d/leapq
  # macOS:
  $ leapq completion bash > $(brew --prefix)/etc/bash_completion.d/leapq

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ leapq completion zsh > "${fpath[1]}/_leapq"

Fish:
  $ leapq completion fish | source

  # To load completions for each session, execute once:
  $ leapq completion fish > ~/.config/fish/completions/leapq.fish

PowerShell:
  PS> leapq completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
