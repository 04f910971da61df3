package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapq/internal/render"
	"github.com/leapstack-labs/leapq/internal/state"
	"github.com/leapstack-labs/leapq/pkg/parser"
	"github.com/leapstack-labs/leapq/pkg/symbolic"
	"github.com/spf13/cobra"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Translate expressions interactively",
		Long: `Start an interactive session that translates each expression entered
into the current dialect.

Type .help for session commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd)
		},
	}
}

// replSession is the mutable state of one REPL.
type replSession struct {
	cc       *CommandContext
	store    state.Store
	dialect  string
	bindings map[string]float64
	out      io.Writer
	errOut   io.Writer
}

func newREPLSession(cc *CommandContext, store state.Store, out, errOut io.Writer) *replSession {
	return &replSession{
		cc:       cc,
		store:    store,
		dialect:  cc.Cfg.Dialect,
		bindings: render.MergeBindings(cc.Cfg.Bindings, nil),
		out:      out,
		errOut:   errOut,
	}
}

func (s *replSession) prompt() string {
	return "leapq[" + s.dialect + "]> "
}

func runREPL(cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)

	store, err := cc.OpenHistory()
	if err != nil {
		cc.Logger.Warn("history disabled", "error", err)
	}
	defer closeStore(store)

	historyFile := ""
	if cc.Cfg.StatePath != ":memory:" {
		historyFile = filepath.Join(filepath.Dir(cc.Cfg.StatePath), "repl_history")
	}

	s := newREPLSession(cc, store, cmd.OutOrStdout(), cmd.ErrOrStderr())
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		HistoryFile:     historyFile,
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(s.out, "leapq REPL (dialect: %s)\n", s.dialect)
	_, _ = fmt.Fprintln(s.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(s.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := s.handleLine(cmd.Context(), line); quit {
			return nil
		}
		rl.SetPrompt(s.prompt())
	}
}

// handleLine runs one line of input and reports whether the session ends.
func (s *replSession) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ".") {
		return s.handleDotCommand(line)
	}

	started := time.Now()
	out, err := render.Source(s.dialect, line, s.bindings, s.cc.Cfg.Precision)
	s.cc.Record(ctx, s.store, state.KindTranslate, s.dialect, line, out, err, started)
	if err != nil {
		s.errorf("%v", err)
		if ptr := parser.Pointer(line, err); ptr != "" {
			_, _ = fmt.Fprintln(s.errOut, ptr)
		}
		return false
	}
	_, _ = fmt.Fprintln(s.out, out)
	return false
}

func (s *replSession) errorf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.errOut, "%s %s\n", s.cc.Renderer.Styles().Error.Render("Error:"), fmt.Sprintf(format, a...))
}

func (s *replSession) handleDotCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".dialects":
		_, _ = fmt.Fprintln(s.out, strings.Join(symbolic.List(), ", "))

	case ".dialect":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.out, s.dialect)
			return false
		}
		name := strings.ToLower(parts[1])
		if _, ok := symbolic.Get(name); !ok {
			s.errorf("unknown dialect %q (available: %s)", parts[1], strings.Join(symbolic.List(), ", "))
			return false
		}
		s.dialect = name

	case ".bind":
		bindings, err := render.ParseBindings(parts[1:])
		if err != nil {
			s.errorf("%v", err)
			return false
		}
		for k, v := range bindings {
			s.bindings[k] = v
		}

	case ".unbind":
		for _, name := range parts[1:] {
			delete(s.bindings, name)
		}

	case ".bindings":
		names := make([]string, 0, len(s.bindings))
		for name := range s.bindings {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			_, _ = fmt.Fprintf(s.out, "%s = %s\n", name, strconv.FormatFloat(s.bindings[name], 'g', -1, 64))
		}

	case ".clear":
		_, _ = fmt.Fprint(s.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help              Show this help message
  .dialects          List registered dialects
  .dialect [name]    Show or switch the current dialect
  .bind name=value   Bind symbols for evaluating dialects
  .unbind name       Remove a binding
  .bindings          List current bindings
  .clear             Clear the screen
  .quit / .exit      Exit the REPL

Tips:
  - Any other line is translated into the current dialect
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// newREPLCompleter completes dot-commands and dialect names.
func newREPLCompleter() *readline.PrefixCompleter {
	dialects := make([]readline.PrefixCompleterInterface, 0)
	for _, name := range symbolic.List() {
		dialects = append(dialects, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".dialects"),
		readline.PcItem(".dialect", dialects...),
		readline.PcItem(".bind"),
		readline.PcItem(".unbind"),
		readline.PcItem(".bindings"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
