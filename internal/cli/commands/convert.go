package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/leapq/internal/cli/output"
	"github.com/leapstack-labs/leapq/internal/render"
	"github.com/leapstack-labs/leapq/internal/state"
	"github.com/leapstack-labs/leapq/pkg/circuit"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentConversions bounds the errgroup used for multiple files.
const maxConcurrentConversions = 8

// watchDebounce is the quiet period before a changed file is reconverted.
const watchDebounce = 100 * time.Millisecond

// ConvertOptions holds options for the convert command.
type ConvertOptions struct {
	To       string
	Bindings []string
	Watch    bool
}

// conversion is the result for one circuit file.
type conversion struct {
	File   string `json:"file"`
	Target string `json:"target"`
	Output string `json:"output"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	opts := &ConvertOptions{}

	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Convert circuit files to Quil, OpenQASM or YAML",
		Long: `Convert circuit files into another representation.

Gate parameters are translated through the matching dialect. Quil output
of a parametrized circuit is a DEFCIRCUIT; OpenQASM requires every
parameter to be bound with --bind or the config file's bindings.

Several files are converted concurrently. With --watch, files are
reconverted whenever they change.`,
		Example: `  # Quil program
  leapq convert bell.yaml --to quil

  # OpenQASM 2.0 with bound angles
  leapq convert ansatz.yaml --to qasm --bind theta=0.25

  # Reconvert on save
  leapq convert ansatz.yaml --watch`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", render.TargetQuil, "Target format: quil, qasm, yaml")
	cmd.Flags().StringArrayVarP(&opts.Bindings, "bind", "b", nil, "Bind a symbol: name=value (repeatable)")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Reconvert files when they change")

	_ = cmd.RegisterFlagCompletionFunc("to", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{render.TargetQuil, render.TargetQASM, render.TargetYAML}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runConvert(cmd *cobra.Command, files []string, opts *ConvertOptions) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	target, err := render.ParseTarget(opts.To)
	if err != nil {
		return err
	}
	flagBindings, err := render.ParseBindings(opts.Bindings)
	if err != nil {
		return err
	}
	bindings := render.MergeBindings(cc.Cfg.Bindings, flagBindings)

	store, err := cc.OpenHistory()
	if err != nil {
		cc.Logger.Warn("history disabled", "error", err)
	}
	defer closeStore(store)

	results, err := convertFiles(ctx, cc, store, files, target, bindings)
	if err != nil {
		return err
	}
	if err := renderConversions(cc.Renderer, results); err != nil {
		return err
	}

	if !opts.Watch {
		return nil
	}
	return watchAndConvert(ctx, cc, store, files, target, bindings)
}

// convertFiles converts every file concurrently and returns results in
// argument order.
func convertFiles(ctx context.Context, cc *CommandContext, store state.Store, files []string, target string, bindings map[string]float64) ([]conversion, error) {
	results := make([]conversion, len(files))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentConversions)
	for i, file := range files {
		g.Go(func() error {
			started := time.Now()
			out, err := convertFile(file, target, bindings)
			cc.Record(ctx, store, state.KindConvert, target, file, out, err, started)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			cc.Logger.Debug("converted", "file", file, "target", target, "duration", time.Since(started))
			results[i] = conversion{File: file, Target: target, Output: out}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// convertFile loads, binds and converts one circuit file.
func convertFile(path, target string, bindings map[string]float64) (string, error) {
	c, err := circuit.LoadFile(path)
	if err != nil {
		return "", err
	}
	return render.Circuit(c, target, bindings)
}

func renderConversions(r *output.Renderer, results []conversion) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(results)
	case output.ModeMarkdown:
		for _, res := range results {
			r.Println(output.FormatHeader(2, res.File))
			r.Println(output.FormatCode(res.Target, res.Output))
			r.Println()
		}
	default:
		for i, res := range results {
			if len(results) > 1 {
				if i > 0 {
					r.Println()
				}
				r.Printf("# %s\n", res.File)
			}
			r.Printf("%s", res.Output)
		}
	}
	return nil
}

// watchAndConvert reconverts files on write until ctx is cancelled.
// Conversion and rendering happen on the calling goroutine; debounce
// timers only hand the changed file back to the loop.
func watchAndConvert(ctx context.Context, cc *CommandContext, store state.Store, files []string, target string, bindings map[string]float64) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Editors replace files on save, so watch the parent directories.
	watched := make(map[string]string, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		watched[abs] = f
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", f, err)
		}
	}
	cc.Logger.Info("watching for changes", "files", len(files))

	ready := make(chan string)
	stop := make(chan struct{})
	// One debounce timer per file.
	timers := make(map[string]*time.Timer)
	defer func() {
		close(stop)
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case file := <-ready:
			cc.Logger.Debug("file changed, reconverting", "file", file)
			results, err := convertFiles(ctx, cc, store, []string{file}, target, bindings)
			if err != nil {
				cc.Renderer.Errorf("%v", err)
				continue
			}
			if err := renderConversions(cc.Renderer, results); err != nil {
				return err
			}

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			file, ok := watched[abs]
			if !ok {
				continue
			}

			if t, ok := timers[file]; ok {
				t.Stop()
			}
			timers[file] = time.AfterFunc(watchDebounce, func() {
				select {
				case ready <- file:
				case <-stop:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Error("watcher error", "error", err)
		}
	}
}
