// Package output renders command results as text, markdown or JSON.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// OutputMode selects the rendering format.
type OutputMode string //nolint:revive // matches the flag name

// Output modes.
const (
	// ModeAuto renders text on a terminal and markdown otherwise.
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
)

// Mode converts a config string to an OutputMode, defaulting to ModeAuto.
func Mode(s string) OutputMode {
	switch OutputMode(strings.ToLower(s)) {
	case ModeText:
		return ModeText
	case ModeMarkdown, "md":
		return ModeMarkdown
	case ModeJSON:
		return ModeJSON
	default:
		return ModeAuto
	}
}

// Styles holds the status message styles.
type Styles struct {
	Warning lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Muted   lipgloss.Style
}

// NewStyles builds styles for w. Non-terminal writers and NO_COLOR get the
// ASCII profile, so no escape codes are emitted.
func NewStyles(w io.Writer, isTTY bool) *Styles {
	var opts []termenv.OutputOption
	if !isTTY || termenv.EnvNoColor() {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	re := lipgloss.NewRenderer(w, opts...)
	return &Styles{
		Warning: re.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		Error:   re.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		Success: re.NewStyle().Foreground(lipgloss.Color("10")),
		Muted:   re.NewStyle().Faint(true),
	}
}

// Renderer writes command output in the configured mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	isTTY  bool
	mode   OutputMode
	styles *Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	errTTY := false
	if f, ok := errOut.(*os.File); ok {
		errTTY = term.IsTerminal(int(f.Fd()))
	}
	return &Renderer{out: out, errOut: errOut, isTTY: isTTY, mode: mode, styles: NewStyles(errOut, errTTY)}
}

// EffectiveMode resolves ModeAuto against the terminal state.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Styles returns the renderer's status styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// Warnf writes a formatted warning to standard error.
func (r *Renderer) Warnf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.errOut, "%s %s\n", r.styles.Warning.Render("Warning:"), fmt.Sprintf(format, a...))
}

// Errorf writes a formatted error to standard error.
func (r *Renderer) Errorf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.errOut, "%s %s\n", r.styles.Error.Render("Error:"), fmt.Sprintf(format, a...))
}

// Successf writes a formatted confirmation line to standard output.
func (r *Renderer) Successf(format string, a ...any) {
	_, _ = fmt.Fprintln(r.out, r.styles.Success.Render(fmt.Sprintf(format, a...)))
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table renders rows under header. Markdown mode emits a markdown table;
// every other mode draws a box table.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	h := make(table.Row, len(header))
	for i, col := range header {
		h[i] = col
	}
	t.AppendHeader(h)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		return
	}
	t.SetStyle(table.StyleLight)
	if !r.isTTY {
		t.Style().Format.Header = text.FormatDefault
	}
	t.Render()
}

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, title string) string {
	return strings.Repeat("#", level) + " " + title + "\n"
}

// FormatKeyValue returns a markdown bold key-value line.
func FormatKeyValue(key, value string) string {
	return "**" + key + ":** " + value
}

// FormatCode returns a fenced code block.
func FormatCode(lang, code string) string {
	return "```" + lang + "\n" + strings.TrimRight(code, "\n") + "\n```"
}

type rendererKey struct{}

// WithRenderer stores r in ctx.
func WithRenderer(ctx context.Context, r *Renderer) context.Context {
	return context.WithValue(ctx, rendererKey{}, r)
}

// FromContext returns the renderer stored in ctx, or an auto-mode renderer
// on the process streams.
func FromContext(ctx context.Context) *Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*Renderer); ok {
		return r
	}
	return NewRenderer(os.Stdout, os.Stderr, ModeAuto)
}
