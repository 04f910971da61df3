package output

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"text", ModeText},
		{"TEXT", ModeText},
		{"markdown", ModeMarkdown},
		{"md", ModeMarkdown},
		{"json", ModeJSON},
		{"auto", ModeAuto},
		{"", ModeAuto},
		{"yaml", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.in))
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, ModeText, NewRendererWithTTY(&buf, &buf, true, ModeAuto).EffectiveMode())
	assert.Equal(t, ModeMarkdown, NewRendererWithTTY(&buf, &buf, false, ModeAuto).EffectiveMode())
	assert.Equal(t, ModeJSON, NewRendererWithTTY(&buf, &buf, true, ModeJSON).EffectiveMode())

	// A buffer is never a terminal.
	assert.False(t, NewRenderer(&buf, &buf, ModeAuto).IsTTY())
}

func TestTable(t *testing.T) {
	var md bytes.Buffer
	NewRendererWithTTY(&md, &md, false, ModeMarkdown).Table(
		[]string{"Name", "Functions"},
		[][]string{{"quil", "add, mul"}},
	)
	assert.Contains(t, md.String(), "| Name | Functions |")
	assert.Contains(t, md.String(), "| quil | add, mul |")

	var txt bytes.Buffer
	NewRendererWithTTY(&txt, &txt, true, ModeText).Table([]string{"A"}, [][]string{{"x"}})
	assert.Contains(t, txt.String(), "┌")
	assert.Contains(t, txt.String(), "x")
}

func TestJSONAndMessages(t *testing.T) {
	var out, errOut bytes.Buffer
	r := NewRendererWithTTY(&out, &errOut, false, ModeJSON)

	require.NoError(t, r.JSON(map[string]string{"dialect": "quil"}))
	assert.JSONEq(t, `{"dialect":"quil"}`, out.String())

	r.Warnf("ignoring %s", "x")
	r.Errorf("bad %d", 1)
	assert.Equal(t, "Warning: ignoring x\nError: bad 1\n", errOut.String())

	out.Reset()
	r.Successf("Deleted %d entries.", 3)
	assert.Equal(t, "Deleted 3 entries.\n", out.String())
}

func TestStylesPlainOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewStyles(&buf, false)
	for _, style := range []lipgloss.Style{s.Warning, s.Error, s.Success, s.Muted} {
		assert.Equal(t, "text", style.Render("text"))
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "## Result\n", FormatHeader(2, "Result"))
	assert.Equal(t, "**Dialect:** quil", FormatKeyValue("Dialect", "quil"))
	assert.Equal(t, "```quil\nH 0\n```", FormatCode("quil", "H 0\n"))
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	r := NewRendererWithTTY(&buf, &buf, false, ModeText)
	ctx := WithRenderer(context.Background(), r)
	assert.Same(t, r, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
