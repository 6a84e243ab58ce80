// Package output renders command results for terminals, pipes and scripts.
//
// The auto mode picks styled text when stdout is a terminal and Markdown
// otherwise, so piped output stays agent-friendly.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeYAML     Mode = "yaml"
)

// Modes lists the accepted output modes.
func Modes() []Mode {
	return []Mode{ModeAuto, ModeText, ModeMarkdown, ModeJSON, ModeYAML}
}

// Styles holds the lipgloss styles of text mode.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the styles used on terminals.
func DefaultStyles() Styles {
	return Styles{
		Header1: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles Styles
}

// NewRenderer creates a renderer. An empty or unknown mode means ModeAuto.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	switch Mode(strings.ToLower(string(mode))) {
	case ModeText, ModeMarkdown, ModeJSON, ModeYAML:
		mode = Mode(strings.ToLower(string(mode)))
	default:
		mode = ModeAuto
	}
	return &Renderer{out: out, errOut: errOut, mode: mode, styles: DefaultStyles()}
}

// Mode returns the configured mode.
func (r *Renderer) Mode() Mode { return r.mode }

// EffectiveMode resolves ModeAuto against the output writer.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if isTerminal(r.out) {
		return ModeText
	}
	return ModeMarkdown
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Styles returns the text mode styles.
func (r *Renderer) Styles() Styles { return r.styles }

// Writer returns the output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// Println writes a line.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Printf writes formatted text.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Header writes a heading: styled in text mode, # prefixed in Markdown.
func (r *Renderer) Header(level int, text string) {
	switch r.EffectiveMode() {
	case ModeJSON, ModeYAML:
		return
	case ModeMarkdown:
		r.Println(strings.Repeat("#", max(level, 1)) + " " + text)
		r.Println("")
	default:
		style := r.styles.Header2
		if level <= 1 {
			style = r.styles.Header1
		}
		r.Println(style.Render(text))
		r.Println("")
	}
}

// Table writes rows under headers: a box table in text mode, a Markdown
// table otherwise. Structured output goes through Data instead.
func (r *Renderer) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		r.Println(r.muted("(no rows)"))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, v := range row {
			tr[i] = v
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		r.Println("")
		return
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}

// Structured reports whether results are written as data (JSON or YAML)
// instead of headers and tables.
func (r *Renderer) Structured() bool {
	m := r.EffectiveMode()
	return m == ModeJSON || m == ModeYAML
}

// Data writes v as YAML in yaml mode and as JSON otherwise.
func (r *Renderer) Data(v any) error {
	if r.EffectiveMode() == ModeYAML {
		return r.YAML(v)
	}
	return r.JSON(v)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as a YAML document.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Code writes a block of SQL: fenced in Markdown, verbatim otherwise.
func (r *Renderer) Code(text string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println("```sql")
		r.Println(text)
		r.Println("```")
		return
	}
	r.Println(text)
}

// Success writes a status line to the error stream.
func (r *Renderer) Success(msg string) {
	r.status(r.styles.Success, "✓ ", msg)
}

// Warning writes a warning line to the error stream.
func (r *Renderer) Warning(msg string) {
	r.status(r.styles.Warning, "! ", msg)
}

// Error writes an error line to the error stream.
func (r *Renderer) Error(msg string) {
	r.status(r.styles.Error, "✗ ", msg)
}

func (r *Renderer) status(style lipgloss.Style, mark, msg string) {
	if isTerminal(r.errOut) {
		_, _ = fmt.Fprintln(r.errOut, style.Render(mark+msg))
		return
	}
	_, _ = fmt.Fprintln(r.errOut, mark+msg)
}

func (r *Renderer) muted(s string) string {
	if r.EffectiveMode() == ModeText {
		return r.styles.Muted.Render(s)
	}
	return s
}
