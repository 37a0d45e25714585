// Package render formats diagnostics for terminal or machine consumption.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/flowlint/flow"
)

// Output formats.
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// DefaultWidth is the fallback terminal width when detection fails.
const DefaultWidth = 80

// Config controls rendering.
type Config struct {
	Format string // FormatPretty or FormatJSON
	Color  bool
	Width  int // 0 = autodetect from the writer, else DefaultWidth
}

// Renderer writes formatted diagnostics to an output.
type Renderer struct {
	out   io.Writer
	cfg   Config
	width int

	locStyle  lipgloss.Style
	errStyle  lipgloss.Style
	warnStyle lipgloss.Style
	okStyle   lipgloss.Style

	titleCaser cases.Caser
}

// New creates a Renderer for the given writer.
func New(out io.Writer, cfg Config) *Renderer {
	r := &Renderer{
		out:        out,
		cfg:        cfg,
		width:      cfg.Width,
		titleCaser: cases.Title(language.English),
	}
	if r.width <= 0 {
		r.width = detectWidth(out)
	}

	if cfg.Color {
		r.locStyle = lipgloss.NewStyle().Faint(true)
		r.errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
		r.warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
		r.okStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	} else {
		plain := lipgloss.NewStyle()
		r.locStyle, r.errStyle, r.warnStyle, r.okStyle = plain, plain, plain, plain
	}
	return r
}

// IsTerminal reports whether the writer is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func detectWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return DefaultWidth
}

// Render writes all diagnostics followed by a summary line.
func (r *Renderer) Render(diags []flow.Diagnostic, duration time.Duration) error {
	if r.cfg.Format == FormatJSON {
		return r.renderJSON(diags)
	}
	return r.renderPretty(diags, duration)
}

func (r *Renderer) renderPretty(diags []flow.Diagnostic, duration time.Duration) error {
	for _, d := range diags {
		if _, err := fmt.Fprintln(r.out, r.line(d)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(r.out, r.summary(diags, duration))
	return err
}

// line renders one diagnostic as `file:line:col  Severity  message`,
// truncated to the terminal width.
func (r *Renderer) line(d flow.Diagnostic) string {
	loc := fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)

	label := r.titleCaser.String(string(d.Severity))
	switch d.Severity {
	case flow.SeverityWarning:
		label = r.warnStyle.Render(label)
	default:
		label = r.errStyle.Render(label)
	}

	// Budget the message against the visible width of the prefix; styled
	// label width is measured on the unstyled text.
	prefixWidth := runewidth.StringWidth(loc) + len("  ") + runewidth.StringWidth(string(d.Severity)) + len("  ")
	msg := d.Message
	if budget := r.width - prefixWidth; budget > 3 && runewidth.StringWidth(msg) > budget {
		msg = runewidth.Truncate(msg, budget, "…")
	}

	return r.locStyle.Render(loc) + "  " + label + "  " + msg
}

func (r *Renderer) summary(diags []flow.Diagnostic, duration time.Duration) string {
	errs, warns := Count(diags)
	if errs == 0 && warns == 0 {
		return r.okStyle.Render("✓ No errors!") + r.locStyle.Render(" ("+formatDuration(duration)+")")
	}

	var parts []string
	if errs > 0 {
		parts = append(parts, r.errStyle.Render(fmt.Sprintf("%d %s", errs, plural("error", errs))))
	}
	if warns > 0 {
		parts = append(parts, r.warnStyle.Render(fmt.Sprintf("%d %s", warns, plural("warning", warns))))
	}
	return "✗ " + strings.Join(parts, ", ") + r.locStyle.Render(" ("+formatDuration(duration)+")")
}

// renderJSON writes the machine-readable form: an object with the diagnostic
// list and severity counts.
func (r *Renderer) renderJSON(diags []flow.Diagnostic) error {
	errs, warns := Count(diags)
	payload := struct {
		Diagnostics []flow.Diagnostic `json:"diagnostics"`
		Errors      int               `json:"errors"`
		Warnings    int               `json:"warnings"`
	}{
		Diagnostics: diags,
		Errors:      errs,
		Warnings:    warns,
	}
	if payload.Diagnostics == nil {
		payload.Diagnostics = []flow.Diagnostic{}
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// Count tallies diagnostics by severity.
func Count(diags []flow.Diagnostic) (errors, warnings int) {
	for _, d := range diags {
		if d.Severity == flow.SeverityWarning {
			warnings++
		} else {
			errors++
		}
	}
	return errors, warnings
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Round(100*time.Millisecond).Seconds())
}
