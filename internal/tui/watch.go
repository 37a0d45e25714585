// Package tui implements watch mode: a terminal UI that re-runs the checker
// on demand or on an interval and shows the current diagnostics.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/flowlint/flow"
	"github.com/dkoosis/flowlint/internal/render"
)

// CheckFunc runs one checker invocation and returns its diagnostics.
type CheckFunc func(ctx context.Context) ([]flow.Diagnostic, time.Duration, error)

// Config configures a watch session.
type Config struct {
	// Check runs one invocation. Required.
	Check CheckFunc
	// Interval between automatic re-checks; 0 disables automatic re-checks
	// and leaves only the manual `r` binding.
	Interval time.Duration
	// Label names the checked target in the header, normally the root path.
	Label string
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Faint(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Run launches the watch UI and blocks until the user quits or ctx ends.
func Run(ctx context.Context, cfg Config) error {
	program := tea.NewProgram(newModel(ctx, cfg), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type checkDoneMsg struct {
	diags    []flow.Diagnostic
	duration time.Duration
	err      error
}

type intervalMsg struct{}

type model struct {
	ctx context.Context
	cfg Config

	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	width    int

	running  bool
	diags    []flow.Diagnostic
	duration time.Duration
	checkErr error
	lastRun  time.Time
}

func newModel(ctx context.Context, cfg Config) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	vp := viewport.New(0, 0)
	vp.SetContent("Running first check...")
	return model{ctx: ctx, cfg: cfg, spinner: sp, viewport: vp, running: true}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.runCheck()}
	if m.cfg.Interval > 0 {
		cmds = append(cmds, m.scheduleInterval())
	}
	return tea.Batch(cmds...)
}

func (m model) runCheck() tea.Cmd {
	return func() tea.Msg {
		diags, duration, err := m.cfg.Check(m.ctx)
		return checkDoneMsg{diags: diags, duration: duration, err: err}
	}
}

func (m model) scheduleInterval() tea.Cmd {
	return tea.Tick(m.cfg.Interval, func(time.Time) tea.Msg { return intervalMsg{} })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if !m.running {
				m.running = true
				return m, tea.Batch(m.spinner.Tick, m.runCheck())
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.viewport.Width = msg.Width
		// title(1) + status bar(1) + blank(1)
		m.viewport.Height = msg.Height - 3
		m.ready = true
		m.refreshViewport()

	case spinner.TickMsg:
		if m.running {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case checkDoneMsg:
		m.running = false
		m.diags = msg.diags
		m.duration = msg.duration
		m.checkErr = msg.err
		m.lastRun = time.Now()
		m.refreshViewport()

	case intervalMsg:
		cmds := []tea.Cmd{m.scheduleInterval()}
		if !m.running {
			m.running = true
			cmds = append(cmds, m.spinner.Tick, m.runCheck())
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// refreshViewport re-renders the diagnostic list into the viewport using the
// same pretty renderer the one-shot CLI path uses.
func (m *model) refreshViewport() {
	if m.checkErr != nil {
		m.viewport.SetContent(failStyle.Render(fmt.Sprintf("check failed: %v", m.checkErr)))
		return
	}

	var buf bytes.Buffer
	r := render.New(&buf, render.Config{Format: render.FormatPretty, Color: true, Width: m.width})
	_ = r.Render(m.diags, m.duration)
	m.viewport.SetContent(buf.String())
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := titleStyle.Render("flowlint watch") + statusStyle.Render("  "+m.cfg.Label)
	if m.running {
		title += "  " + m.spinner.View()
	} else if !m.lastRun.IsZero() {
		title += statusStyle.Render("  last run " + m.lastRun.Format("15:04:05"))
	}

	help := statusStyle.Render("r re-check • ↑/↓ scroll • q quit")
	return title + "\n" + m.viewport.View() + "\n" + help
}
