package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/flowlint/flow"
)

func testConfig() Config {
	return Config{
		Check: func(context.Context) ([]flow.Diagnostic, time.Duration, error) {
			return nil, 0, nil
		},
		Label: "/tmp/project",
	}
}

func TestNewModel_When_Fresh(t *testing.T) {
	t.Parallel()

	m := newModel(context.Background(), testConfig())

	assert.True(t, m.running, "first check starts immediately")
	assert.False(t, m.ready, "not ready until the first WindowSizeMsg")
}

func TestUpdate_When_WindowSized(t *testing.T) {
	t.Parallel()

	m := newModel(context.Background(), testConfig())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(model)

	assert.True(t, m.ready)
	assert.Equal(t, 80, m.viewport.Width)
	assert.Equal(t, 21, m.viewport.Height)
}

func TestUpdate_When_CheckDone(t *testing.T) {
	t.Parallel()

	diags := []flow.Diagnostic{
		{File: "foo.js", Line: 10, Column: 5, Severity: flow.SeverityError, Message: "Cannot resolve name `bar`"},
	}

	m := newModel(context.Background(), testConfig())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(model)
	next, _ = m.Update(checkDoneMsg{diags: diags, duration: 42 * time.Millisecond})
	m = next.(model)

	assert.False(t, m.running)
	assert.Equal(t, diags, m.diags)
	assert.False(t, m.lastRun.IsZero())
	assert.Contains(t, m.viewport.View(), "foo.js:10:5")
}

func TestUpdate_When_CheckFails(t *testing.T) {
	t.Parallel()

	m := newModel(context.Background(), testConfig())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(model)
	next, _ = m.Update(checkDoneMsg{err: errors.New("flow: not found")})
	m = next.(model)

	assert.Contains(t, m.viewport.View(), "check failed")
	assert.Contains(t, m.viewport.View(), "flow: not found")
}

func TestUpdate_When_ManualRecheck(t *testing.T) {
	t.Parallel()

	m := newModel(context.Background(), testConfig())
	next, _ := m.Update(checkDoneMsg{})
	m = next.(model)
	require.False(t, m.running)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = next.(model)

	assert.True(t, m.running)
	assert.NotNil(t, cmd)
}

func TestUpdate_When_RecheckWhileRunning(t *testing.T) {
	t.Parallel()

	m := newModel(context.Background(), testConfig())
	require.True(t, m.running)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = next.(model)

	assert.True(t, m.running, "re-check while running is a no-op")
}

func TestUpdate_When_IntervalFires(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Interval = time.Second

	m := newModel(context.Background(), cfg)
	next, _ := m.Update(checkDoneMsg{})
	m = next.(model)

	next, cmd := m.Update(intervalMsg{})
	m = next.(model)

	assert.True(t, m.running)
	assert.NotNil(t, cmd, "interval must reschedule itself")
}

func TestUpdate_When_Quit(t *testing.T) {
	t.Parallel()

	m := newModel(context.Background(), testConfig())
	for _, key := range []string{"q", "ctrl+c"} {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		if key == "ctrl+c" {
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		}
		_, cmd := m.Update(msg)
		require.NotNil(t, cmd, "key %q should quit", key)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestView_When_NotReady(t *testing.T) {
	t.Parallel()

	m := newModel(context.Background(), testConfig())

	assert.Equal(t, "Loading...", m.View())
}

func TestView_When_Idle(t *testing.T) {
	t.Parallel()

	m := newModel(context.Background(), testConfig())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(model)
	next, _ = m.Update(checkDoneMsg{})
	m = next.(model)

	view := m.View()
	assert.Contains(t, view, "flowlint watch")
	assert.Contains(t, view, "/tmp/project")
	assert.Contains(t, view, "last run")
	assert.Contains(t, view, "q quit")
}
