package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"toolbox/internal/livetimer"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m TimerPageModel, msg tea.Msg) (TimerPageModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	page, ok := updated.(TimerPageModel)
	if !ok {
		t.Fatalf("Update returned %T", updated)
	}
	return page, cmd
}

func newPage(t *testing.T) (TimerPageModel, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	timer := livetimer.New(livetimer.WithClock(clock), livetimer.WithLabel("focus"))
	return NewTimerPageModel(timer, NewStyles(LightTheme()), time.Second), clock
}

func TestTimerPageToggle(t *testing.T) {
	model, clock := newPage(t)

	view := model.View()
	if !strings.Contains(view, "00:00:00") || !strings.Contains(view, "CREATED") {
		t.Fatalf("expected idle timer view, got:\n%s", view)
	}
	if !strings.Contains(view, "focus") {
		t.Fatalf("expected label in header")
	}

	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeySpace})
	clock.Advance(90 * time.Second)
	view = model.View()
	if !strings.Contains(view, "00:01:30") || !strings.Contains(view, "RUNNING") {
		t.Fatalf("expected running timer at 00:01:30, got:\n%s", view)
	}

	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeySpace})
	clock.Advance(time.Hour)
	view = model.View()
	if !strings.Contains(view, "00:01:30") || !strings.Contains(view, "PAUSED") {
		t.Fatalf("expected paused timer frozen at 00:01:30, got:\n%s", view)
	}

	model, _ = press(t, model, runes("p"))
	if model.Timer().State() != livetimer.StateRunning {
		t.Fatalf("expected p to resume, got %s", model.Timer().State())
	}
	if !strings.Contains(model.View(), "Paused: 01:00:00") {
		t.Fatalf("expected total pause of one hour")
	}
}

func TestTimerPageRedrawDoesNotGrowLedger(t *testing.T) {
	model, clock := newPage(t)
	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeySpace})
	before := model.Timer().History().Len()

	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		var cmd tea.Cmd
		model, cmd = press(t, model, tickMsg(clock.now))
		if cmd == nil {
			t.Fatalf("expected tick to schedule another tick")
		}
		_ = model.View()
	}

	if got := model.Timer().History().Len(); got != before {
		t.Fatalf("ledger grew from %d to %d during redraws", before, got)
	}
}

func TestTimerPageStopAndReset(t *testing.T) {
	model, clock := newPage(t)
	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeySpace})
	clock.Advance(10 * time.Second)

	model, _ = press(t, model, runes("s"))
	if model.Timer().State() != livetimer.StateStopped {
		t.Fatalf("expected stopped timer")
	}

	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeySpace})
	if model.Err() == nil || !strings.Contains(model.View(), "Error:") {
		t.Fatalf("expected error when toggling a stopped timer")
	}

	original := model.Timer()
	model, _ = press(t, model, runes("r"))
	if model.Timer() == original {
		t.Fatalf("expected reset to replace the timer")
	}
	if model.Timer().State() != livetimer.StateRunning {
		t.Fatalf("expected reset timer to be running, got %s", model.Timer().State())
	}
	if model.Err() != nil {
		t.Fatalf("expected reset to clear the error, got %v", model.Err())
	}
	if !strings.Contains(model.View(), "1 resets") {
		t.Fatalf("expected reset count in view:\n%s", model.View())
	}
}

func TestTimerPageQuitStopsTimer(t *testing.T) {
	model, clock := newPage(t)
	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeySpace})
	clock.Advance(3 * time.Second)

	model, cmd := press(t, model, runes("q"))
	if !model.Quitting() {
		t.Fatalf("expected quitting")
	}
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if model.Timer().State() != livetimer.StateStopped {
		t.Fatalf("expected quit to stop the timer")
	}

	// Ticks after quit stop rescheduling.
	if _, cmd := press(t, model, tickMsg(clock.now)); cmd != nil {
		t.Fatalf("expected no tick after quit")
	}
}

func TestTimerPageQuitBeforeStart(t *testing.T) {
	model, _ := newPage(t)
	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyCtrlC})
	if !model.Quitting() || model.Err() != nil {
		t.Fatalf("expected clean quit of an unstarted timer, err=%v", model.Err())
	}
}

func TestTimerPageHelpFooter(t *testing.T) {
	model, _ := newPage(t)
	model.SetSize(100, 30)
	view := model.View()
	for _, want := range []string{"space", "start/pause", "stop", "reset", "quit"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in help footer", want)
		}
	}
}

func TestTimerPageStateColors(t *testing.T) {
	model, _ := newPage(t)

	tests := []struct {
		state livetimer.State
		want  lipgloss.TerminalColor
	}{
		{livetimer.StateCreated, LightMuted},
		{livetimer.StateRunning, Success},
		{livetimer.StatePaused, Warning},
		{livetimer.StateStopped, Destructive},
	}
	for _, tt := range tests {
		if got := model.stateStyle(tt.state).GetForeground(); got != tt.want {
			t.Errorf("stateStyle(%s) foreground = %v, want %v", tt.state, got, tt.want)
		}
	}
}
