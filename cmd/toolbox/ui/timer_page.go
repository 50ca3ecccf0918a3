package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"toolbox/internal/livetimer"
)

// TimerKeyMap binds the live timer controls.
type TimerKeyMap struct {
	Toggle key.Binding
	Stop   key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

// DefaultTimerKeys returns the standard bindings.
func DefaultTimerKeys() TimerKeyMap {
	return TimerKeyMap{
		Toggle: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "start/pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Bindings lists the bindings in footer order.
func (k TimerKeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Toggle, k.Stop, k.Reset, k.Quit}
}

type tickMsg time.Time

// TimerPageModel is the live timer display. It redraws on a fixed tick and
// reads the timer with Peek so redraws leave the ledger alone.
type TimerPageModel struct {
	timer    *livetimer.Timer
	keys     TimerKeyMap
	styles   Styles
	refresh  time.Duration
	width    int
	status   string
	err      error
	quitting bool
}

// NewTimerPageModel creates a timer page for t.
func NewTimerPageModel(t *livetimer.Timer, styles Styles, refresh time.Duration) TimerPageModel {
	if refresh <= 0 {
		refresh = 100 * time.Millisecond
	}
	return TimerPageModel{
		timer:   t,
		keys:    DefaultTimerKeys(),
		styles:  styles,
		refresh: refresh,
		width:   60,
	}
}

// Timer returns the current timer. Reset replaces it, so callers should
// read it after the program exits.
func (m TimerPageModel) Timer() *livetimer.Timer { return m.timer }

// Quitting reports whether the user asked to quit.
func (m TimerPageModel) Quitting() bool { return m.quitting }

// Err returns the last lifecycle error shown on the page.
func (m TimerPageModel) Err() error { return m.err }

// SetSize updates the render width.
func (m *TimerPageModel) SetSize(w, h int) {
	if w > 0 {
		m.width = w
	}
}

func (m TimerPageModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init starts the redraw tick.
func (m TimerPageModel) Init() tea.Cmd {
	return m.tick()
}

// Update handles key presses and ticks.
func (m TimerPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			if err := m.timer.Stop(); err != nil && !errors.Is(err, livetimer.ErrNotStarted) {
				m.err = err
			}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Toggle):
			m.toggle()

		case key.Matches(msg, m.keys.Stop):
			m.setResult("stopped", m.timer.Stop())

		case key.Matches(msg, m.keys.Reset):
			next, err := m.timer.Restart()
			if err == nil {
				m.timer = next
			}
			m.setResult("reset", err)
		}
	}
	return m, nil
}

func (m *TimerPageModel) toggle() {
	switch m.timer.State() {
	case livetimer.StateCreated:
		m.setResult("started", m.timer.Start())
	case livetimer.StateRunning:
		m.setResult("paused", m.timer.Pause())
	case livetimer.StatePaused:
		m.setResult("resumed", m.timer.Unpause())
	case livetimer.StateStopped:
		m.setResult("", livetimer.ErrStopped)
	}
}

func (m *TimerPageModel) setResult(status string, err error) {
	m.err = err
	if err != nil {
		m.status = ""
		return
	}
	m.status = status
}

// View renders the page.
func (m TimerPageModel) View() string {
	var sb strings.Builder

	title := "toolbox timer"
	if label := m.timer.Label(); label != "" {
		title += " · " + label
	}
	sb.WriteString(m.styles.Header.Render(title))
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.Clock.Render(livetimer.FormatHHMMSS(m.timer.Peek())))
	sb.WriteString("\n\n")

	state := m.timer.State()
	sb.WriteString(m.stateStyle(state).Render("● " + strings.ToUpper(state.String())))
	if m.status != "" {
		sb.WriteString("  ")
		sb.WriteString(m.styles.Muted.Render(m.status))
	}
	sb.WriteString("\n\n")

	h := m.timer.History()
	sb.WriteString(m.styles.Body.Render(fmt.Sprintf("Paused: %s", livetimer.FormatHHMMSS(m.timer.TotalPause()))))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Body.Render(fmt.Sprintf("Ledger: %d entries, %d resets", h.Len(), h.NumResets())))
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.RenderDivider(m.width))
	sb.WriteString("\n")
	sb.WriteString(m.renderHelp())
	return sb.String()
}

// stateStyle colors the state indicator: running is a success, paused a
// warning, stopped final.
func (m TimerPageModel) stateStyle(state livetimer.State) lipgloss.Style {
	switch state {
	case livetimer.StateRunning:
		return m.styles.Success
	case livetimer.StatePaused:
		return m.styles.Warning
	case livetimer.StateStopped:
		return m.styles.Error
	default:
		return m.styles.Muted
	}
}

func (m TimerPageModel) renderHelp() string {
	parts := make([]string, 0, len(m.keys.Bindings()))
	for _, b := range m.keys.Bindings() {
		help := b.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, m.styles.HelpKey.Render(help.Key)+" "+m.styles.HelpDesc.Render(help.Desc))
	}
	return m.styles.Footer.Render(strings.Join(parts, "  •  "))
}
