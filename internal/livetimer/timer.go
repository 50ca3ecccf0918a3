// Package livetimer implements a pausable stopwatch whose lifecycle is
// recorded in an append-only ledger.
//
// A timer moves Created -> Running <-> Paused -> Stopped. Elapsed time is the
// wall-clock time since Start minus the time spent paused. Every effective
// lifecycle call and every Elapsed query appends one ledger entry; calls that
// change nothing append nothing.
package livetimer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"toolbox/internal/logging"
)

// State is the lifecycle phase of a Timer.
type State int

const (
	StateCreated State = iota
	StateRunning
	StatePaused
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Timer is a pausable stopwatch. It is safe for concurrent use.
type Timer struct {
	mu      sync.Mutex
	id      uuid.UUID
	label   string
	clock   Clock
	history *History

	startTime  time.Time
	running    bool
	paused     bool
	stopped    bool
	totalPause time.Duration
	pauseStart time.Time
	pauseEnd   time.Time
	stopTime   time.Time
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock sets the timestamp source.
func WithClock(c Clock) Option {
	return func(t *Timer) { t.clock = c }
}

// WithLabel attaches a human-readable label.
func WithLabel(label string) Option {
	return func(t *Timer) { t.label = label }
}

// WithID overrides the generated session ID.
func WithID(id uuid.UUID) Option {
	return func(t *Timer) { t.id = id }
}

// New creates a timer with a fresh ledger and records CREATE.
func New(opts ...Option) *Timer {
	t := &Timer{id: uuid.New(), clock: SystemClock{}}
	for _, opt := range opts {
		opt(t)
	}
	if t.clock == nil {
		t.clock = SystemClock{}
	}
	t.history = NewHistory(t.clock)
	t.history.record(ActionCreate, t.clock.Now())
	logging.Timer("timer %s created", t.id)
	return t
}

// ID identifies the timing session. Timers produced by Reset keep the ID.
func (t *Timer) ID() uuid.UUID { return t.id }

// Label returns the label set with WithLabel.
func (t *Timer) Label() string { return t.label }

// History returns the shared ledger.
func (t *Timer) History() *History { return t.history }

// State reports the lifecycle phase.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state()
}

func (t *Timer) state() State {
	switch {
	case t.stopped:
		return StateStopped
	case t.paused:
		return StatePaused
	case t.running:
		return StateRunning
	default:
		return StateCreated
	}
}

// StartedAt returns the start instant, zero if not started.
func (t *Timer) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startTime
}

// TotalPause returns the accumulated time spent in completed pauses.
func (t *Timer) TotalPause() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalPause
}

// Start begins timing. Starting a running or paused timer does nothing.
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return ErrStopped
	}
	if !t.startTime.IsZero() {
		return nil
	}

	now := t.clock.Now()
	t.startTime = now
	t.running = true
	t.history.record(ActionStart, now)
	logging.Timer("timer %s started", t.id)
	return nil
}

// Pause suspends timing. Pausing a paused timer does nothing.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkActive(); err != nil {
		return err
	}
	if t.paused {
		return nil
	}

	now := t.clock.Now()
	t.pauseStart = now
	t.paused = true
	t.history.record(ActionPause, now)
	logging.TimerDebug("timer %s paused", t.id)
	return nil
}

// Unpause resumes timing and adds the finished pause to the pause total.
// Unpausing a timer that is not paused does nothing.
func (t *Timer) Unpause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkActive(); err != nil {
		return err
	}
	if !t.paused {
		return nil
	}

	now := t.clock.Now()
	t.pauseEnd = now
	t.totalPause += t.pauseEnd.Sub(t.pauseStart)
	t.paused = false
	t.history.record(ActionUnpause, now)
	logging.TimerDebug("timer %s unpaused, total pause %v", t.id, t.totalPause)
	return nil
}

func (t *Timer) checkActive() error {
	if t.startTime.IsZero() {
		return ErrNotStarted
	}
	if t.stopped {
		return ErrNotRunning
	}
	return nil
}

// Stop freezes the timer. An open pause is closed first so the frozen value
// excludes it. Stopping a stopped timer does nothing.
func (t *Timer) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.startTime.IsZero() {
		return ErrNotStarted
	}
	if t.stopped {
		return nil
	}

	now := t.clock.Now()
	if t.paused {
		t.pauseEnd = now
		t.totalPause += t.pauseEnd.Sub(t.pauseStart)
		t.paused = false
	}
	t.stopTime = now
	t.running = false
	t.stopped = true
	t.history.record(ActionStop, now)
	logging.Timer("timer %s stopped", t.id)
	return nil
}

// Elapsed returns the time since Start, minus time spent paused unless
// includePauses is set. The value is frozen once the timer stops. Each call
// records a QUERY entry.
func (t *Timer) Elapsed(includePauses bool) (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.startTime.IsZero() {
		return 0, ErrNotStarted
	}
	now := t.clock.Now()
	d := t.elapsedAt(now, includePauses)
	t.history.record(ActionQuery, now)
	return d, nil
}

// Peek returns Elapsed(false) without recording a ledger entry.
// Returns zero for a timer that has not started.
func (t *Timer) Peek() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.startTime.IsZero() {
		return 0
	}
	return t.elapsedAt(t.clock.Now(), false)
}

func (t *Timer) elapsedAt(now time.Time, includePauses bool) time.Duration {
	end := now
	if t.stopped {
		end = t.stopTime
	}
	d := end.Sub(t.startTime)
	if includePauses {
		return d
	}
	d -= t.totalPause
	if t.paused {
		d -= now.Sub(t.pauseStart)
	}
	return d
}

// ElapsedSeconds returns Elapsed(false) in seconds.
func (t *Timer) ElapsedSeconds() (float64, error) {
	d, err := t.Elapsed(false)
	if err != nil {
		return 0, err
	}
	return d.Seconds(), nil
}

// ElapsedString returns Elapsed(false) formatted as HH:MM:SS.
func (t *Timer) ElapsedString() (string, error) {
	d, err := t.Elapsed(false)
	if err != nil {
		return "", err
	}
	return FormatHHMMSS(d), nil
}

// Reset records RESET and returns a new, unstarted timer that shares this
// timer's ledger, clock, ID and label. The receiver is left unchanged.
func (t *Timer) Reset() *Timer {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history.record(ActionReset, t.clock.Now())
	logging.Timer("timer %s reset (%d resets)", t.id, t.history.NumResets())
	return &Timer{
		id:      t.id,
		label:   t.label,
		clock:   t.clock,
		history: t.history,
	}
}

// Restart resets the timer and starts the fresh one.
func (t *Timer) Restart() (*Timer, error) {
	next := t.Reset()
	if err := next.Start(); err != nil {
		return nil, err
	}
	return next, nil
}
