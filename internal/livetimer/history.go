package livetimer

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"toolbox/internal/logging"
)

// Action names a ledger event.
type Action string

const (
	ActionCreate  Action = "CREATE"
	ActionStart   Action = "START"
	ActionPause   Action = "PAUSE"
	ActionUnpause Action = "UNPAUSE"
	ActionReset   Action = "RESET"
	ActionStop    Action = "STOP"
	ActionQuery   Action = "QUERY"
)

// ParseAction maps a ledger action name back to its Action.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActionCreate, ActionStart, ActionPause, ActionUnpause, ActionReset, ActionStop, ActionQuery:
		return a, nil
	}
	return "", fmt.Errorf("livetimer: unknown action %q", s)
}

// Entry is one ledger line. Entries are never modified after being appended.
type Entry struct {
	Time        time.Time
	Action      Action
	SinceLast   time.Duration // delta to the previous entry
	SinceCreate time.Duration // delta to the first entry
}

// History is an append-only ledger of timer events. A timer and every timer
// reset from it share the same History.
type History struct {
	mu      sync.RWMutex
	clock   Clock
	entries []Entry
}

// NewHistory returns an empty ledger stamped by clock. A nil clock means SystemClock.
func NewHistory(clock Clock) *History {
	if clock == nil {
		clock = SystemClock{}
	}
	return &History{clock: clock}
}

// Add appends action stamped with the current clock reading.
func (h *History) Add(action Action) Entry {
	return h.record(action, h.clock.Now())
}

func (h *History) record(action Action, at time.Time) Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	e := Entry{Time: at, Action: action}
	if n := len(h.entries); n > 0 && action != ActionCreate {
		e.SinceLast = at.Sub(h.entries[n-1].Time)
		e.SinceCreate = at.Sub(h.entries[0].Time)
	}
	h.entries = append(h.entries, e)
	logging.TimerDebug("ledger %s (+%v, total %v)", action, e.SinceLast, e.SinceCreate)
	return e
}

// Restore appends already-stamped entries, e.g. when loading an archived ledger.
func (h *History) Restore(entries []Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entries...)
}

// Entries returns a copy of the ledger in append order.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Last returns the most recent entry.
func (h *History) Last() (Entry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// NumResets counts RESET entries.
func (h *History) NumResets() int {
	return h.count(ActionReset)
}

func (h *History) count(action Action) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, e := range h.entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

// Write serializes the ledger to a new file dir/ledger_<unix-seconds>.txt,
// creating dir as needed, and returns the file path. Existing ledgers are
// never overwritten: a name already taken gets a _1, _2, ... suffix. Each
// line holds the entry time (RFC 3339), the action, and both deltas,
// separated by tabs.
func (h *History) Write(dir string) (string, error) {
	timer := logging.StartTimer(logging.CategoryTimer, "ledger write")
	defer timer.StopWithThreshold(ledgerWriteThreshold)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create ledger directory: %w", err)
	}

	f, err := createLedgerFile(dir, h.clock.Now().Unix())
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, e := range h.Entries() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Time.Format(time.RFC3339Nano), e.Action, e.SinceLast, e.SinceCreate)
	}
	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to write ledger: %w", err)
	}

	logging.Timer("ledger written to %s (%d entries)", f.Name(), h.Len())
	return f.Name(), nil
}

const (
	ledgerWriteThreshold = 250 * time.Millisecond
	maxLedgerSuffix      = 1000
)

func createLedgerFile(dir string, stamp int64) (*os.File, error) {
	for i := 0; i <= maxLedgerSuffix; i++ {
		name := fmt.Sprintf("ledger_%d.txt", stamp)
		if i > 0 {
			name = fmt.Sprintf("ledger_%d_%d.txt", stamp, i)
		}
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create ledger file: %w", err)
		}
		return f, nil
	}
	return nil, fmt.Errorf("failed to create ledger file: too many ledgers stamped %d in %s", stamp, dir)
}
