package filesystem

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"toolbox/internal/logging"
)

// DefaultDebounce is how long a burst of events must settle before the
// collection is marked stale.
const DefaultDebounce = 500 * time.Millisecond

// WatcherStats tracks watcher activity.
type WatcherStats struct {
	FilesCreated  int
	FilesModified int
	FilesDeleted  int
	Invalidations int
	Errors        int
	LastEventTime time.Time
	LastEventPath string
	LastEventType string
}

// Watcher marks a Collection stale when its directory changes.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	collection  *Collection
	dir         string
	pending     map[string]time.Time
	debounceDur time.Duration
	onChange    func(paths []string)
	stopCh      chan struct{}
	doneCh      chan struct{}
	stopOnce    sync.Once
	stats       WatcherStats
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) WatchOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceDur = d
		}
	}
}

// OnChange registers a callback run after the collection is marked stale,
// with the paths that changed.
func OnChange(fn func(paths []string)) WatchOption {
	return func(w *Watcher) { w.onChange = fn }
}

// Watch starts watching dir (non-recursively) and marks c stale after each
// settled burst of create, write, remove or rename events. The watcher runs
// until ctx is cancelled or Stop is called.
func (c *Collection) Watch(ctx context.Context, dir string, opts ...WatchOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		watcher:     fw,
		collection:  c,
		dir:         dir,
		pending:     make(map[string]time.Time),
		debounceDur: DefaultDebounce,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	logging.Filesystem("watching directory: %s", dir)
	go w.run(ctx)
	return w, nil
}

// Stop stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.doneCh
}

// Done is closed once the watcher has shut down.
func (w *Watcher) Done() <-chan struct{} { return w.doneCh }

// Stats returns a snapshot of the watcher counters.
func (w *Watcher) Stats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		if err := w.watcher.Close(); err != nil {
			logging.Get(logging.CategoryFilesystem).Error("watcher: error closing: %v", err)
		}
		logging.Filesystem("watcher stopped: %s", w.dir)
	}()

	tick := w.debounceDur / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryFilesystem).Error("watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()
		case <-debounceTicker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	var eventType string
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = "create"
	case event.Op&fsnotify.Write != 0:
		eventType = "modify"
	case event.Op&fsnotify.Remove != 0:
		eventType = "delete"
	case event.Op&fsnotify.Rename != 0:
		eventType = "rename"
	default:
		return
	}
	logging.FilesystemDebug("watcher: %s event for %s", eventType, event.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
	w.stats.LastEventType = eventType
	switch eventType {
	case "create":
		w.stats.FilesCreated++
	case "modify":
		w.stats.FilesModified++
	default:
		w.stats.FilesDeleted++
	}
	w.pending[event.Name] = time.Now()
}

// flush invalidates the collection once every pending event has settled.
func (w *Watcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	now := time.Now()
	for _, at := range w.pending {
		if now.Sub(at) < w.debounceDur {
			w.mu.Unlock()
			return
		}
	}
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]time.Time)
	w.stats.Invalidations++
	w.mu.Unlock()

	w.collection.MarkStale()
	logging.Filesystem("watcher: %d paths changed, collection marked stale", len(changed))
	if w.onChange != nil {
		w.onChange(changed)
	}
}
