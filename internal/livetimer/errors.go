package livetimer

import "errors"

var (
	// ErrNotStarted is returned by operations that need a started timer.
	ErrNotStarted = errors.New("livetimer: timer has not been started")

	// ErrNotRunning is returned by Pause and Unpause on a stopped timer.
	ErrNotRunning = errors.New("livetimer: timer is not running")

	// ErrStopped is returned by Start on a stopped timer. Stopped is terminal;
	// use Reset or Restart for a new run.
	ErrStopped = errors.New("livetimer: timer is stopped")
)
