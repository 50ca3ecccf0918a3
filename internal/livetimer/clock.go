package livetimer

import "time"

// Clock supplies timestamps to timers and their ledgers.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock. Readings keep Go's monotonic component,
// so durations between them are immune to wall-clock adjustments.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
