// Package chrono provides cancellable waiting helpers.
package chrono

import (
	"context"
	"time"
)

// DefaultPrecision is the polling interval used when none is given.
const DefaultPrecision = 100 * time.Millisecond

// Sleep blocks for d, checking for cancellation every precision. It returns
// ctx.Err() if ctx is cancelled first and nil once d has elapsed.
func Sleep(ctx context.Context, d, precision time.Duration) error {
	if precision <= 0 {
		precision = DefaultPrecision
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil
		}
		wait := precision
		if remaining < wait {
			wait = remaining
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// Countdown emits the time remaining until d has elapsed, once per
// interval and finally zero, then closes the channel. Cancelling ctx closes
// the channel early.
func Countdown(ctx context.Context, d, interval time.Duration) <-chan time.Duration {
	if interval <= 0 {
		interval = time.Second
	}
	ch := make(chan time.Duration, 1)

	go func() {
		defer close(ch)
		deadline := time.Now().Add(d)
		for {
			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			select {
			case ch <- remaining:
			case <-ctx.Done():
				return
			}
			if remaining == 0 {
				return
			}
			if err := Sleep(ctx, min(interval, remaining), interval); err != nil {
				return
			}
		}
	}()
	return ch
}
