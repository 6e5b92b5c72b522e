package retry

import (
	"context"
	"time"
)

// Backoff calculates the delay to wait before an attempt.
type Backoff interface {
	// Next returns the delay before the given attempt (0-indexed, always >= 1).
	Next(attempt int) time.Duration
}

// LinearBackoff waits Interval * attempt before each retry.
// With Interval=1s: attempt 1 -> 1s, attempt 2 -> 2s, attempt 3 -> 3s.
type LinearBackoff struct {
	Interval time.Duration
}

// Next calculates the linear delay for the given attempt.
func (l LinearBackoff) Next(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return l.Interval * time.Duration(attempt)
}

// Linear creates a linear backoff with the specified interval.
func Linear(interval time.Duration) LinearBackoff {
	return LinearBackoff{Interval: interval}
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep suspends the caller for d. It returns ctx.Err() if ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
