package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// DefaultAttempts is the attempt budget used when WithAttempts is not given.
const DefaultAttempts = 3

// DefaultInterval is the linear backoff step.
const DefaultInterval = time.Second

// Observer is notified after every attempt.
type Observer interface {
	// ObserveAttempt receives the 1-based attempt number and its outcome.
	ObserveAttempt(attempt int, err error)
}

type config struct {
	attempts   int
	backoff    Backoff
	sleep      Sleeper
	firstError bool
	observer   Observer
}

// Option customises a retry run.
type Option func(*config)

// WithAttempts sets the maximum number of invocations. Must be >= 1.
func WithAttempts(n int) Option {
	return func(c *config) { c.attempts = n }
}

// WithBackoff replaces the default 1s linear backoff.
func WithBackoff(b Backoff) Option {
	return func(c *config) { c.backoff = b }
}

// WithSleeper replaces the function used to wait between attempts.
func WithSleeper(s Sleeper) Option {
	return func(c *config) { c.sleep = s }
}

// WithFirstError surfaces the first failure instead of the last one on exhaustion.
func WithFirstError() Option {
	return func(c *config) { c.firstError = true }
}

// WithObserver reports each attempt to o.
func WithObserver(o Observer) Option {
	return func(c *config) { c.observer = o }
}

// Do invokes op until it succeeds or the attempt budget is exhausted.
//
// On success the result is returned immediately. On exhaustion the error from
// the last attempt is returned as-is. If ctx ends while waiting between
// attempts, the most recent failure is returned joined with ctx.Err().
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	cfg := config{
		attempts: DefaultAttempts,
		backoff:  Linear(DefaultInterval),
		sleep:    Sleep,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var zero T
	if cfg.attempts < 1 {
		return zero, fmt.Errorf("retry: attempts must be at least 1, got %d: %w", cfg.attempts, domain.ErrInvalidInput)
	}

	var firstErr, lastErr error
	for attempt := 0; attempt < cfg.attempts; attempt++ {
		if attempt > 0 {
			delay := cfg.backoff.Next(attempt)
			logger.Debug("retry: attempt %d/%d failed, retrying in %s: %v", attempt, cfg.attempts, delay, lastErr)
			if err := cfg.sleep(ctx, delay); err != nil {
				return zero, errors.Join(cfg.surface(firstErr, lastErr), err)
			}
		}

		result, err := op(ctx)
		if cfg.observer != nil {
			cfg.observer.ObserveAttempt(attempt+1, err)
		}
		if err == nil {
			return result, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		lastErr = err
	}

	logger.Debug("retry: giving up after %d attempts: %v", cfg.attempts, lastErr)
	return zero, cfg.surface(firstErr, lastErr)
}

// Run is Do for operations that return only an error.
func Run(ctx context.Context, op func(ctx context.Context) error, opts ...Option) error {
	_, err := Do(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	}, opts...)
	return err
}

func (c config) surface(first, last error) error {
	if c.firstError {
		return first
	}
	return last
}
