package download

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/logger"
)

// PollInterval is the fixed delay between directory scans.
const PollInterval = 100 * time.Millisecond

// DefaultTimeout bounds a wait when WithTimeout is not given.
const DefaultTimeout = 30 * time.Second

// PartialSuffixes mark files a browser is still writing.
// Chrome uses .crdownload, Firefox uses .part.
var PartialSuffixes = []string{".crdownload", ".part"}

// State is a step of a wait.
type State string

// Wait states.
const (
	StateNotStarted    State = "not_started"
	StateTriggered     State = "triggered"
	StatePolling       State = "polling"
	StateMatched       State = "matched"
	StateTimedOut      State = "timed_out"
	StateTriggerFailed State = "trigger_failed"
	StateCancelled     State = "cancelled"
)

// Observer is notified when a wait reaches a terminal state.
type Observer interface {
	ObserveWait(state State, elapsed time.Duration)
}

// Trigger starts the external side effect whose output is awaited.
type Trigger func(ctx context.Context) error

type waitConfig struct {
	extension string
	timeout   time.Duration
	observer  Observer
}

// WaitOption customises a single wait.
type WaitOption func(*waitConfig)

// WithExtension only accepts files ending in ext. A missing leading dot is added.
func WithExtension(ext string) WaitOption {
	return func(c *waitConfig) { c.extension = NormalizeExtension(ext) }
}

// WithTimeout bounds the wait. Non-positive values keep the default.
func WithTimeout(d time.Duration) WaitOption {
	return func(c *waitConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithObserver reports the terminal state of the wait to o.
func WithObserver(o Observer) WaitOption {
	return func(c *waitConfig) { c.observer = o }
}

// Waiter watches one directory for newly completed files.
type Waiter struct {
	fs  afero.Fs
	dir string
}

// NewWaiter creates a Waiter over dir on the given filesystem.
func NewWaiter(fs afero.Fs, dir string) *Waiter {
	return &Waiter{fs: fs, dir: dir}
}

// Dir returns the watched directory.
func (w *Waiter) Dir() string {
	return w.dir
}

// WaitForCompletion runs trigger once and blocks until a new matching file
// appears in the watched directory, returning its name.
//
// A trigger error is returned unmodified without polling. When the deadline
// passes first, the returned error wraps domain.ErrTimeout. Cancelling ctx
// while polling returns ctx.Err().
func (w *Waiter) WaitForCompletion(ctx context.Context, trigger Trigger, opts ...WaitOption) (string, error) {
	cfg := waitConfig{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	deadline := start.Add(cfg.timeout)
	finish := func(state State) {
		logger.Debug("download: %s -> %s after %s", w.dir, state, time.Since(start))
		if cfg.observer != nil {
			cfg.observer.ObserveWait(state, time.Since(start))
		}
	}

	logger.Debug("download: waiting in %s ext=%q timeout=%s", w.dir, cfg.extension, cfg.timeout)
	if err := trigger(ctx); err != nil {
		finish(StateTriggerFailed)
		return "", err
	}
	logger.Debug("download: %s -> %s", w.dir, StateTriggered)

	timer := time.NewTimer(PollInterval)
	defer timer.Stop()

	for {
		if name, ok := w.newest(start, cfg.extension); ok {
			finish(StateMatched)
			return name, nil
		}
		if !time.Now().Before(deadline) {
			finish(StateTimedOut)
			return "", fmt.Errorf("download: no %q file in %s within %s: %w",
				cfg.extension, w.dir, cfg.timeout, domain.ErrTimeout)
		}

		timer.Reset(PollInterval)
		select {
		case <-ctx.Done():
			finish(StateCancelled)
			return "", ctx.Err()
		case <-timer.C:
		}
	}
}

// newest returns the most recently modified candidate if it was modified
// strictly after since.
func (w *Waiter) newest(since time.Time, ext string) (string, bool) {
	candidates, err := w.Candidates(ext)
	if err != nil {
		logger.Warn("download: list %s: %v", w.dir, err)
		return "", false
	}
	if len(candidates) == 0 || !candidates[0].ModTime().After(since) {
		return "", false
	}
	return candidates[0].Name(), true
}

// Candidates lists completed files in the watched directory ending in ext
// (any file when ext is empty), newest first. It is recomputed on every call.
func (w *Waiter) Candidates(ext string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(w.fs, w.dir)
	if err != nil {
		return nil, err
	}

	candidates := make([]os.FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || IsPartial(e.Name()) {
			continue
		}
		if ext != "" && !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		candidates = append(candidates, e)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ModTime().After(candidates[j].ModTime())
	})
	return candidates, nil
}

// IsPartial reports whether name carries a partial-download suffix.
func IsPartial(name string) bool {
	for _, suffix := range PartialSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// NormalizeExtension ensures a non-empty extension starts with a dot.
func NormalizeExtension(ext string) string {
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}
