// Package metrics exposes Prometheus metrics for the retry and download
// primitives. A Recorder owns its registry so tests and embedding
// applications never share process-wide collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/rpa-cli/internal/download"
	"github.com/custodia-labs/rpa-cli/internal/retry"
)

// Ensure Recorder implements the observer interfaces.
var (
	_ retry.Observer    = (*Recorder)(nil)
	_ download.Observer = (*Recorder)(nil)
)

// Recorder collects retry and download-wait metrics.
type Recorder struct {
	registry *prometheus.Registry

	RetryAttempts *prometheus.CounterVec
	DownloadWaits *prometheus.CounterVec
	WaitDuration  prometheus.Histogram
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		RetryAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rpa_retry_attempts_total",
			Help: "Operation attempts made by the retry runner, by outcome",
		}, []string{"outcome"}),
		DownloadWaits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rpa_download_waits_total",
			Help: "Download waits by terminal state",
		}, []string{"state"}),
		WaitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rpa_download_wait_seconds",
			Help:    "Time from trigger to terminal state of a download wait",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms .. ~51s
		}),
	}
}

// ObserveAttempt implements retry.Observer.
func (r *Recorder) ObserveAttempt(_ int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.RetryAttempts.WithLabelValues(outcome).Inc()
}

// ObserveWait implements download.Observer.
func (r *Recorder) ObserveWait(state download.State, elapsed time.Duration) {
	r.DownloadWaits.WithLabelValues(string(state)).Inc()
	r.WaitDuration.Observe(elapsed.Seconds())
}

// Handler serves the recorder's metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
