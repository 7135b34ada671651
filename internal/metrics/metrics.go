// Package metrics provides a small, backend-agnostic abstraction for
// recording run metrics from the auction pipeline.
//
// A global, pluggable backend defaults to a no-op implementation, so the
// pipeline can always call into this package; concrete systems
// (Prometheus, Datadog) live in subpackages and are opt-in from the CLI.
package metrics

import "time"

// Metric names emitted by the pipeline.
const (
	StepTotal           = "auctions_step_total"
	StepDurationSeconds = "auctions_step_duration_seconds"
	RecordsTotal        = "auctions_records_total"
	FilesTotal          = "auctions_files_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or writes metrics, if the backend needs it.
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordStep measures latency and success/failure of one pipeline step
// ("discover", "process", "merge", "run").
func RecordStep(job, step string, err error, d time.Duration) {
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status(err),
	}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRows increments the record counter for kind ("listings",
// "auctions").
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordFile counts one processed file by outcome.
func RecordFile(job string, err error) {
	backend.IncCounter(FilesTotal, 1, Labels{
		"job":    job,
		"status": status(err),
	})
}
