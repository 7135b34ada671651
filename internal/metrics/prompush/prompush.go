// Package prompush implements Prometheus backends for the metrics package.
//
// Collectors live in a private registry. Flush either pushes the registry to
// a Pushgateway or writes it in text exposition format to a local file that
// a node_exporter textfile collector picks up.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"auctions/internal/metrics"
)

// Backend is a Prometheus metrics backend.
type Backend struct {
	jobName string
	reg     *prometheus.Registry
	flush   func(*prometheus.Registry) error

	stepCounter   *prometheus.CounterVec
	stepDuration  *prometheus.SummaryVec
	recordCounter *prometheus.CounterVec
	fileCounter   *prometheus.CounterVec
}

// NewBackend returns a backend that pushes to the Pushgateway at gatewayURL
// under the grouping job jobName.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	b, err := newBackend(jobName)
	if err != nil {
		return nil, err
	}
	b.flush = func(reg *prometheus.Registry) error {
		return push.New(gatewayURL, b.jobName).Gatherer(reg).Push()
	}
	return b, nil
}

// NewTextfileBackend returns a backend that writes the registry to path on
// Flush. The write is atomic (temp file + rename).
func NewTextfileBackend(jobName, path string) (*Backend, error) {
	if path == "" {
		return nil, fmt.Errorf("prompush: textfile path is required")
	}
	b, err := newBackend(jobName)
	if err != nil {
		return nil, err
	}
	b.flush = func(reg *prometheus.Registry) error {
		return prometheus.WriteToTextfile(path, reg)
	}
	return b, nil
}

func newBackend(jobName string) (*Backend, error) {
	if jobName == "" {
		jobName = "auctions"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Pipeline step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StepDurationSeconds,
			Help:       "Duration of pipeline steps in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	recordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RecordsTotal,
			Help: "Record counts per kind (listings, auctions).",
		},
		[]string{"kind"},
	)
	fileCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.FilesTotal,
			Help: "Listing exports processed, partitioned by status.",
		},
		[]string{"status"},
	)

	for name, c := range map[string]prometheus.Collector{
		"step counter":   stepCounter,
		"step summary":   stepDuration,
		"record counter": recordCounter,
		"file counter":   fileCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return &Backend{
		jobName:       jobName,
		reg:           reg,
		stepCounter:   stepCounter,
		stepDuration:  stepDuration,
		recordCounter: recordCounter,
		fileCounter:   fileCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
	case metrics.RecordsTotal:
		b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)
	case metrics.FilesTotal:
		b.fileCounter.WithLabelValues(labels["status"]).Add(delta)
	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDurationSeconds {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush exports the current registry.
func (b *Backend) Flush() error {
	if b.flush == nil {
		return nil
	}
	return b.flush(b.reg)
}
