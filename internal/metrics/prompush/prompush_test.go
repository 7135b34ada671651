package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"auctions/internal/metrics"
)

// readCounterValue reads the current value of a Counter for assertions in tests.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

func readSummaryCount(t *testing.T, v *prometheus.SummaryVec, labels ...string) uint64 {
	t.Helper()

	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	if !ok {
		t.Fatalf("SummaryVec.WithLabelValues(...) does not implement prometheus.Metric")
	}
	m := &dto.Metric{}
	if err := metric.Write(m); err != nil {
		t.Fatalf("Summary.Write() error = %v", err)
	}
	return m.GetSummary().GetSampleCount()
}

func TestConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		build       func() (*Backend, error)
		wantErr     bool
		wantJobName string
	}{
		{
			name:    "pushgateway requires URL",
			build:   func() (*Backend, error) { return NewBackend("job", "") },
			wantErr: true,
		},
		{
			name:    "textfile requires path",
			build:   func() (*Backend, error) { return NewTextfileBackend("job", "") },
			wantErr: true,
		},
		{
			name:        "empty job name uses default",
			build:       func() (*Backend, error) { return NewBackend("", "http://pushgateway:9091") },
			wantJobName: "auctions",
		},
		{
			name:        "explicit job name is preserved",
			build:       func() (*Backend, error) { return NewTextfileBackend("nightly", "/tmp/x.prom") },
			wantJobName: "nightly",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := tt.build()
			if tt.wantErr {
				if err == nil || b != nil {
					t.Fatalf("got (%v, %v), want (nil, error)", b, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.jobName != tt.wantJobName {
				t.Fatalf("jobName = %q, want %q", b.jobName, tt.wantJobName)
			}
		})
	}
}

func TestIncCounterAndObserve(t *testing.T) {
	t.Parallel()

	b, err := NewTextfileBackend("job", filepath.Join(t.TempDir(), "m.prom"))
	if err != nil {
		t.Fatalf("NewTextfileBackend: %v", err)
	}

	b.IncCounter(metrics.StepTotal, 2, metrics.Labels{"step": "process", "status": "success"})
	b.IncCounter(metrics.RecordsTotal, 7, metrics.Labels{"kind": "listings"})
	b.IncCounter(metrics.FilesTotal, 1, metrics.Labels{"status": "failure"})
	b.IncCounter("unknown_metric", 99, nil)
	b.ObserveHistogram(metrics.StepDurationSeconds, 0.25, metrics.Labels{"step": "process", "status": "success"})
	b.ObserveHistogram("unknown_metric", 1, nil)

	if got := readCounterValue(t, b.stepCounter.WithLabelValues("process", "success")); got != 2 {
		t.Fatalf("step counter = %v, want 2", got)
	}
	if got := readCounterValue(t, b.recordCounter.WithLabelValues("listings")); got != 7 {
		t.Fatalf("record counter = %v, want 7", got)
	}
	if got := readCounterValue(t, b.fileCounter.WithLabelValues("failure")); got != 1 {
		t.Fatalf("file counter = %v, want 1", got)
	}
	if got := readSummaryCount(t, b.stepDuration, "process", "success"); got != 1 {
		t.Fatalf("summary sample count = %d, want 1", got)
	}
}

func TestFlush_Textfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "auctions.prom")
	b, err := NewTextfileBackend("job", path)
	if err != nil {
		t.Fatalf("NewTextfileBackend: %v", err)
	}
	b.IncCounter(metrics.RecordsTotal, 3, metrics.Labels{"kind": "auctions"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `auctions_records_total{kind="auctions"} 3`) {
		t.Fatalf("textfile missing record counter:\n%s", data)
	}
}

func TestFlush_Pushgateway(t *testing.T) {
	t.Parallel()

	type pushRequestInfo struct {
		method  string
		path    string
		bodyLen int
	}
	reqCh := make(chan pushRequestInfo, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushRequestInfo{method: r.Method, path: r.URL.Path, bodyLen: len(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("auctions-job", server.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "run", "status": "success"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got := <-reqCh
	if got.method != http.MethodPut {
		t.Fatalf("method = %s, want PUT", got.method)
	}
	if got.path != "/metrics/job/auctions-job" {
		t.Fatalf("path = %q, want /metrics/job/auctions-job", got.path)
	}
	if got.bodyLen == 0 {
		t.Fatalf("push body is empty")
	}
}
