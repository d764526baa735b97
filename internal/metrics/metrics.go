package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Page write outcomes.
const (
	OutcomeWritten = "written"
	OutcomeFailed  = "failed"
)

// Recorder collects per-run fetch and write metrics on a private registry so a run can be exported as a
// node_exporter textfile.
type Recorder struct {
	reg *prometheus.Registry

	fetches   *prometheus.CounterVec
	durations *prometheus.HistogramVec
	items     *prometheus.GaugeVec
	writes    *prometheus.CounterVec
	lastRun   prometheus.Gauge
}

// NewRecorder registers the brief collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brief_source_fetch_total",
			Help: "Source fetches by outcome.",
		}, []string{"source", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brief_source_fetch_duration_seconds",
			Help:    "Wall time spent fetching one source.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "brief_source_items",
			Help: "Items rendered for a source in the last run.",
		}, []string{"source"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brief_page_write_total",
			Help: "Page writes by outcome.",
		}, []string{"page", "outcome"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "brief_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}
	r.reg.MustRegister(r.fetches, r.durations, r.items, r.writes, r.lastRun)
	return r
}

// ObserveFetch records one source fetch.
func (r *Recorder) ObserveFetch(sourceID, outcome string, elapsed time.Duration, items int) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(sourceID, outcome).Inc()
	r.durations.WithLabelValues(sourceID).Observe(elapsed.Seconds())
	r.items.WithLabelValues(sourceID).Set(float64(items))
}

// ObservePageWrite records one page write attempt.
func (r *Recorder) ObservePageWrite(pageID string, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeWritten
	if err != nil {
		outcome = OutcomeFailed
	}
	r.writes.WithLabelValues(pageID, outcome).Inc()
}

// MarkRun stamps the run completion time.
func (r *Recorder) MarkRun(at time.Time) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(at.Unix()))
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.reg
}

// WriteTextfile exports every collected metric in the text exposition format. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if r == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
