// Package metrics records batch outcomes as Prometheus metrics and writes
// them in the node_exporter textfile format for cron-driven runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tablebatch"

// Recorder owns a private registry so repeated runs in one process (tests)
// never collide on collector registration. Safe for concurrent use.
type Recorder struct {
	registry   *prometheus.Registry
	units      *prometheus.CounterVec
	tables     prometheus.Counter
	inputBytes prometheus.Counter
	duration   prometheus.Histogram
	outdated   prometheus.Gauge
	lastRun    prometheus.Gauge
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_total",
			Help:      "Documents handled, by outcome.",
		}, []string{"status"}),
		tables: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_extracted_total",
			Help:      "Tables exported across all documents.",
		}),
		inputBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_bytes_total",
			Help:      "Bytes of documents that were extracted.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_duration_seconds",
			Help:      "Wall time per extracted document.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		outdated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outdated_units",
			Help:      "Documents found out of date by the last validate run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(r.units, r.tables, r.inputBytes, r.duration, r.outdated, r.lastRun)
	return r
}

// Observe records one document outcome. Duration and size are only
// observed for documents that were actually extracted.
func (r *Recorder) Observe(status string, tables int, d time.Duration, size int64, extracted bool) {
	r.units.WithLabelValues(status).Inc()
	if tables > 0 {
		r.tables.Add(float64(tables))
	}
	if extracted {
		r.duration.Observe(d.Seconds())
		if size > 0 {
			r.inputBytes.Add(float64(size))
		}
	}
}

// SetOutdated records the outdated count of a validate run.
func (r *Recorder) SetOutdated(n int) {
	r.outdated.Set(float64(n))
}

// MarkFinished stamps the completion time of a run.
func (r *Recorder) MarkFinished(t time.Time) {
	r.lastRun.Set(float64(t.Unix()))
}

// Gatherer exposes the registry for inspection.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
