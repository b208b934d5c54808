// Package metrics exposes Prometheus counters for imports, merges, exports
// and the HTTP API. All recording methods accept a nil *Metrics so callers
// that run without a registry (the CLI, tests) need no guards.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds every collector registered by the application.
type Metrics struct {
	ImportsTotal    *prometheus.CounterVec
	ImportRowsTotal *prometheus.CounterVec
	MergeRecords    *prometheus.CounterVec
	ExportsTotal    *prometheus.CounterVec
	ExportedRecords prometheus.Counter
	ImportsActive   prometheus.Gauge

	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a Metrics instance on its own registry, with the Go runtime
// and process collectors attached.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		ImportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "giftcrm_imports_total",
				Help: "Spreadsheet imports by collection and outcome",
			},
			[]string{"kind", "status"},
		),
		ImportRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "giftcrm_import_rows_total",
				Help: "Imported sheet rows by collection and acceptance",
			},
			[]string{"kind", "result"},
		),
		MergeRecords: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "giftcrm_merge_records_total",
				Help: "Records inserted or updated by merges",
			},
			[]string{"kind", "action"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "giftcrm_exports_total",
				Help: "GLS shipment exports by outcome",
			},
			[]string{"status"},
		),
		ExportedRecords: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "giftcrm_exported_records_total",
				Help: "Shipment rows written by exports",
			},
		),
		ImportsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "giftcrm_imports_active",
				Help: "Imports currently holding a slot",
			},
		),
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "giftcrm_api_requests_total",
				Help: "HTTP API requests",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "giftcrm_api_request_duration_seconds",
				Help:    "HTTP API request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.ImportsTotal,
		m.ImportRowsTotal,
		m.MergeRecords,
		m.ExportsTotal,
		m.ExportedRecords,
		m.ImportsActive,
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveImport records one import attempt.
func (m *Metrics) ObserveImport(kind string, ok bool, kept, rejected int) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "failure"
	}
	m.ImportsTotal.WithLabelValues(kind, status).Inc()
	m.ImportRowsTotal.WithLabelValues(kind, "kept").Add(float64(kept))
	m.ImportRowsTotal.WithLabelValues(kind, "rejected").Add(float64(rejected))
}

// ObserveMerge records the outcome of a persisted merge.
func (m *Metrics) ObserveMerge(kind string, inserted, updated int) {
	if m == nil {
		return
	}
	m.MergeRecords.WithLabelValues(kind, "inserted").Add(float64(inserted))
	m.MergeRecords.WithLabelValues(kind, "updated").Add(float64(updated))
}

// ObserveExport records an export attempt; status is "success", "empty"
// or "failure".
func (m *Metrics) ObserveExport(status string, rows int) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(status).Inc()
	m.ExportedRecords.Add(float64(rows))
}

// ImportStarted and ImportFinished track in-flight imports.
func (m *Metrics) ImportStarted() {
	if m != nil {
		m.ImportsActive.Inc()
	}
}

func (m *Metrics) ImportFinished() {
	if m != nil {
		m.ImportsActive.Dec()
	}
}
