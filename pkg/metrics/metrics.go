// Package metrics defines the Prometheus collectors for index builds, loads
// and queries. The CLI is a short-lived batch process, so collectors live in
// a private registry that is flushed to a node-exporter textfile on exit.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for invindex.
type Metrics struct {
	Registry *prometheus.Registry

	DocsIndexedTotal    prometheus.Counter
	LinesSkippedTotal   prometheus.Counter
	IndexTerms          prometheus.Gauge
	IndexWritesTotal    *prometheus.CounterVec
	IndexReadsTotal     *prometheus.CounterVec
	IndexBytes          *prometheus.GaugeVec
	QueriesTotal        *prometheus.CounterVec
	QueryLatency        prometheus.Histogram
	QueryResultsCount   prometheus.Histogram
	NotificationsFailed prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "invindex_docs_indexed_total",
				Help: "Total documents added to an index.",
			},
		),
		LinesSkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "invindex_dataset_lines_skipped_total",
				Help: "Dataset lines skipped because the document id did not parse.",
			},
		),
		IndexTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "invindex_index_terms",
				Help: "Distinct terms in the most recently built or loaded index.",
			},
		),
		IndexWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invindex_index_writes_total",
				Help: "Index writes by strategy and status.",
			},
			[]string{"strategy", "status"},
		),
		IndexReadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invindex_index_reads_total",
				Help: "Index reads by strategy and status (ok, not_found, corrupt, error).",
			},
			[]string{"strategy", "status"},
		),
		IndexBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "invindex_index_bytes",
				Help: "Serialized size of the most recent index written or read.",
			},
			[]string{"strategy"},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invindex_queries_total",
				Help: "Queries evaluated by result type (hit, zero_result, empty_query).",
			},
			[]string{"result_type"},
		),
		QueryLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "invindex_query_batch_latency_seconds",
				Help:    "Latency of evaluating one batch of queries.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		QueryResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "invindex_query_results_count",
				Help:    "Number of documents returned per query.",
				Buckets: []float64{0, 1, 5, 10, 50, 100, 1000, 10000},
			},
		),
		NotificationsFailed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "invindex_notifications_failed_total",
				Help: "Index-built notifications that could not be published.",
			},
		),
	}

	m.Registry.MustRegister(
		m.DocsIndexedTotal,
		m.LinesSkippedTotal,
		m.IndexTerms,
		m.IndexWritesTotal,
		m.IndexReadsTotal,
		m.IndexBytes,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryResultsCount,
		m.NotificationsFailed,
	)

	return m
}

// WriteTextfile writes every collector in the Prometheus text format to
// path, atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
