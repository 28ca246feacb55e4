// Package metrics provides spreadsheet import metrics for observability
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// ImporterMetrics contains Prometheus metrics for spreadsheet imports.
// It implements Recorder.
type ImporterMetrics struct {
	importsTotal      *prometheus.CounterVec
	importDuration    *prometheus.HistogramVec
	importErrorsTotal *prometheus.CounterVec
	importedRows      prometheus.Histogram
	lastImportTime    prometheus.Gauge

	collectors []prometheus.Collector
}

// NewImporterMetrics creates and registers new importer metrics
func NewImporterMetrics(registry *prometheus.Registry) (*ImporterMetrics, error) {
	m := &ImporterMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ImporterMetrics) initMetrics() {
	m.importsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "importer_imports_total",
			Help: "Total number of spreadsheet imports",
		},
		[]string{"operation", "status"},
	)

	m.importDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "importer_import_duration_seconds",
			Help:    "Time taken to parse and store a spreadsheet",
			Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount12), // 10ms to ~20s
		},
		[]string{"operation"},
	)

	m.importErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "importer_import_errors_total",
			Help: "Total number of failed spreadsheet imports by error type",
		},
		[]string{"operation", "error_type"},
	)

	m.importedRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "importer_imported_rows",
			Help:    "Number of meal rows stored per successful import",
			Buckets: prometheus.ExponentialBuckets(BucketStart1, BucketFactor2, BucketCount12),
		},
	)

	m.lastImportTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "importer_last_success_timestamp_seconds",
			Help: "Unix time of the last successful import",
		},
	)

	m.collectors = []prometheus.Collector{
		m.importsTotal,
		m.importDuration,
		m.importErrorsTotal,
		m.importedRows,
		m.lastImportTime,
	}
}

// Describe implements the Collector interface
func (m *ImporterMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *ImporterMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordOperation implements Recorder
func (m *ImporterMetrics) RecordOperation(operation, status string) {
	m.importsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder
func (m *ImporterMetrics) RecordDuration(operation string, seconds float64) {
	m.importDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder
func (m *ImporterMetrics) RecordError(operation, errorType string) {
	m.importErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordImportedRows records the row count of a successful import
func (m *ImporterMetrics) RecordImportedRows(rows int, unixSeconds int64) {
	m.importedRows.Observe(float64(rows))
	m.lastImportTime.Set(float64(unixSeconds))
}

// LastImportTime returns the time of the last successful import, or the zero
// time when nothing has been imported since startup.
func (m *ImporterMetrics) LastImportTime() time.Time {
	metric := &dto.Metric{}
	if err := m.lastImportTime.Write(metric); err != nil {
		return time.Time{}
	}
	if metric.Gauge == nil || metric.Gauge.GetValue() == 0 {
		return time.Time{}
	}
	return time.Unix(int64(metric.Gauge.GetValue()), 0)
}
