package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder receives one observation per resolved client operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation, table string, success bool, rows int, duration time.Duration)
}

// StoreGauge receives per-table record counts after mutations.
type StoreGauge interface {
	SetStoreRecords(counts map[string]int)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, string, bool, int, time.Duration) {}

// NoopMetrics returns a recorder that discards observations.
func NoopMetrics() MetricsRecorder { return noopMetrics{} }

// PrometheusMetrics records client operations as Prometheus vectors.
type PrometheusMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	rows       *prometheus.HistogramVec
	records    *prometheus.GaugeVec
}

// NewPrometheusMetrics registers the mockbase collectors on reg. A nil reg
// uses prometheus.DefaultRegisterer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mockbase",
				Subsystem: "client",
				Name:      "operations_total",
				Help:      "Total number of client operations by operation, table and status",
			},
			[]string{"operation", "table", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mockbase",
				Subsystem: "client",
				Name:      "operation_duration_seconds",
				Help:      "Duration of client operations in seconds, simulated latency included",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"operation", "table"},
		),
		rows: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "mockbase",
				Subsystem: "client",
				Name:      "rows_returned",
				Help:      "Number of rows returned or affected per client operation",
				Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000},
			},
			[]string{"operation", "table"},
		),
		records: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "mockbase",
				Subsystem: "store",
				Name:      "records",
				Help:      "Number of records currently held per table",
			},
			[]string{"table"},
		),
	}
}

// Observe implements MetricsRecorder.
func (m *PrometheusMetrics) Observe(_ context.Context, operation, table string, success bool, rows int, duration time.Duration) {
	status := "error"
	if success {
		status = "success"
	}
	m.operations.WithLabelValues(operation, table, status).Inc()
	m.duration.WithLabelValues(operation, table).Observe(duration.Seconds())
	m.rows.WithLabelValues(operation, table).Observe(float64(rows))
}

// SetStoreRecords implements StoreGauge.
func (m *PrometheusMetrics) SetStoreRecords(counts map[string]int) {
	for table, n := range counts {
		m.records.WithLabelValues(table).Set(float64(n))
	}
}
