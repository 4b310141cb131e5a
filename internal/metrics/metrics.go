// Package metrics provides Prometheus metrics for pipeline operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricOpsTotal        = "promosearch_ops_total"
	MetricOpDuration      = "promosearch_op_duration_seconds"
	MetricFallbacksTotal  = "promosearch_fallbacks_total"
	MetricIndexPromotions = "promosearch_index_promotions"
)

// Operation constants for labeling.
const (
	OpSearch = "search"
	OpRank   = "rank"
	OpPlace  = "place"
	OpExpand = "expand"
)

// Status constants for operation completion.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Metrics contains Prometheus metrics for the promotion pipeline.
// All operations are thread-safe.
type Metrics struct {
	opsTotal        *prometheus.CounterVec
	opDuration      *prometheus.HistogramVec
	fallbacksTotal  *prometheus.CounterVec
	indexPromotions prometheus.Gauge
}

// New creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func New() *Metrics {
	return &Metrics{
		opsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricOpsTotal,
				Help: "Total number of pipeline operations by operation and status",
			},
			[]string{"op", "status"},
		),
		opDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricOpDuration,
				Help:    "Histogram of pipeline operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		fallbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricFallbacksTotal,
				Help: "Total number of degraded results by pipeline stage",
			},
			[]string{"stage"},
		),
		indexPromotions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricIndexPromotions,
			Help: "Number of promotions currently held by the semantic index",
		}),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveOp records one completed operation with its duration and
// degradation status.
func (m *Metrics) ObserveOp(op string, seconds float64, degraded bool) {
	status := StatusOK
	if degraded {
		status = StatusDegraded
	}
	m.opsTotal.WithLabelValues(op, status).Inc()
	m.opDuration.WithLabelValues(op).Observe(seconds)
}

// IncFallback increments the fallback counter for the given stage.
func (m *Metrics) IncFallback(stage string) {
	m.fallbacksTotal.WithLabelValues(stage).Inc()
}

// SetIndexPromotions records the current index size.
func (m *Metrics) SetIndexPromotions(n int) {
	m.indexPromotions.Set(float64(n))
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.opsTotal,
		m.opDuration,
		m.fallbacksTotal,
		m.indexPromotions,
	}
}
