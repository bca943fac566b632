package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Coordinator metrics
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Inventory and receivables
	ProductStock  *prometheus.GaugeVec
	TraderBalance *prometheus.GaugeVec

	// Reconciliation metrics
	ReconciliationRuns  *prometheus.CounterVec
	ReconciliationDrift *prometheus.GaugeVec

	// Database metrics
	DBRetries *prometheus.CounterVec

	// Cache metrics
	CacheRequests *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// New creates all metrics and registers them with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics and registers them with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "makhzone_operations_total",
				Help: "Total coordinator operations by type and result",
			},
			[]string{"operation", "result"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "makhzone_operation_duration_seconds",
				Help:    "Duration of coordinator operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		ProductStock: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "makhzone_product_stock",
				Help: "Units on hand after the last stock movement",
			},
			[]string{"product_id"},
		),
		TraderBalance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "makhzone_trader_balance",
				Help: "Trader balance after the last sale or payment",
			},
			[]string{"trader_id"},
		),

		ReconciliationRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "makhzone_reconciliation_runs_total",
				Help: "Reconciliation passes by outcome",
			},
			[]string{"outcome"},
		),
		ReconciliationDrift: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "makhzone_reconciliation_drift",
				Help: "Recorded minus replayed trader balance",
			},
			[]string{"trader_id"},
		),

		DBRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "makhzone_db_retries_total",
				Help: "Transactions retried after a serialization failure or deadlock",
			},
			[]string{"code"},
		),

		CacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "makhzone_cache_requests_total",
				Help: "Cache lookups by cache and result",
			},
			[]string{"cache", "result"},
		),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "makhzone_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),
	}
}
