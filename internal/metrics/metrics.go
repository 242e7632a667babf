// Package metrics provides the centralized Prometheus registry for the
// analytics service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dca_analytics",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route and status",
	}, []string{"route", "method", "status"})
	StatsQueriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dca_analytics",
		Name:      "stats_queries_total",
		Help:      "Total number of aggregate statistics computations",
	})
	ReplayRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dca_analytics",
		Name:      "replay_runs_total",
		Help:      "Total number of equity replay simulations",
	})
	SyncRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dca_analytics",
		Name:      "sync_runs_total",
		Help:      "Total number of exchange PnL sync runs",
	})
	SyncTradesImportedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dca_analytics",
		Name:      "sync_trades_imported_total",
		Help:      "Total number of trades imported from the exchange",
	})
	SyncErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dca_analytics",
		Name:      "sync_errors_total",
		Help:      "Total number of failed exchange PnL sync runs",
	})
)

// Gauge metrics
var (
	LatestEquity = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dca_analytics",
		Name:      "latest_equity",
		Help:      "Most recent daily equity snapshot in currency units",
	})
	ClosedTradesCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "dca_analytics",
		Name:      "closed_trades_count",
		Help:      "Number of closed trades in the last aggregation",
	})
)

// Histogram metrics
var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dca_analytics",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	SyncDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "dca_analytics",
		Name:      "sync_duration_seconds",
		Help:      "Duration of exchange PnL sync runs in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(HTTPRequestsTotal)
		registry.MustRegister(StatsQueriesTotal)
		registry.MustRegister(ReplayRunsTotal)
		registry.MustRegister(SyncRunsTotal)
		registry.MustRegister(SyncTradesImportedTotal)
		registry.MustRegister(SyncErrorsTotal)

		registry.MustRegister(LatestEquity)
		registry.MustRegister(ClosedTradesCount)

		registry.MustRegister(HTTPRequestDuration)
		registry.MustRegister(SyncDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(route, method, status string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(route, method, status).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(durationSeconds)
}

// RecordStatsQuery records an aggregate statistics computation.
func RecordStatsQuery(closedTrades int) {
	StatsQueriesTotal.Inc()
	ClosedTradesCount.Set(float64(closedTrades))
}

// RecordReplayRun records an equity replay simulation.
func RecordReplayRun() {
	ReplayRunsTotal.Inc()
}

// RecordSyncRun records a completed exchange PnL sync run.
func RecordSyncRun(imported int, durationSeconds float64) {
	SyncRunsTotal.Inc()
	SyncTradesImportedTotal.Add(float64(imported))
	SyncDuration.Observe(durationSeconds)
}

// RecordSyncError records a failed exchange PnL sync run.
func RecordSyncError() {
	SyncErrorsTotal.Inc()
}

// UpdateLatestEquity updates the latest equity gauge.
func UpdateLatestEquity(equity float64) {
	LatestEquity.Set(equity)
}
