// Package metrics provides the centralized Prometheus metrics registry for
// the tote value service.
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
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tote_value",
		Name:      "analyses_total",
		Help:      "Total number of value-bet analyses run",
	}, []string{"market"})
	CombinationsEvaluatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tote_value",
		Name:      "combinations_evaluated_total",
		Help:      "Total number of combination odds evaluated",
	}, []string{"market"})
	CombinationsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tote_value",
		Name:      "combinations_skipped_total",
		Help:      "Total number of combinations skipped for missing or degenerate data",
	}, []string{"market"})
	ValueBetsFoundTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tote_value",
		Name:      "value_bets_found_total",
		Help:      "Total number of value bets surviving all filters",
	}, []string{"market"})
	SnapshotFetchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tote_value",
		Name:      "snapshot_fetches_total",
		Help:      "Total number of race snapshot fetches from the tote API",
	})
	SnapshotFetchErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tote_value",
		Name:      "snapshot_fetch_errors_total",
		Help:      "Total number of failed race snapshot fetches",
	})
	SnapshotCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tote_value",
		Name:      "snapshot_cache_hits_total",
		Help:      "Total number of snapshot cache hits",
	})
	SnapshotCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "tote_value",
		Name:      "snapshot_cache_misses_total",
		Help:      "Total number of snapshot cache misses",
	})
)

// Gauge metrics
var (
	TrackedRaces = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tote_value",
		Name:      "tracked_races",
		Help:      "Number of races currently tracked for refresh",
	})
	LastRefreshUnixTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "tote_value",
		Name:      "last_refresh_unix_time",
		Help:      "Unix timestamp of the last completed snapshot refresh",
	})
)

// Histogram metrics
var (
	SnapshotFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tote_value",
		Name:      "snapshot_fetch_duration_seconds",
		Help:      "Duration of snapshot fetches in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tote_value",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of value-bet analyses in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(AnalysesTotal)
		registry.MustRegister(CombinationsEvaluatedTotal)
		registry.MustRegister(CombinationsSkippedTotal)
		registry.MustRegister(ValueBetsFoundTotal)
		registry.MustRegister(SnapshotFetchesTotal)
		registry.MustRegister(SnapshotFetchErrorsTotal)
		registry.MustRegister(SnapshotCacheHitsTotal)
		registry.MustRegister(SnapshotCacheMissesTotal)

		// Register gauge metrics
		registry.MustRegister(TrackedRaces)
		registry.MustRegister(LastRefreshUnixTime)

		// Register histogram metrics
		registry.MustRegister(SnapshotFetchDuration)
		registry.MustRegister(AnalysisDuration)
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

// RecordAnalysis records a completed analysis for a market.
func RecordAnalysis(market string, durationSeconds float64) {
	AnalysesTotal.WithLabelValues(market).Inc()
	AnalysisDuration.Observe(durationSeconds)
}

// RecordSnapshotFetch records a snapshot fetch attempt.
func RecordSnapshotFetch(durationSeconds float64, err error) {
	SnapshotFetchesTotal.Inc()
	SnapshotFetchDuration.Observe(durationSeconds)
	if err != nil {
		SnapshotFetchErrorsTotal.Inc()
	}
}
