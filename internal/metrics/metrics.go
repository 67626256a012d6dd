// Package metrics holds the Prometheus instruments for the upstream client,
// the snapshot cache and the sync engine.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cesargomez89/walkmlb/internal/domain"
)

var (
	// Upstream client
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walkmlb_upstream_requests_total",
			Help: "Total number of upstream stats API requests",
		},
		[]string{"endpoint", "result"}, // result: "ok", "unavailable", "malformed", "not_found", "error"
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "walkmlb_upstream_request_duration_seconds",
			Help:    "Duration of upstream stats API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "walkmlb_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walkmlb_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Snapshot cache
	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walkmlb_cache_writes_total",
			Help: "Snapshot upserts by kind and whether the content changed",
		},
		[]string{"kind", "result"}, // result: "written", "unchanged", "error"
	)

	CachePurges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "walkmlb_cache_purges_total",
			Help: "Games whose snapshots were purged after finalizing",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "walkmlb_cache_evicted_rows_total",
			Help: "Snapshot rows removed by retention eviction",
		},
	)

	// Sync engine
	SyncCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walkmlb_sync_cycles_total",
			Help: "Scheduler cycles by result",
		},
		[]string{"result"}, // "ok", "error"
	)

	SyncCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "walkmlb_sync_cycle_duration_seconds",
			Help:    "Duration of one scheduler cycle in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	SyncGamesRefreshed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "walkmlb_sync_games_refreshed_total",
			Help: "Games whose box score was refreshed",
		},
	)

	SyncDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walkmlb_sync_decisions_total",
			Help: "Per-game sync decisions",
		},
		[]string{"decision"},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "walkmlb_sync_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last cycle that finished without error",
		},
	)

	SchedulerNextInterval = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "walkmlb_scheduler_next_interval_seconds",
			Help: "Sleep chosen after the last cycle",
		},
	)
)

// RecordUpstream records one upstream call.
func RecordUpstream(endpoint string, duration time.Duration, err error) {
	UpstreamDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	UpstreamRequests.WithLabelValues(endpoint, upstreamResult(err)).Inc()
}

func upstreamResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}

// RecordCacheWrite records the result of one snapshot upsert.
func RecordCacheWrite(kind string, written bool, err error) {
	result := "unchanged"
	switch {
	case err != nil:
		result = "error"
	case written:
		result = "written"
	}
	CacheWrites.WithLabelValues(kind, result).Inc()
}

// RecordCycle records one scheduler cycle.
func RecordCycle(duration time.Duration, refreshed int, evicted int64, err error) {
	SyncCycleDuration.Observe(duration.Seconds())
	SyncGamesRefreshed.Add(float64(refreshed))
	CacheEvictions.Add(float64(evicted))
	if err != nil {
		SyncCycles.WithLabelValues("error").Inc()
		return
	}
	SyncCycles.WithLabelValues("ok").Inc()
	SyncLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordBreakerTransition records a circuit breaker state change. States are
// 0=closed, 1=half-open, 2=open.
func RecordBreakerTransition(name, from, to string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}
