package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PoolAcquiresTotal counts acquire calls by outcome ("created", "reused").
	PoolAcquiresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reelfeed",
		Name:      "pool_acquires_total",
		Help:      "Player pool acquires by outcome",
	}, []string{"outcome"})

	// PoolEvictionsTotal counts entries evicted from the pool.
	PoolEvictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reelfeed",
		Name:      "pool_evictions_total",
		Help:      "Player pool evictions by reason",
	}, []string{"reason"})

	// PoolResident tracks the current number of resident players.
	PoolResident = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "reelfeed",
		Name:      "pool_resident_players",
		Help:      "Current number of resident player entries",
	})

	// PoolPreloadsTotal counts preload attempts by outcome.
	PoolPreloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reelfeed",
		Name:      "pool_preloads_total",
		Help:      "Player preloads by outcome",
	}, []string{"outcome"})

	// PoolOpenFailuresTotal counts media sources that failed to open.
	PoolOpenFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reelfeed",
		Name:      "pool_open_failures_total",
		Help:      "Media sources that failed to open",
	})

	// PoolPreconditionsTotal counts transport commands issued for non-resident ids.
	PoolPreconditionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reelfeed",
		Name:      "pool_precondition_violations_total",
		Help:      "Transport commands issued for non-resident video ids",
	})
)

// IncPoolAcquire records an acquire outcome.
func IncPoolAcquire(outcome string) {
	PoolAcquiresTotal.WithLabelValues(outcome).Inc()
}

// IncPoolEviction records an eviction with its reason ("window", "release", "release_all").
func IncPoolEviction(reason string) {
	PoolEvictionsTotal.WithLabelValues(reason).Inc()
}

// IncPoolPreload records a preload outcome ("started", "resident", "discarded").
func IncPoolPreload(outcome string) {
	PoolPreloadsTotal.WithLabelValues(outcome).Inc()
}

// SetPoolResident updates the resident player gauge.
func SetPoolResident(n int) {
	PoolResident.Set(float64(n))
}
