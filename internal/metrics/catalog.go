package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CatalogRequestsTotal counts catalog search requests by outcome.
	CatalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reelfeed",
		Name:      "catalog_requests_total",
		Help:      "Total catalog search requests by outcome",
	}, []string{"outcome"})

	// CatalogRequestDuration tracks end-to-end catalog request latency.
	CatalogRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reelfeed",
		Name:      "catalog_request_duration_seconds",
		Help:      "Catalog search request latency",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	// FeedPagesLoaded counts pages applied to the feed sequence.
	FeedPagesLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reelfeed",
		Name:      "feed_pages_loaded_total",
		Help:      "Feed pages applied by result",
	}, []string{"result"})
)

// ObserveCatalogRequest records one catalog request with its outcome and duration.
func ObserveCatalogRequest(outcome string, d time.Duration) {
	CatalogRequestsTotal.WithLabelValues(outcome).Inc()
	CatalogRequestDuration.Observe(d.Seconds())
}

// IncFeedPage records the result of a page load ("applied", "empty", "failed", "stale").
func IncFeedPage(result string) {
	FeedPagesLoaded.WithLabelValues(result).Inc()
}
