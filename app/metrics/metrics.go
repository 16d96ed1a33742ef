// Package metrics exposes prometheus instrumentation for the
// ingestion pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	refreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedstash_feed_refreshes_total",
		Help: "Feed refresh attempts by resulting fetch status.",
	}, []string{"status"})

	itemsAcceptedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedstash_items_accepted_total",
		Help: "Items accepted into the corpus.",
	})

	itemsDuplicateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedstash_items_duplicate_total",
		Help: "Entries skipped because their content hash was already in the corpus.",
	})

	itemsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "feedstash_items_dropped_total",
		Help: "Entries dropped by the per-feed size budget.",
	})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedstash_fetch_duration_seconds",
		Help:    "Time spent fetching feed documents.",
		Buckets: prometheus.DefBuckets,
	})
)

// RecordRefresh counts a refresh attempt under its fetch status.
func RecordRefresh(status string) {
	refreshesTotal.WithLabelValues(status).Inc()
}

// RecordIngest counts the outcome breakdown of one ingestion run.
func RecordIngest(accepted, duplicates, dropped int) {
	itemsAcceptedTotal.Add(float64(accepted))
	itemsDuplicateTotal.Add(float64(duplicates))
	itemsDroppedTotal.Add(float64(dropped))
}

// ObserveFetchDuration records how long a feed fetch took.
func ObserveFetchDuration(d time.Duration) {
	fetchDuration.Observe(d.Seconds())
}
