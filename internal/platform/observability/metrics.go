package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dedup_lookups_total",
		Help: "The total number of duplicate lookups by outcome",
	}, []string{"outcome"})

	MatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dedup_matches_total",
		Help: "The total number of accepted duplicate matches by strategy",
	}, []string{"strategy"})

	LookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dedup_lookup_duration_seconds",
		Help:    "Duration of duplicate lookups",
		Buckets: prometheus.DefBuckets,
	})

	CleanupGroupsFound = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dedup_cleanup_groups_found",
		Help: "Number of duplicate groups found in the last cleanup run",
	})

	CleanupEventsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dedup_cleanup_events_removed_total",
		Help: "The total number of duplicate events removed by cleanup runs",
	})

	CleanupGroupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dedup_cleanup_group_failures_total",
		Help: "The total number of duplicate groups skipped due to delete failures",
	})
)
