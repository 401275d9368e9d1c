// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_search_requests_total",
			Help: "Total number of property searches by mode and outcome",
		},
		[]string{"mode", "status"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "property_search_cache_lookups_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"result"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "property_search_query_duration_seconds",
			Help:    "Duration of search queries against the property table",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver"},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "property_search_results",
			Help:    "Number of features returned per search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	SearchesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "property_search_active",
			Help: "Number of searches currently being served",
		},
	)
)

const (
	CacheHit  = "hit"
	CacheMiss = "miss"

	StatusSuccess = "success"
	StatusError   = "error"
)
