// Package metrics provides Prometheus metrics for the query pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpquery_queries_total",
			Help: "Total number of processed queries",
		},
		[]string{"query_type", "outcome"},
	)
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpquery_query_duration_seconds",
			Help:    "End-to-end query processing duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"query_type"},
	)
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rpquery_cache_hits_total",
			Help: "Total number of result cache hits",
		},
	)
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rpquery_cache_misses_total",
			Help: "Total number of result cache misses",
		},
	)
	RemoteFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpquery_remote_fetch_duration_seconds",
			Help:    "ReportPortal fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpquery_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "endpoint", "status"},
	)
)

func RecordQuery(queryType string, degraded bool, duration time.Duration) {
	outcome := "success"
	if degraded {
		outcome = "degraded"
	}
	QueriesTotal.WithLabelValues(queryType, outcome).Inc()
	QueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())
}

func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

func RecordRemoteFetch(endpoint string, duration time.Duration) {
	RemoteFetchDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
