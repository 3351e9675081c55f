package utils

import "github.com/prometheus/client_golang/prometheus"

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engagement_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	LikeToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_like_toggles_total",
			Help: "Like toggles by outcome",
		},
		[]string{"result"},
	)

	PageViewsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "engagement_page_views_recorded_total",
			Help: "Page view events appended",
		},
	)

	AggregationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_aggregation_failures_total",
			Help: "Analytics sub-queries that failed",
		},
		[]string{"query"},
	)
)

func init() {
	prometheus.MustRegister(
		HttpRequestsTotal,
		HttpRequestDuration,
		LikeToggles,
		PageViewsRecorded,
		AggregationFailures,
	)
}
