package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SyncedListings counts listings processed by marketplace sync, by outcome
	SyncedListings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopdesk_sync_listings_total",
			Help: "Total number of marketplace listings processed by sync",
		},
		[]string{"platform", "result"},
	)

	// SyncRuns counts whole sync runs
	SyncRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopdesk_sync_runs_total",
			Help: "Total number of marketplace sync runs",
		},
		[]string{"platform", "result"},
	)

	// TokenRefreshes counts OAuth refresh grants, by outcome
	TokenRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopdesk_token_refreshes_total",
			Help: "Total number of OAuth token refresh attempts",
		},
		[]string{"platform", "result"},
	)

	// AIFallbacks counts AI responses that could not be parsed
	AIFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopdesk_ai_fallbacks_total",
			Help: "Total number of AI responses replaced by a fallback",
		},
		[]string{"kind"},
	)

	// RequestLatency tracks HTTP handler latency
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopdesk_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(SyncedListings)
	prometheus.MustRegister(SyncRuns)
	prometheus.MustRegister(TokenRefreshes)
	prometheus.MustRegister(AIFallbacks)
	prometheus.MustRegister(RequestLatency)
}

// Result maps an error to the "result" label value
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
