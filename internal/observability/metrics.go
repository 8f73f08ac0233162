package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PassesTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "rideshare", Name: "passes_total", Help: "Total matching passes run"})
	MatchesTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "rideshare", Name: "matches_total", Help: "Total matched ride pairs"})
	NoMatchTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "rideshare", Name: "no_match_total", Help: "Passes that ended without a pairing"})
	RaceDiscards  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "rideshare", Name: "race_discards_total", Help: "Decisions discarded because a request vanished mid-pass"})
	RetireFailed  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "rideshare", Name: "retire_failures_total", Help: "Delete failures after a match was selected"})
	OpenRequests  = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "rideshare", Name: "open_requests", Help: "Open ride requests at the last snapshot"})
	PassLatency  = promauto.NewHistogram(prometheus.HistogramOpts{Namespace: "rideshare", Name: "pass_latency_seconds", Help: "Matching pass latency seconds"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rideshare", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rideshare",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
