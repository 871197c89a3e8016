// Package metrics registers the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline metrics
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviepicker_pipeline_runs_total",
			Help: "Reel pipeline runs by mode and outcome",
		},
		[]string{"mode", "outcome"}, // mode: search, import; outcome: ok, domain_error, error
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviepicker_pipeline_stage_duration_seconds",
			Help:    "Duration of individual reel pipeline stages",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"},
	)

	MentionsExtracted = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviepicker_mentions_extracted",
			Help:    "Number of movie mentions extracted per reel",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)

	ExtractionParseFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviepicker_extraction_parse_failures_total",
			Help: "Model responses that could not be parsed into mentions",
		},
	)

	ResolverTierHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviepicker_resolver_tier_hits_total",
			Help: "Mentions resolved per waterfall tier (none = unresolved)",
		},
		[]string{"tier"},
	)

	TransientCleanupErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "moviepicker_transient_cleanup_errors_total",
			Help: "Transient files that could not be removed after a run",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviepicker_api_requests_total",
			Help: "HTTP API requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviepicker_api_request_duration_seconds",
			Help:    "HTTP API request latency",
			Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 30, 120, 600},
		},
		[]string{"method", "route"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviepicker_api_rate_limit_hits_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
		[]string{"route"},
	)

	// Upstream metrics
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviepicker_upstream_requests_total",
			Help: "Requests to upstream APIs by result",
		},
		[]string{"upstream", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "moviepicker_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviepicker_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)
