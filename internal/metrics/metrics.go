// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcher_match_runs_total",
			Help: "Total number of matching runs by outcome",
		},
		[]string{"outcome"},
	)

	MatchRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matcher_match_run_duration_seconds",
			Help:    "Duration of a matching run including persistence",
			Buckets: prometheus.DefBuckets,
		},
	)

	CandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matcher_candidates_scored_total",
			Help: "Total number of candidate/job pairs scored",
		},
	)

	ProfilesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcher_profiles_generated_total",
			Help: "Total number of profiles extracted from text",
		},
		[]string{"kind"},
	)

	EmbeddingJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcher_embedding_jobs_total",
			Help: "Total number of embedding jobs by kind and terminal status",
		},
		[]string{"kind", "status"},
	)

	EmbeddingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matcher_embedding_duration_seconds",
			Help:    "Duration of embedding generation including retries",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	EmbeddingJobsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matcher_embedding_jobs_active",
			Help: "Number of embedding jobs currently processing",
		},
	)

	EmbeddingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcher_embedding_cache_lookups_total",
			Help: "Embedding cache lookups by result",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matcher_http_requests_total",
			Help: "Total number of HTTP requests by method and status code",
		},
		[]string{"method", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matcher_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matcher_http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)
