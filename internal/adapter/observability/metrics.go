// Package observability provides logging, metrics, and tracing.
package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal counts HTTP requests by route, method, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	// HTTPRequestDuration observes HTTP request latency.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	// EmbedProviderCalls counts provider calls by provider and outcome
	// (ok or fallback).
	EmbedProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embed_provider_calls_total",
			Help: "Total number of embedding provider calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
	// EmbedCacheLookups counts vector cache lookups by result.
	EmbedCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embed_cache_lookups_total",
			Help: "Total number of embedding cache lookups by result",
		},
		[]string{"result"},
	)

	// CandidatesScoredTotal counts scored candidates by outcome.
	CandidatesScoredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidates_scored_total",
			Help: "Total number of candidates scored by outcome",
		},
		[]string{"outcome"},
	)
	// FitScoreHistogram tracks the distribution of final fit scores.
	FitScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scoring_fit_score",
			Help:    "Distribution of final fit scores [0,100]",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)
)

var metricsOnce sync.Once

// InitMetrics registers all Prometheus metrics once per process.
func InitMetrics() {
	metricsOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(EmbedProviderCalls)
		prometheus.MustRegister(EmbedCacheLookups)
		prometheus.MustRegister(CandidatesScoredTotal)
		prometheus.MustRegister(FitScoreHistogram)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// EmbedProviderCall records one provider call outcome.
func EmbedProviderCall(provider, outcome string) {
	EmbedProviderCalls.WithLabelValues(provider, outcome).Inc()
}

// EmbedCacheHit records a vector cache hit.
func EmbedCacheHit() { EmbedCacheLookups.WithLabelValues("hit").Inc() }

// EmbedCacheMiss records a vector cache miss.
func EmbedCacheMiss() { EmbedCacheLookups.WithLabelValues("miss").Inc() }

// ObserveFit records one completed scoring outcome.
func ObserveFit(fit float64) {
	CandidatesScoredTotal.WithLabelValues("ok").Inc()
	if fit >= 0 && fit <= 100 {
		FitScoreHistogram.Observe(fit)
	}
}

// ScoreFailed records one failed scoring outcome.
func ScoreFailed() {
	CandidatesScoredTotal.WithLabelValues("error").Inc()
}
