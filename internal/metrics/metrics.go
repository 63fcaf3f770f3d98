// Package metrics holds the Prometheus collectors for the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// analysesTotal counts product analyses by resulting status and source
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veganscan_analyses_total",
		Help: "Total product analyses by verdict status and source",
	}, []string{"status", "source"})

	// analysisDuration tracks engine latency
	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "veganscan_analysis_duration_seconds",
		Help:    "Engine analysis duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14), // 50µs to ~400ms
	})

	// ingredientsTotal counts per-ingredient outcomes
	ingredientsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veganscan_ingredients_total",
		Help: "Total classified ingredients by status",
	}, []string{"status"})

	// flaggedListsTotal counts ingredient lists with at least one corruption flag
	flaggedListsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veganscan_flagged_lists_total",
		Help: "Total ingredient lists with at least one corruption flag",
	})

	// cacheLookupsTotal counts verdict cache lookups by result
	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veganscan_cache_lookups_total",
		Help: "Verdict cache lookups by result",
	}, []string{"result"})

	// extractorRequestsTotal counts upstream extractor calls by outcome
	extractorRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veganscan_extractor_requests_total",
		Help: "External ingredient extractor requests by outcome",
	}, []string{"outcome"})

	// httpRequestsTotal counts HTTP requests by route, method and status code
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veganscan_http_requests_total",
		Help: "HTTP requests by route, method and status code",
	}, []string{"route", "method", "code"})

	// httpRequestDuration tracks HTTP latency by route
	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "veganscan_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

// ObserveAnalysis records one completed analysis
func ObserveAnalysis(status, source string, flagged bool, took time.Duration) {
	analysesTotal.WithLabelValues(status, source).Inc()
	analysisDuration.Observe(took.Seconds())
	if flagged {
		flaggedListsTotal.Inc()
	}
}

// ObserveIngredient records one classified ingredient
func ObserveIngredient(status string) {
	ingredientsTotal.WithLabelValues(status).Inc()
}

// ObserveCacheLookup records a verdict cache hit or miss
func ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveExtractorRequest records an upstream extractor call outcome ("ok", "error", "retry")
func ObserveExtractorRequest(outcome string) {
	extractorRequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveHTTPRequest records one served HTTP request
func ObserveHTTPRequest(route, method string, code int, took time.Duration) {
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(took.Seconds())
}
