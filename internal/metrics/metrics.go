// Package metrics provides Prometheus metrics for the deck builder backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog API metrics
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_catalog_requests_total",
			Help: "Total number of card catalog API requests",
		},
		[]string{"endpoint", "status"},
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forge_catalog_request_duration_seconds",
			Help:    "Card catalog request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CatalogRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forge_catalog_retries_total",
			Help: "Total number of rate-limited catalog requests retried",
		},
	)

	// Throttle metrics
	ThrottleWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forge_throttle_wait_duration_seconds",
			Help:    "Time spent waiting for throttle admission",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// Record cache metrics
	RecordCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forge_record_cache_hits_total",
			Help: "Record cache lookups served without a network call",
		},
	)

	RecordCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forge_record_cache_misses_total",
			Help: "Record cache lookups that required a catalog fetch",
		},
	)

	RecordCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forge_record_cache_size",
			Help: "Number of entries in the record cache",
		},
	)

	// Batch dispatcher metrics
	BatchChunksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forge_batch_chunks_total",
			Help: "Total number of bulk collection chunks issued",
		},
	)

	BatchRepairsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forge_batch_price_repairs_total",
			Help: "Resolved records re-fetched individually for missing prices",
		},
	)

	// Resolver metrics
	ResolverFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_resolver_fallbacks_total",
			Help: "Resolver fallback steps taken, by path",
		},
		[]string{"path"},
	)

	// HTTP facade metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)
