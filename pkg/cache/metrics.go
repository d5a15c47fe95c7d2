package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts entries found in Redis.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_cache_hits_total",
		Help: "Total number of marketplace cache hits",
	})

	// CacheMisses counts lookups that found nothing usable.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_cache_misses_total",
		Help: "Total number of marketplace cache misses",
	})

	// CacheWrittenBytes accumulates the size of stored entries.
	CacheWrittenBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_cache_written_bytes_total",
		Help: "Total bytes written to the marketplace cache",
	})

	// ConditionalRequestsSent counts requests carrying If-None-Match or If-Modified-Since.
	ConditionalRequestsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_conditional_requests_total",
		Help: "Total number of conditional requests sent to the marketplace",
	})

	// NotModifiedResponses counts 304 answers served from the cache.
	NotModifiedResponses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "marketplace_304_responses_total",
		Help: "Total number of 304 Not Modified responses from the marketplace",
	})

	// CacheErrors counts Redis failures by operation.
	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketplace_cache_errors_total",
		Help: "Total number of cache operation errors",
	}, []string{"operation"}) // get, set, delete
)
