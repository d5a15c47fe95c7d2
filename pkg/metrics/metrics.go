// Package metrics exposes the Prometheus registry used by the dashboard.
// Collectors are defined with promauto in the packages that own them
// (client, cache, pagination, aggregator, dashboard, web) so that no package
// has to import this one to record a value.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gatherer is the gatherer served by Handler. promauto registers every
// collector with the matching default registerer.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the metrics in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - marketplace_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//   - marketplace_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - marketplace_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Cache Metrics (pkg/cache):
//   - marketplace_cache_hits_total (Counter): Cache lookups that found an entry
//   - marketplace_cache_misses_total (Counter): Cache lookups without an entry
//   - marketplace_cache_written_bytes_total (Counter): Bytes written to Redis
//   - marketplace_conditional_requests_total (Counter): Requests sent with If-None-Match / If-Modified-Since
//   - marketplace_304_responses_total (Counter): 304 Not Modified responses served from cache
//   - marketplace_cache_errors_total{operation} (Counter): Cache operation errors
//
// Paging Metrics (pkg/pagination):
//   - marketplace_pages_fetched_total (Counter): Search pages fetched, including the empty last page
//
// Aggregation Metrics (pkg/aggregator):
//   - price_aggregation_runs_total{outcome} (Counter): Runs by outcome (succeeded, failed)
//   - price_aggregation_run_duration_seconds (Histogram): Run duration
//   - price_category_average{category} (Gauge): Last computed average per category
//   - price_teachers_counted_total (Counter): Teachers included in averages
//
// Dashboard Metrics (pkg/dashboard, pkg/web):
//   - dashboard_run_in_progress (Gauge): 1 while a run is in progress
//   - dashboard_triggers_total{result} (Counter): Triggers by result (started, ignored)
//   - dashboard_http_requests_total{route, method, status} (Counter): Dashboard HTTP requests
//   - dashboard_http_request_duration_seconds{route} (Histogram): Dashboard HTTP latency
//
// Example Prometheus Queries:
//
//   # Failed run ratio
//   sum(rate(price_aggregation_runs_total{outcome="failed"}[1h])) /
//   sum(rate(price_aggregation_runs_total[1h]))
//
//   # P95 marketplace latency
//   histogram_quantile(0.95, rate(marketplace_request_duration_seconds_bucket[5m]))
//
//   # Revalidation hit rate
//   rate(marketplace_304_responses_total[5m]) / rate(marketplace_conditional_requests_total[5m])
