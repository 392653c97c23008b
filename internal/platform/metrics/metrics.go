// Package metrics exposes Prometheus instrumentation for the HTTP layer and
// the analytics engine.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the application's Prometheus collectors.
type Metrics struct {
	// Analytics cache
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Snapshot refreshes
	RefreshesTotal  *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	DecisionsLoaded prometheus.Gauge

	// HTTP
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers the collectors on the default registry.
// Registration happens once per process; later calls return the same Metrics.
//
// Metrics:
//   - realitycheck_analytics_cache_hits_total{metric}
//   - realitycheck_analytics_cache_misses_total{metric}
//   - realitycheck_analytics_refreshes_total{result} - "changed" or "unchanged"
//   - realitycheck_analytics_refresh_duration_seconds
//   - realitycheck_analytics_decisions - decisions in the current snapshot
//   - realitycheck_http_requests_total{method,route,status}
//   - realitycheck_http_request_duration_seconds{method,route}
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			CacheHitsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "realitycheck_analytics_cache_hits_total",
					Help: "Analytics results served from the memo cache",
				},
				[]string{"metric"},
			),
			CacheMissesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "realitycheck_analytics_cache_misses_total",
					Help: "Analytics results computed because the cache had no entry",
				},
				[]string{"metric"},
			),
			RefreshesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "realitycheck_analytics_refreshes_total",
					Help: "Snapshot refreshes by whether the decision set changed",
				},
				[]string{"result"},
			),
			RefreshDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "realitycheck_analytics_refresh_duration_seconds",
					Help:    "Time spent loading and fingerprinting decisions",
					Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
				},
			),
			DecisionsLoaded: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "realitycheck_analytics_decisions",
					Help: "Number of decisions in the current analytics snapshot",
				},
			),
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "realitycheck_http_requests_total",
					Help: "HTTP requests by route and status code",
				},
				[]string{"method", "route", "status"},
			),
			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "realitycheck_http_request_duration_seconds",
					Help:    "HTTP request latency",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
		}
	})

	return globalMetrics
}

// CacheHit records an analytics cache hit for metric.
func (m *Metrics) CacheHit(metric string) {
	m.CacheHitsTotal.WithLabelValues(metric).Inc()
}

// CacheMiss records an analytics cache miss for metric.
func (m *Metrics) CacheMiss(metric string) {
	m.CacheMissesTotal.WithLabelValues(metric).Inc()
}

// RecordRefresh records one snapshot refresh.
func (m *Metrics) RecordRefresh(d time.Duration, changed bool, decisions int) {
	result := "unchanged"
	if changed {
		result = "changed"
	}
	m.RefreshesTotal.WithLabelValues(result).Inc()
	m.RefreshDuration.Observe(d.Seconds())
	m.DecisionsLoaded.Set(float64(decisions))
}

// ObserveRequest records a finished HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
