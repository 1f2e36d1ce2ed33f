package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"metricsdash/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObserveUpstreamDuration(source string, duration time.Duration)
	IncChunkFailures(source string)
	AddDroppedRecords(source string, count int)
	ObserveSeriesBuild(source string, duration time.Duration)
}

type MetricsProvider struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	upstreamDuration *prometheus.HistogramVec
	chunkFailures    *prometheus.CounterVec
	droppedRecords   *prometheus.CounterVec
	seriesBuild      *prometheus.HistogramVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObserveUpstreamDuration(source string, duration time.Duration) {
	m.upstreamDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncChunkFailures(source string) {
	m.chunkFailures.WithLabelValues(source).Inc()
}

func (m *MetricsProvider) AddDroppedRecords(source string, count int) {
	if count <= 0 {
		return
	}
	m.droppedRecords.WithLabelValues(source).Add(float64(count))
}

func (m *MetricsProvider) ObserveSeriesBuild(source string, duration time.Duration) {
	m.seriesBuild.WithLabelValues(source).Observe(duration.Seconds())
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mdash_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mdash_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mdash_cache_hits_total",
			Help: "Total number of series cache hits",
		}),
		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mdash_cache_misses_total",
			Help: "Total number of series cache misses",
		}),
		upstreamDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mdash_upstream_request_duration_seconds",
			Help:    "Duration of upstream API requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		chunkFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mdash_chunk_failures_total",
			Help: "Chunks of a chunked fetch that failed and were skipped",
		}, []string{"source"}),
		droppedRecords: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mdash_dropped_records_total",
			Help: "Upstream records dropped for lacking a resolvable timestamp",
		}, []string{"source"}),
		seriesBuild: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mdash_series_build_duration_seconds",
			Help:    "Time to resolve, fetch and aggregate one series",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                  {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration)  {}
func (n *noopMetrics) IncCacheHits()                                     {}
func (n *noopMetrics) IncCacheMisses()                                   {}
func (n *noopMetrics) ObserveUpstreamDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncChunkFailures(_ string)                         {}
func (n *noopMetrics) AddDroppedRecords(_ string, _ int)                 {}
func (n *noopMetrics) ObserveSeriesBuild(_ string, _ time.Duration)      {}
