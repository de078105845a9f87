package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the attribution service.
type Metrics struct {
	// Pivot engine metrics
	PivotRequests *prometheus.CounterVec
	PivotDuration *prometheus.HistogramVec

	// Backing store metrics
	FetchErrors *prometheus.CounterVec
	RowsFetched *prometheus.HistogramVec

	// Response cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		PivotRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pivot_requests_total",
				Help:      "Total number of pivot computations by outcome",
			},
			[]string{"status", "rate_mode"},
		),
		PivotDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pivot_duration_seconds",
				Help:      "End-to-end pivot computation latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"rate_mode"},
		),
		FetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_errors_total",
				Help:      "Backing store fetch failures by store",
			},
			[]string{"store"},
		),
		RowsFetched: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rows_fetched",
				Help:      "Row volume per backing fetch",
				Buckets:   []float64{10, 100, 500, 1000, 2500, 5000, 10000},
			},
			[]string{"store"},
		),
		CacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Pivot response cache hits",
			},
		),
		CacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Pivot response cache misses",
			},
		),
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by rate limiting",
			},
			[]string{"path", "client_ip"},
		),
	}
}

// RecordPivot records one pivot computation outcome.
func (m *Metrics) RecordPivot(status, rateMode string, duration time.Duration) {
	m.PivotRequests.WithLabelValues(status, rateMode).Inc()
	if duration > 0 {
		m.PivotDuration.WithLabelValues(rateMode).Observe(duration.Seconds())
	}
}

// RecordFetchError records a backing store failure.
func (m *Metrics) RecordFetchError(store string) {
	m.FetchErrors.WithLabelValues(store).Inc()
}

// RecordRowsFetched records the row volume of one fetch.
func (m *Metrics) RecordRowsFetched(store string, rows int) {
	m.RowsFetched.WithLabelValues(store).Observe(float64(rows))
}

// RecordCache records a cache hit or miss.
func (m *Metrics) RecordCache(hit bool) {
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// RecordRateLimitHit records a rate-limited request.
func (m *Metrics) RecordRateLimitHit(path, clientIP string) {
	m.RateLimitHits.WithLabelValues(path, clientIP).Inc()
}

// Handler returns the Prometheus scrape handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
