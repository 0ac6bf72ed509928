package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	ScoreRecomputations    *prometheus.CounterVec
	ScoreRecomputeDuration *prometheus.HistogramVec
	HTTPRequests           *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	CacheLookups           *prometheus.CounterVec
}

// NewMetrics creates the Prometheus metrics and registers them with reg.
// Passing prometheus.NewRegistry() keeps tests isolated from the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ScoreRecomputations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "esg_score_recomputations_total",
				Help: "Total number of tenant score recomputations.",
			},
			[]string{"trigger", "result"},
		),
		ScoreRecomputeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "esg_score_recompute_duration_seconds",
				Help:    "Latency of tenant score recomputations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"trigger"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "esg_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "esg_http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "esg_cache_lookups_total",
				Help: "Dashboard cache lookups by result.",
			},
			[]string{"result"},
		),
	}
}

// RecordScoreRecompute records one recomputation and its outcome.
func (m *Metrics) RecordScoreRecompute(trigger string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.ScoreRecomputations.WithLabelValues(trigger, result).Inc()
	m.ScoreRecomputeDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

// RecordCacheAccess records a dashboard cache hit or miss.
func (m *Metrics) RecordCacheAccess(cacheType string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

//Personal.AI order the ending
