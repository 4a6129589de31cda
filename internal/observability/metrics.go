package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects application metrics.
type Metrics interface {
	RecordProviderCall(provider, status string, duration time.Duration)
	RecordTokens(provider string, prompt, completion int)
	SetBreakerState(provider string, state int)
	RecordRateLimitWait(duration time.Duration)
	RecordQuotaRejection(window string)
	RecordGeneration(mode string, rows int)
}

// Provider call outcomes
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusCircuitOpen = "circuit_open"
)

// PrometheusMetrics implements Metrics on a dedicated registry
type PrometheusMetrics struct {
	registry *prometheus.Registry

	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	providerTokens   *prometheus.CounterVec
	breakerState     *prometheus.GaugeVec
	rateLimitWait    prometheus.Histogram
	quotaRejections  *prometheus.CounterVec
	generatedRows    *prometheus.CounterVec
}

// NewPrometheusMetrics registers all collectors on a fresh registry
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,
		providerCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_provider_requests_total",
				Help: "Total number of provider calls by outcome",
			},
			[]string{"provider", "status"},
		),
		providerDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_provider_request_duration_seconds",
				Help:    "Duration of provider calls in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"provider"},
		),
		providerTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_provider_tokens_total",
				Help: "Tokens consumed per provider",
			},
			[]string{"provider", "kind"},
		),
		breakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "llm_circuit_breaker_state",
				Help: "Circuit breaker state per provider (0 closed, 1 half-open, 2 open)",
			},
			[]string{"provider"},
		),
		rateLimitWait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "llm_rate_limit_wait_seconds",
				Help:    "Time callers spent waiting on the short window",
				Buckets: []float64{0, 0.1, 1, 5, 15, 30, 60},
			},
		),
		quotaRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_quota_rejections_total",
				Help: "Calls rejected by an exhausted quota window",
			},
			[]string{"window"},
		),
		generatedRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datagen_rows_generated_total",
				Help: "Rows produced per generation mode",
			},
			[]string{"mode"},
		),
	}
}

func (m *PrometheusMetrics) RecordProviderCall(provider, status string, duration time.Duration) {
	m.providerCalls.WithLabelValues(provider, status).Inc()
	if status != StatusCircuitOpen {
		m.providerDuration.WithLabelValues(provider).Observe(duration.Seconds())
	}
}

func (m *PrometheusMetrics) RecordTokens(provider string, prompt, completion int) {
	m.providerTokens.WithLabelValues(provider, "prompt").Add(float64(prompt))
	m.providerTokens.WithLabelValues(provider, "completion").Add(float64(completion))
}

func (m *PrometheusMetrics) SetBreakerState(provider string, state int) {
	m.breakerState.WithLabelValues(provider).Set(float64(state))
}

func (m *PrometheusMetrics) RecordRateLimitWait(duration time.Duration) {
	m.rateLimitWait.Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordQuotaRejection(window string) {
	m.quotaRejections.WithLabelValues(window).Inc()
}

func (m *PrometheusMetrics) RecordGeneration(mode string, rows int) {
	m.generatedRows.WithLabelValues(mode).Add(float64(rows))
}

// Registry exposes the underlying registry, mainly for tests
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) RecordProviderCall(string, string, time.Duration) {}
func (NopMetrics) RecordTokens(string, int, int) {}
func (NopMetrics) SetBreakerState(string, int) {}
func (NopMetrics) RecordRateLimitWait(time.Duration) {}
func (NopMetrics) RecordQuotaRejection(string) {}
func (NopMetrics) RecordGeneration(string, int) {}
