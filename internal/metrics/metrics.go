// Package metrics exposes prometheus collectors for AI and messaging calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hr_assistant"

// AI call outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeColdStart = "cold_start"
	OutcomeCacheHit  = "cache_hit"
)

// Metrics groups the collectors registered for one process.
type Metrics struct {
	registry *prometheus.Registry

	AIRequests   *prometheus.CounterVec
	AIDuration   *prometheus.HistogramVec
	AIParseFails *prometheus.CounterVec
	Messages     *prometheus.CounterVec
	Assessments  *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "Text generation requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		AIDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_request_duration_seconds",
			Help:      "Latency of upstream text generation calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"provider"}),
		AIParseFails: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_parse_failures_total",
			Help:      "AI responses that could not be parsed into the expected structure.",
		}, []string{"operation"}),
		Messages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "whatsapp_messages_total",
			Help:      "WhatsApp messages sent through Twilio by outcome.",
		}, []string{"outcome"}),
		Assessments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turnover_assessments_total",
			Help:      "Turnover risk assessments by level.",
		}, []string{"level"}),
	}
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAI records one AI call. Nil receivers are ignored so components can
// run without metrics.
func (m *Metrics) ObserveAI(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AIRequests.WithLabelValues(provider, outcome).Inc()
	if outcome != OutcomeCacheHit {
		m.AIDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) ParseFailed(operation string) {
	if m == nil {
		return
	}
	m.AIParseFails.WithLabelValues(operation).Inc()
}

func (m *Metrics) MessageSent(ok bool) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeError
	}
	m.Messages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RiskAssessed(level string) {
	if m == nil {
		return
	}
	m.Assessments.WithLabelValues(level).Inc()
}
