package observability

import (
	"time"

	"github.com/boddenberg/schemexpert-bfa-go/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	gatewayRequests *prometheus.CounterVec
	gatewayFallback *prometheus.CounterVec
	externalErrors  *prometheus.CounterVec
	tokensUsed      *prometheus.CounterVec
	activeSessions  prometheus.Gauge
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "schemexpert_operation_duration_seconds",
				Help:    "Duration of operations (scheme generation, chat, model calls).",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"operation"},
		),
		gatewayRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schemexpert_gateway_requests_total",
				Help: "Total AI gateway operations.",
			},
			[]string{"operation"},
		),
		gatewayFallback: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schemexpert_gateway_fallbacks_total",
				Help: "AI gateway operations that resolved to the fail-soft default.",
			},
			[]string{"operation", "reason"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schemexpert_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schemexpert_llm_tokens_total",
				Help: "Total LLM tokens consumed.",
			},
			[]string{"type"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "schemexpert_active_sessions",
				Help: "Sessions currently held in memory.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrGatewayRequest counts one AI gateway operation.
func (m *Metrics) IncrGatewayRequest(operation string) {
	m.gatewayRequests.WithLabelValues(operation).Inc()
}

// IncrFallback counts an operation that fell back to its canned default.
func (m *Metrics) IncrFallback(operation, reason string) {
	m.gatewayFallback.WithLabelValues(operation, reason).Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(prompt, completion int) {
	m.tokensUsed.WithLabelValues("prompt").Add(float64(prompt))
	m.tokensUsed.WithLabelValues("completion").Add(float64(completion))
}

// SetActiveSessions publishes the session store size.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// GetGatewaySnapshot returns a snapshot of gateway metrics suitable for the
// GET /v1/metrics/gateway endpoint.
func (m *Metrics) GetGatewaySnapshot() *domain.GatewayMetrics {
	schemes := counterValue(m.gatewayRequests.WithLabelValues("generate_schemes"))
	chats := counterValue(m.gatewayRequests.WithLabelValues("chat"))
	fallbacks := m.sumFallbacks()

	rate := float64(0)
	if total := schemes + chats; total > 0 {
		rate = fallbacks / total
	}

	return &domain.GatewayMetrics{
		SchemeRequests:   int64(schemes),
		ChatRequests:     int64(chats),
		Fallbacks:        int64(fallbacks),
		FallbackRate:     rate,
		PromptTokens:     int64(counterValue(m.tokensUsed.WithLabelValues("prompt"))),
		CompletionTokens: int64(counterValue(m.tokensUsed.WithLabelValues("completion"))),
		ActiveSessions:   int(gaugeValue(m.activeSessions)),
	}
}

func (m *Metrics) sumFallbacks() float64 {
	ch := make(chan prometheus.Metric, 64)
	go func() {
		m.gatewayFallback.Collect(ch)
		close(ch)
	}()
	var total float64
	for metric := range ch {
		total += counterValue(metric)
	}
	return total
}

// counterValue extracts the current float64 value of a counter.
func counterValue(c prometheus.Metric) float64 {
	out := &dto.Metric{}
	if err := c.Write(out); err != nil {
		return 0
	}
	if out.Counter != nil && out.Counter.Value != nil {
		return *out.Counter.Value
	}
	return 0
}

func gaugeValue(g prometheus.Gauge) float64 {
	out := &dto.Metric{}
	if err := g.Write(out); err != nil {
		return 0
	}
	if out.Gauge != nil && out.Gauge.Value != nil {
		return *out.Gauge.Value
	}
	return 0
}
