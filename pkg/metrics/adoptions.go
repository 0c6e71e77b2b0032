package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AdoptionMetrics records outcomes for the purchase flow.
type AdoptionMetrics struct {
	begins    *prometheus.CounterVec
	completes *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewAdoptionMetrics registers the adoption metrics on the provided registerer.
func NewAdoptionMetrics(reg prometheus.Registerer) *AdoptionMetrics {
	if reg == nil {
		return &AdoptionMetrics{}
	}
	begins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adoption_begin_total",
		Help: "Adoption purchase attempts by outcome.",
	}, []string{"outcome"})
	completes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adoption_complete_total",
		Help: "Payment reconciliation results by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "adoption_gateway_duration_seconds",
		Help:    "Duration of gateway order creation in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(begins, completes, duration)
	return &AdoptionMetrics{
		begins:    begins,
		completes: completes,
		duration:  duration,
	}
}

// IncBegin counts one purchase attempt with the given outcome label.
func (m *AdoptionMetrics) IncBegin(outcome string) {
	if m == nil || m.begins == nil {
		return
	}
	m.begins.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncComplete counts one reconciliation with the given outcome label.
func (m *AdoptionMetrics) IncComplete(outcome string) {
	if m == nil || m.completes == nil {
		return
	}
	m.completes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveGatewayDuration records the latency of a gateway operation.
func (m *AdoptionMetrics) ObserveGatewayDuration(operation string, seconds float64) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(seconds)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
