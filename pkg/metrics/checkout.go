package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout attempts, outcomes, and provider latency.
type CheckoutMetrics struct {
	attempts *prometheus.CounterVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	provider *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout submissions by payment method.",
	}, []string{"method"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_success_total",
		Help: "Completed checkouts by payment method.",
	}, []string{"method"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failure_total",
		Help: "Failed checkouts by payment method and failure reason.",
	}, []string{"method", "reason"})
	provider := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_provider_duration_seconds",
		Help:    "Duration of payment-provider round trips in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "operation"})
	reg.MustRegister(attempts, success, failure, provider)
	return &CheckoutMetrics{
		attempts: attempts,
		success:  success,
		failure:  failure,
		provider: provider,
	}
}

// IncAttempt counts a checkout submission for the method.
func (c *CheckoutMetrics) IncAttempt(method string) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncSuccess counts a completed checkout for the method.
func (c *CheckoutMetrics) IncSuccess(method string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncFailure counts a failed checkout with its classified reason.
func (c *CheckoutMetrics) IncFailure(method, reason string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(normalizeLabel(method), normalizeLabel(reason)).Inc()
}

// ObserveProvider records one provider round trip.
func (c *CheckoutMetrics) ObserveProvider(provider, operation string, duration time.Duration) {
	if c == nil || c.provider == nil {
		return
	}
	c.provider.WithLabelValues(normalizeLabel(provider), normalizeLabel(operation)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
