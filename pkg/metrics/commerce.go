package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CommerceMetrics records checkout lifecycle and webhook delivery metadata.
type CommerceMetrics struct {
	completions     *prometheus.CounterVec
	webhookDelivery *prometheus.CounterVec
	webhookDuration *prometheus.HistogramVec
}

// NewCommerceMetrics registers the commerce metrics on the provided registerer.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return &CommerceMetrics{}
	}
	completions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_completions",
		Help: "Checkout completion attempts by outcome.",
	}, []string{"outcome"})
	webhookDelivery := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries",
		Help: "Webhook delivery attempts by event type and outcome.",
	}, []string{"event", "outcome"})
	webhookDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_delivery_duration_seconds",
		Help:    "Duration of webhook delivery attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event"})
	reg.MustRegister(completions, webhookDelivery, webhookDuration)
	return &CommerceMetrics{
		completions:     completions,
		webhookDelivery: webhookDelivery,
		webhookDuration: webhookDuration,
	}
}

// IncCompletion increments the completion counter for the given outcome.
func (c *CommerceMetrics) IncCompletion(outcome string) {
	if c == nil || c.completions == nil {
		return
	}
	c.completions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncWebhookDelivery increments the delivery counter for an event/outcome pair.
func (c *CommerceMetrics) IncWebhookDelivery(event, outcome string) {
	if c == nil || c.webhookDelivery == nil {
		return
	}
	c.webhookDelivery.WithLabelValues(normalizeLabel(event), normalizeLabel(outcome)).Inc()
}

// ObserveWebhookDuration records how long one delivery attempt took.
func (c *CommerceMetrics) ObserveWebhookDuration(event string, duration time.Duration) {
	if c == nil || c.webhookDuration == nil {
		return
	}
	c.webhookDuration.WithLabelValues(normalizeLabel(event)).Observe(duration.Seconds())
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
