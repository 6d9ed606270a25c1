package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records delivery outcomes and SKU match quality.
type WebhookMetrics struct {
	deliveries *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	skuMatches *prometheus.CounterVec
	skuMisses  *prometheus.CounterVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_deliveries_total",
		Help: "Webhook deliveries by topic and outcome.",
	}, []string{"topic", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_handler_duration_seconds",
		Help:    "Time spent handling a webhook delivery.",
		Buckets: prometheus.DefBuckets,
	}, []string{"topic"})
	skuMatches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sku_resolution_matches_total",
		Help: "Successful SKU resolutions by strategy.",
	}, []string{"strategy"})
	skuMisses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sku_resolution_misses_total",
		Help: "Line items skipped because no strategy matched.",
	}, []string{"alias_type"})
	reg.MustRegister(deliveries, duration, skuMatches, skuMisses)
	return &WebhookMetrics{
		deliveries: deliveries,
		duration:   duration,
		skuMatches: skuMatches,
		skuMisses:  skuMisses,
	}
}

// IncDelivery counts one delivery with the given outcome.
func (m *WebhookMetrics) IncDelivery(topic, outcome string) {
	if m == nil || m.deliveries == nil {
		return
	}
	m.deliveries.WithLabelValues(normalizeLabel(topic), normalizeLabel(outcome)).Inc()
}

// ObserveDuration records handler latency for the topic.
func (m *WebhookMetrics) ObserveDuration(topic string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(topic)).Observe(d.Seconds())
}

// IncSkuMatch counts a resolution by the strategy that hit.
func (m *WebhookMetrics) IncSkuMatch(strategy string) {
	if m == nil || m.skuMatches == nil {
		return
	}
	m.skuMatches.WithLabelValues(normalizeLabel(strategy)).Inc()
}

// IncSkuMiss counts a line item no strategy could resolve.
func (m *WebhookMetrics) IncSkuMiss(aliasType string) {
	if m == nil || m.skuMisses == nil {
		return
	}
	m.skuMisses.WithLabelValues(normalizeLabel(aliasType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
