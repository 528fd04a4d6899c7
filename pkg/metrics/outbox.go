package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxPublisherMetrics tracks the outbox drain loop.
type OutboxPublisherMetrics struct {
	published *prometheus.CounterVec
	retried   *prometheus.CounterVec
	parked    *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

// NewOutboxPublisherMetrics registers the publisher metrics on the provided registerer.
func NewOutboxPublisherMetrics(reg prometheus.Registerer) *OutboxPublisherMetrics {
	if reg == nil {
		return &OutboxPublisherMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_published_total",
		Help:      "Outbox events delivered to Pub/Sub.",
	}, []string{"event_type"})
	retried := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_retries_total",
		Help:      "Transient publish failures that will be retried.",
	}, []string{"event_type"})
	parked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_dlq_total",
		Help:      "Outbox events parked in the DLQ.",
	}, []string{"reason"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "outbox_publish_seconds",
		Help:      "Publish round trip duration per topic.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"topic"})
	reg.MustRegister(published, retried, parked, latency)
	return &OutboxPublisherMetrics{
		published: published,
		retried:   retried,
		parked:    parked,
		latency:   latency,
	}
}

// IncPublished records a delivered event.
func (m *OutboxPublisherMetrics) IncPublished(eventType string) {
	if m == nil || m.published == nil {
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncRetried records a transient publish failure.
func (m *OutboxPublisherMetrics) IncRetried(eventType string) {
	if m == nil || m.retried == nil {
		return
	}
	m.retried.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncParked records an event moved to the DLQ.
func (m *OutboxPublisherMetrics) IncParked(reason string) {
	if m == nil || m.parked == nil {
		return
	}
	m.parked.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObservePublish records the publish round trip for the topic.
func (m *OutboxPublisherMetrics) ObservePublish(topic string, duration time.Duration) {
	if m == nil || m.latency == nil {
		return
	}
	m.latency.WithLabelValues(normalizeLabel(topic)).Observe(duration.Seconds())
}
