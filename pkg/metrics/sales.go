package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SaleMetrics tracks completed and voided sales per store.
type SaleMetrics struct {
	completed *prometheus.CounterVec
	voided    *prometheus.CounterVec
	revenue   *prometheus.CounterVec
}

// NewSaleMetrics registers the sale metrics on the provided registerer.
func NewSaleMetrics(reg prometheus.Registerer) *SaleMetrics {
	if reg == nil {
		return &SaleMetrics{}
	}
	completed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_completed_total",
		Help:      "Completed sales per store.",
	}, []string{"store"})
	voided := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_voided_total",
		Help:      "Voided sales per store.",
	}, []string{"store"})
	revenue := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sales_revenue_cents_total",
		Help:      "Gross revenue in cents from completed sales per store.",
	}, []string{"store"})
	reg.MustRegister(completed, voided, revenue)
	return &SaleMetrics{
		completed: completed,
		voided:    voided,
		revenue:   revenue,
	}
}

// IncCompleted records a completed sale and adds its total to the revenue counter.
func (s *SaleMetrics) IncCompleted(store string, totalCents int64) {
	if s == nil || s.completed == nil {
		return
	}
	store = normalizeLabel(store)
	s.completed.WithLabelValues(store).Inc()
	s.revenue.WithLabelValues(store).Add(float64(totalCents))
}

// IncVoided records a voided sale.
func (s *SaleMetrics) IncVoided(store string) {
	if s == nil || s.voided == nil {
		return
	}
	s.voided.WithLabelValues(normalizeLabel(store)).Inc()
}
