package api

import (
	"net/http"

	"github.com/kiritoko1029/glmcode/internal/monitor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports the latest quota snapshot as Prometheus gauges.
type Metrics struct {
	registry *prometheus.Registry

	QuotaPercentage *prometheus.GaugeVec
	QuotaRemaining  *prometheus.GaugeVec
	QuotaUsed       *prometheus.GaugeVec
	NextReset       *prometheus.GaugeVec
	RefreshErrors   prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := []string{"platform", "type"}

	return &Metrics{
		registry: reg,
		QuotaPercentage: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "glm",
				Name:      "quota_percentage",
				Help:      "Share of the quota window already used, in percent",
			},
			labels,
		),
		QuotaRemaining: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "glm",
				Name:      "quota_remaining",
				Help:      "Remaining units in the quota window",
			},
			labels,
		),
		QuotaUsed: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "glm",
				Name:      "quota_current_value",
				Help:      "Units consumed in the quota window",
			},
			labels,
		),
		NextReset: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "glm",
				Name:      "quota_next_reset_timestamp_seconds",
				Help:      "Unix time at which the quota window resets",
			},
			labels,
		),
		RefreshErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "glm",
				Name:      "quota_refresh_errors_total",
				Help:      "Total number of failed quota refreshes",
			},
		),
	}
}

// Observe replaces the gauges with the values of q.
func (m *Metrics) Observe(platformID string, q *monitor.QuotaLimit) {
	m.QuotaPercentage.Reset()
	m.QuotaRemaining.Reset()
	m.QuotaUsed.Reset()
	m.NextReset.Reset()

	for _, item := range q.Limits {
		m.QuotaPercentage.WithLabelValues(platformID, item.Type).Set(item.Percentage)
		m.QuotaRemaining.WithLabelValues(platformID, item.Type).Set(item.Remaining)
		m.QuotaUsed.WithLabelValues(platformID, item.Type).Set(item.CurrentValue)
		if reset, ok := item.NextResetTime.Time(); ok {
			m.NextReset.WithLabelValues(platformID, item.Type).Set(float64(reset.UnixMilli()) / 1000)
		}
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
