package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected     *prometheus.CounterVec
	CheckErrors  *prometheus.CounterVec
	DegradedMode prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "farmshop_ratelimit_rejected_total",
			Help: "Requests refused by the rate limiter, by scope",
		}, []string{"scope"}),
		CheckErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "farmshop_ratelimit_check_errors_total",
			Help: "Rate limit checks that failed and let the request through, by scope",
		}, []string{"scope"}),
		DegradedMode: f.NewGauge(prometheus.GaugeOpts{
			Name: "farmshop_ratelimit_degraded",
			Help: "1 while rate limiting is served by the in-memory fallback",
		}),
	}
}

func (m *Metrics) IncrementRejected(scope string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(scope).Inc()
}

func (m *Metrics) IncrementCheckErrors(scope string) {
	if m == nil {
		return
	}
	m.CheckErrors.WithLabelValues(scope).Inc()
}

func (m *Metrics) SetDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.DegradedMode.Set(1)
		return
	}
	m.DegradedMode.Set(0)
}
