package contentgate

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts pipeline outcomes. All methods are nil-safe so the
// pipeline can run unmetered.
type Metrics struct {
	outcomes  *prometheus.CounterVec
	cacheHits prometheus.Counter
}

// NewMetrics creates pipeline metrics registered with the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "contentgate",
			Name:      "outcomes_total",
			Help:      "Request outcomes by type (redirect, stream, render, error_page, raw_error).",
		}, []string{"outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "contentgate",
			Name:      "render_cache_hits_total",
			Help:      "Renders served from the render cache.",
		}),
	}
	reg.MustRegister(m.outcomes, m.cacheHits)
	return m
}

func (m *Metrics) Outcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}
