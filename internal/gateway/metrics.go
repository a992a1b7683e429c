package gateway

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the Prometheus collectors for one Server. Each Server owns
// its registry so tests can build servers without collector name collisions.
type metrics struct {
	registry    *prometheus.Registry
	eventsTotal *prometheus.CounterVec
}

func newMetrics(rests RestScheduler) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "repcoach_events_total",
			Help: "Dispatched user events by kind and outcome.",
		}, []string{"event", "outcome"}),
	}
	m.registry.MustRegister(m.eventsTotal)

	if rests != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "repcoach_pending_rests",
			Help: "Rest timers currently armed.",
		}, func() float64 {
			return float64(rests.Pending())
		}))
	}
	return m
}

func (m *metrics) observe(event string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.eventsTotal.WithLabelValues(event, outcome).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
