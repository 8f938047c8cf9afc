package eventdetails

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type storeMetrics struct {
	dispatched  *prometheus.CounterVec
	loads       prometheus.Counter
	incentives  prometheus.Gauge
	prizes      prometheus.Gauge
	subscribers prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metrics     *storeMetrics
)

func storeMetricsRegistry() *storeMetrics {
	metricsOnce.Do(func() {
		metrics = &storeMetrics{
			dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "eventdetails_dispatched_total",
				Help: "Actions dispatched at the event details store by type and whether state changed.",
			}, []string{"type", "changed"}),
			loads: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "eventdetails_loads_total",
				Help: "Times event details were replaced.",
			}),
			incentives: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "eventdetails_incentives",
				Help: "Incentives in the current event details.",
			}),
			prizes: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "eventdetails_prizes",
				Help: "Prizes in the current event details.",
			}),
			subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "eventdetails_subscribers",
				Help: "Registered event details subscribers.",
			}),
		}
		prometheus.MustRegister(
			metrics.dispatched,
			metrics.loads,
			metrics.incentives,
			metrics.prizes,
			metrics.subscribers,
		)
	})
	return metrics
}

func (m *storeMetrics) observeDispatch(t Type, changed bool, state *EventDetails) {
	if m == nil {
		return
	}
	kind := string(t)
	if kind == "" {
		kind = "unknown"
	}
	ch := "false"
	if changed {
		ch = "true"
		m.loads.Inc()
		m.incentives.Set(float64(len(state.AvailableIncentives)))
		m.prizes.Set(float64(len(state.Prizes)))
	}
	m.dispatched.WithLabelValues(kind, ch).Inc()
}
