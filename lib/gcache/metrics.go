package gcache

import (
	"sync"

	"github.com/mailgun/groupcache/v2"
	"github.com/prometheus/client_golang/prometheus"
)

type cacheMetrics struct {
	getter     *prometheus.CounterVec
	gets       *prometheus.GaugeVec
	cacheHits  *prometheus.GaugeVec
	peerLoads  *prometheus.GaugeVec
	peerErrors *prometheus.GaugeVec
	localLoads *prometheus.GaugeVec
	peers      prometheus.Gauge
}

var (
	metricsOnce sync.Once
	metrics     *cacheMetrics
)

func cacheMetricsRegistry() *cacheMetrics {
	metricsOnce.Do(func() {
		gauge := func(name, help string) *prometheus.GaugeVec {
			return prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "gcache_group_" + name,
				Help: help,
			}, []string{"group"})
		}
		metrics = &cacheMetrics{
			getter: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "gcache_getter_total",
				Help: "Group getter runs on this node by group and result.",
			}, []string{"group", "result"}),
			gets:       gauge("gets", "Get requests seen by the group, including from peers."),
			cacheHits:  gauge("cache_hits", "Gets answered from the main or hot cache."),
			peerLoads:  gauge("peer_loads", "Gets loaded from a remote peer."),
			peerErrors: gauge("peer_errors", "Failed remote peer loads."),
			localLoads: gauge("local_loads", "Gets loaded by running the getter locally."),
			peers: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "gcache_peers",
				Help: "Peers in the redis peer set at the last check.",
			}),
		}
		prometheus.MustRegister(
			metrics.getter,
			metrics.gets,
			metrics.cacheHits,
			metrics.peerLoads,
			metrics.peerErrors,
			metrics.localLoads,
			metrics.peers,
		)
	})
	return metrics
}

func (m *cacheMetrics) observeGetter(group string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.getter.WithLabelValues(group, result).Inc()
}

func (m *cacheMetrics) observeStats(group *groupcache.Group) {
	name := group.Name()
	m.gets.WithLabelValues(name).Set(float64(group.Stats.Gets.Get()))
	m.cacheHits.WithLabelValues(name).Set(float64(group.Stats.CacheHits.Get()))
	m.peerLoads.WithLabelValues(name).Set(float64(group.Stats.PeerLoads.Get()))
	m.peerErrors.WithLabelValues(name).Set(float64(group.Stats.PeerErrors.Get()))
	m.localLoads.WithLabelValues(name).Set(float64(group.Stats.LocalLoads.Get()))
}
