package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts cache traffic per store.
type Metrics struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	rebuilds  *prometheus.CounterVec
	evictions *prometheus.CounterVec
}

// NewMetrics registers the cache counters with reg. A nil reg creates
// unregistered counters.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		hits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "statcore_cache_hits_total",
			Help: "Lookups that found an existing entry.",
		}, []string{"store"}),
		misses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "statcore_cache_misses_total",
			Help: "Lookups that created a new entry.",
		}, []string{"store"}),
		rebuilds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "statcore_cache_builds_total",
			Help: "Payload builds, including the first build of an entry.",
		}, []string{"store"}),
		evictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "statcore_cache_evictions_total",
			Help: "Entries removed by TTL sweeps.",
		}, []string{"store"}),
	}
}

func (m *Metrics) hit(store string) {
	if m != nil {
		m.hits.WithLabelValues(store).Inc()
	}
}

func (m *Metrics) missed(store string) {
	if m != nil {
		m.misses.WithLabelValues(store).Inc()
	}
}

func (m *Metrics) rebuilt(store string) {
	if m != nil {
		m.rebuilds.WithLabelValues(store).Inc()
	}
}

func (m *Metrics) evicted(store string, n int) {
	if m != nil && n > 0 {
		m.evictions.WithLabelValues(store).Add(float64(n))
	}
}
