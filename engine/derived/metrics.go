package derived

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records aggregator rebuilds.
type Metrics struct {
	rebuilds        prometheus.Counter
	duration        prometheus.Histogram
	ailmentsSkipped prometheus.Counter
}

// NewMetrics registers the aggregator collectors with reg. A nil reg
// creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		rebuilds: f.NewCounter(prometheus.CounterOpts{
			Name: "statcore_derived_rebuilds_total",
			Help: "Derived character state rebuilds.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "statcore_derived_rebuild_seconds",
			Help:    "Time spent rebuilding one character's derived state.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		ailmentsSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "statcore_derived_ailment_sources_skipped_total",
			Help: "Ailment sources skipped because every flag was already set.",
		}),
	}
}

func (m *Metrics) observe(start time.Time) {
	if m != nil {
		m.rebuilds.Inc()
		m.duration.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) skipped(n int) {
	if m != nil && n > 0 {
		m.ailmentsSkipped.Add(float64(n))
	}
}
