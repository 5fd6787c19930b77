package routing

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts routing decisions and faults. One Metrics object is usually
// shared by all the routing units of a network.
type Metrics struct {
	decisions *prometheus.CounterVec
	faults    *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nocroute",
				Subsystem: "routing",
				Name:      "decisions_total",
				Help:      "Number of output ports computed.",
			},
			[]string{"mode", "path"},
		),
		faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "nocroute",
				Subsystem: "routing",
				Name:      "faults_total",
				Help:      "Number of routing faults raised.",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(m.decisions, m.faults)

	return m
}

// Decisions returns the decision counter of a mode and path. The path is
// "local" for packets at their destination router and "algorithm" otherwise.
func (m *Metrics) Decisions(mode Mode, path string) prometheus.Counter {
	return m.decisions.WithLabelValues(mode.String(), path)
}

// Faults returns the fault counter of a fault kind.
func (m *Metrics) Faults(kind FaultKind) prometheus.Counter {
	return m.faults.WithLabelValues(kind.String())
}
