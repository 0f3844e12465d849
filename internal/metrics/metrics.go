// Package metrics holds the Prometheus collectors of the document controller.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultStale   = "stale"
)

// Metrics groups the counters updated by the document controller
type Metrics struct {
	Intents         *prometheus.CounterVec
	Autosaves       *prometheus.CounterVec
	BackgroundFetch *prometheus.CounterVec
}

// New creates the collectors and registers them on reg; a nil registerer
// leaves them unregistered
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emojiart",
			Name:      "intents_total",
			Help:      "Intents applied to the document, by intent.",
		}, []string{"intent"}),
		Autosaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emojiart",
			Name:      "autosave_total",
			Help:      "Autosave attempts, by result.",
		}, []string{"result"}),
		BackgroundFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emojiart",
			Name:      "background_fetch_total",
			Help:      "Completed background fetches, by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(m.Intents, m.Autosaves, m.BackgroundFetch)
	}
	return m
}

// Intent counts an applied intent
func (m *Metrics) Intent(name string) {
	if m == nil {
		return
	}
	m.Intents.WithLabelValues(name).Inc()
}

// Autosave counts an autosave attempt
func (m *Metrics) Autosave(result string) {
	if m == nil {
		return
	}
	m.Autosaves.WithLabelValues(result).Inc()
}

// Fetch counts a completed background fetch
func (m *Metrics) Fetch(result string) {
	if m == nil {
		return
	}
	m.BackgroundFetch.WithLabelValues(result).Inc()
}
