// Package metrics holds the bot's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "timebank"

// Metrics is one set of collectors bound to a registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Commands      *prometheus.CounterVec
	CreditsEarned prometheus.Counter
	TurnErrors    prometheus.Counter
	TurnDuration  prometheus.Histogram
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Commands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands handled, by command.",
		}, []string{"command"}),
		CreditsEarned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credits_earned_total",
			Help:      "Credits accrued by successful saves.",
		}),
		TurnErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turn_errors_total",
			Help:      "Turns that failed and sent the generic error message.",
		}),
		TurnDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_duration_seconds",
			Help:      "Time to process one inbound activity, replies included.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// NewRegistry returns a registry with the process and Go runtime collectors plus a
// fresh Metrics.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg, New(reg)
}

func (m *Metrics) Command(name string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(name).Inc()
}

func (m *Metrics) Credits(amount float64) {
	if m == nil {
		return
	}
	m.CreditsEarned.Add(amount)
}

func (m *Metrics) TurnError() {
	if m == nil {
		return
	}
	m.TurnErrors.Inc()
}

func (m *Metrics) ObserveTurn(seconds float64) {
	if m == nil {
		return
	}
	m.TurnDuration.Observe(seconds)
}
