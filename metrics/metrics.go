// Package metrics exposes Prometheus collectors for the score restorer.
// A nil *Collector is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "score_restorer"

// Collector groups the counters updated by the restorer, the admin command
// and the bridge.
type Collector struct {
	departures *prometheus.CounterVec
	arrivals   *prometheus.CounterVec
	commands   *prometheus.CounterVec
	panics     prometheus.Counter
}

// New creates the collectors and registers them on reg. records is sampled
// at scrape time for the live record gauge; it may be nil.
func New(reg prometheus.Registerer, records func() float64) (*Collector, error) {
	c := &Collector{
		departures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "departures_total",
			Help:      "Departures handled, by outcome.",
		}, []string{"outcome"}),
		arrivals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arrivals_total",
			Help:      "Arrivals handled, by outcome.",
		}, []string{"outcome"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_commands_total",
			Help:      "Score commands executed, by action and result.",
		}, []string{"action", "result"}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovered_panics_total",
			Help:      "Panics recovered while handling events or calls.",
		}),
	}

	cs := []prometheus.Collector{c.departures, c.arrivals, c.commands, c.panics}
	if records != nil {
		cs = append(cs, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Saved records currently held, including expired ones not yet evicted.",
		}, records))
	}
	for _, col := range cs {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Departure counts one departure outcome.
func (c *Collector) Departure(outcome string) {
	if c == nil {
		return
	}
	c.departures.WithLabelValues(outcome).Inc()
}

// Arrival counts one arrival outcome.
func (c *Collector) Arrival(outcome string) {
	if c == nil {
		return
	}
	c.arrivals.WithLabelValues(outcome).Inc()
}

// Command counts one admin command execution.
func (c *Collector) Command(action, result string) {
	if c == nil {
		return
	}
	c.commands.WithLabelValues(action, result).Inc()
}

// Panic counts one recovered panic.
func (c *Collector) Panic() {
	if c == nil {
		return
	}
	c.panics.Inc()
}
