// Package metrics counts what discovery rounds see on the wire. Collectors are
// registered on a private prometheus registry so several instances (one per
// test, for example) never collide.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rr_mdns"

// Outcome labels for received datagrams.
const (
	OutcomeAccepted  = "accepted"
	OutcomeMalformed = "malformed"
	OutcomeIgnored   = "ignored"
)

// Recorder receives per-round observations from the query executor.
type Recorder interface {
	QuerySent(service string)
	DatagramReceived(outcome string)
	RoundFinished(service string, instances int, elapsed time.Duration)
}

// Metrics is the prometheus-backed Recorder.
type Metrics struct {
	registry  *prometheus.Registry
	queries   *prometheus.CounterVec
	datagrams *prometheus.CounterVec
	instances *prometheus.CounterVec
	rounds    *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_sent_total",
			Help:      "Queries sent, by service type.",
		}, []string{"service"}),
		datagrams: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_received_total",
			Help:      "Datagrams received during query rounds, by outcome.",
		}, []string{"outcome"}),
		instances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_discovered_total",
			Help:      "Instances returned by query rounds, by service type.",
		}, []string{"service"}),
		rounds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_duration_seconds",
			Help:      "Wall time of one query round.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10, 30, 60},
		}, []string{"service"}),
	}
	m.registry.MustRegister(m.queries, m.datagrams, m.instances, m.rounds)
	return m
}

// Registry exposes the private registry, for tests and optional exposition.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile dumps the registry in the text exposition format, for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) QuerySent(service string) {
	m.queries.WithLabelValues(service).Inc()
}

func (m *Metrics) DatagramReceived(outcome string) {
	m.datagrams.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RoundFinished(service string, instances int, elapsed time.Duration) {
	m.instances.WithLabelValues(service).Add(float64(instances))
	m.rounds.WithLabelValues(service).Observe(elapsed.Seconds())
}

// Nop discards every observation.
type Nop struct{}

func (Nop) QuerySent(string)                         {}
func (Nop) DatagramReceived(string)                  {}
func (Nop) RoundFinished(string, int, time.Duration) {}

var (
	_ Recorder = (*Metrics)(nil)
	_ Recorder = Nop{}
)
