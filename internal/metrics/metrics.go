// Package metrics exposes prometheus collectors for the sidecar supervisor.
package metrics

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sidecar"

// Shutdown results recorded by ShutdownTotal.
const (
	ResultGraceful = "graceful"
	ResultKilled   = "killed"
	ResultOrphaned = "orphaned"
)

// Metrics groups the supervisor's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	SpawnTotal        prometheus.Counter
	SpawnFailureTotal prometheus.Counter
	ShutdownTotal     *prometheus.CounterVec
	LinesTotal        *prometheus.CounterVec
	ExitTotal         prometheus.Counter
	Running           prometheus.Gauge
}

// New creates the collectors and registers them with reg when reg is non-nil.
// Collectors already registered by another supervisor are shared.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		SpawnTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spawn_total",
			Help:      "Number of sidecar processes spawned.",
		}),
		SpawnFailureTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spawn_failure_total",
			Help:      "Number of failed sidecar spawn attempts.",
		}),
		ShutdownTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shutdown_total",
			Help:      "Number of sidecar shutdowns by result.",
		}, []string{"result"}),
		LinesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_total",
			Help:      "Number of output lines relayed by stream.",
		}, []string{"stream"}),
		ExitTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exit_total",
			Help:      "Number of sidecar processes observed exiting.",
		}),
		Running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "running",
			Help:      "Number of sidecar handles currently installed.",
		}),
	}

	if reg == nil {
		return m, nil
	}

	var err error

	m.SpawnTotal, err = register(reg, m.SpawnTotal)
	if err != nil {
		return nil, err
	}

	m.SpawnFailureTotal, err = register(reg, m.SpawnFailureTotal)
	if err != nil {
		return nil, err
	}

	m.ShutdownTotal, err = register(reg, m.ShutdownTotal)
	if err != nil {
		return nil, err
	}

	m.LinesTotal, err = register(reg, m.LinesTotal)
	if err != nil {
		return nil, err
	}

	m.ExitTotal, err = register(reg, m.ExitTotal)
	if err != nil {
		return nil, err
	}

	m.Running, err = register(reg, m.Running)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// register registers c, returning the existing collector if an identical one
// is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := stderrors.AsType[prometheus.AlreadyRegisteredError](err); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}

		return c, err
	}

	return c, nil
}

// Spawned records a successful spawn.
func (m *Metrics) Spawned() {
	if m == nil {
		return
	}

	m.SpawnTotal.Inc()
	m.Running.Inc()
}

// SpawnFailed records a failed spawn attempt.
func (m *Metrics) SpawnFailed() {
	if m == nil {
		return
	}

	m.SpawnFailureTotal.Inc()
}

// Stopped records a handle leaving the slot with the given shutdown result.
func (m *Metrics) Stopped(result string) {
	if m == nil {
		return
	}

	m.ShutdownTotal.WithLabelValues(result).Inc()
	m.Running.Dec()
}

// Line records one relayed output line.
func (m *Metrics) Line(stream string) {
	if m == nil {
		return
	}

	m.LinesTotal.WithLabelValues(stream).Inc()
}

// Exited records a sidecar process exit observed by the relay.
func (m *Metrics) Exited() {
	if m == nil {
		return
	}

	m.ExitTotal.Inc()
}
