package scheduler

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const metricsNamespace = "transfer_agent"

// metrics is nil safe: a scheduler created without a registerer records nothing.
type metrics struct {
	registerer prometheus.Registerer
	queued     prometheus.Gauge
	busy       prometheus.Gauge
	completed  prometheus.Counter
	panics     prometheus.Counter
	owned      []prometheus.Collector
}

func newMetrics(name string, r prometheus.Registerer) *metrics {
	if r == nil {
		return nil
	}

	labels := prometheus.Labels{"scheduler": name}
	m := &metrics{registerer: r}

	m.queued = register(m, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Subsystem:   "scheduler",
		Name:        "queued_work",
		Help:        "Number of work requests waiting for a free worker.",
		ConstLabels: labels,
	}))
	m.busy = register(m, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Subsystem:   "scheduler",
		Name:        "busy_workers",
		Help:        "Number of workers currently running work.",
		ConstLabels: labels,
	}))
	m.completed = register(m, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   metricsNamespace,
		Subsystem:   "scheduler",
		Name:        "completed_work_total",
		Help:        "Number of work requests that finished running.",
		ConstLabels: labels,
	}))
	m.panics = register(m, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   metricsNamespace,
		Subsystem:   "scheduler",
		Name:        "panics_total",
		Help:        "Number of work requests that panicked.",
		ConstLabels: labels,
	}))

	return m
}

func register[C prometheus.Collector](m *metrics, c C) C {
	err := m.registerer.Register(c)
	if err == nil {
		m.owned = append(m.owned, c)
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	zap.S().Named("scheduler").Warnw("failed to register metric", "error", err)
	return c
}

func (m *metrics) setQueued(n int) {
	if m == nil {
		return
	}
	m.queued.Set(float64(n))
}

func (m *metrics) setBusy(n int) {
	if m == nil {
		return
	}
	m.busy.Set(float64(n))
}

func (m *metrics) workDone() {
	if m == nil {
		return
	}
	m.completed.Inc()
}

func (m *metrics) panicked() {
	if m == nil {
		return
	}
	m.panics.Inc()
}

func (m *metrics) unregister() {
	if m == nil {
		return
	}
	for _, c := range m.owned {
		m.registerer.Unregister(c)
	}
}
