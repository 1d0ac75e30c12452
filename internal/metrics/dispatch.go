package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/agbru/mpmatmul/internal/matmul"
)

const namespace = "mpmatmul"

// DispatchMetrics exports the coordinator's traffic as Prometheus metrics.
type DispatchMetrics struct {
	dispatched prometheus.Counter
	received   *prometheus.CounterVec
	stopped    prometheus.Counter
	inFlight   prometheus.Gauge
	duration   prometheus.Histogram
}

var _ matmul.Observer = (*DispatchMetrics)(nil)

// NewDispatchMetrics creates the dispatch collectors and registers them on
// reg. When a collector with the same description is already registered,
// the existing one is reused so that several products can share a registry.
func NewDispatchMetrics(reg prometheus.Registerer) (*DispatchMetrics, error) {
	m := &DispatchMetrics{
		dispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_dispatched_total",
			Help:      "Work messages sent by the coordinator.",
		}),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_received_total",
			Help:      "Result messages received by the coordinator, by worker rank.",
		}, []string{"worker"}),
		stopped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stop_messages_total",
			Help:      "Stop messages sent by the coordinator.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_in_flight",
			Help:      "Work messages dispatched whose result has not yet been received.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "multiply_duration_seconds",
			Help:      "Wall-clock time of the coordinator dispatch loop.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),
	}

	var err error
	if m.dispatched, err = register(reg, m.dispatched); err != nil {
		return nil, err
	}
	if m.received, err = register(reg, m.received); err != nil {
		return nil, err
	}
	if m.stopped, err = register(reg, m.stopped); err != nil {
		return nil, err
	}
	if m.inFlight, err = register(reg, m.inFlight); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Started resets the in-flight gauge for a new product.
func (m *DispatchMetrics) Started(total, workers int) {
	m.inFlight.Set(0)
}

func (m *DispatchMetrics) Dispatched(worker, index int) {
	m.dispatched.Inc()
	m.inFlight.Inc()
}

func (m *DispatchMetrics) Received(worker, index int) {
	m.received.WithLabelValues(strconv.Itoa(worker)).Inc()
	m.inFlight.Dec()
}

func (m *DispatchMetrics) Stopped(worker int) {
	m.stopped.Inc()
}

func (m *DispatchMetrics) Finished(elapsed time.Duration) {
	m.duration.Observe(elapsed.Seconds())
}
