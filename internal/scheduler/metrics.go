package scheduler

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the scheduler's Prometheus collectors.
type Metrics struct {
	Executed *prometheus.CounterVec
	Pending  prometheus.Gauge
	Duration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Executed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "symbol_indexer",
			Subsystem: "scheduler",
			Name:      "tasks_executed",
		}, []string{"config", "result"}),
		Pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "symbol_indexer",
			Subsystem: "scheduler",
			Name:      "tasks_pending",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "symbol_indexer",
			Subsystem: "scheduler",
			Name:      "task_duration_seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
	reg.MustRegister(m.Executed, m.Pending, m.Duration)
	return m
}
