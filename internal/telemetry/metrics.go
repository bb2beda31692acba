package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — Prometheus метрики запусков.
//
// Все методы безопасны для nil-получателя: компоненты, созданные
// без метрик, просто ничего не публикуют.
type Metrics struct {
	runsStarted   *prometheus.CounterVec
	runsCompleted *prometheus.CounterVec
	runsFailed    *prometheus.CounterVec
	itemsRecorded *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// Для production передаётся prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rectify",
			Name:      "runs_started_total",
			Help:      "Number of started task groups.",
		}, []string{"name"}),
		runsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rectify",
			Name:      "runs_completed_total",
			Help:      "Number of task groups marked completed.",
		}, []string{"name"}),
		runsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rectify",
			Name:      "runs_failed_total",
			Help:      "Number of task groups aborted by an error.",
		}, []string{"name"}),
		itemsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rectify",
			Name:      "items_recorded_total",
			Help:      "Number of persisted task items by status.",
		}, []string{"name", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rectify",
			Name:      "run_duration_seconds",
			Help:      "Duration of task group execution.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"name", "result"}),
	}

	reg.MustRegister(
		m.runsStarted,
		m.runsCompleted,
		m.runsFailed,
		m.itemsRecorded,
		m.runDuration,
	)

	return m
}

// RunStarted учитывает начало запуска.
func (m *Metrics) RunStarted(name string) {
	if m == nil {
		return
	}
	m.runsStarted.WithLabelValues(name).Inc()
}

// RunCompleted учитывает успешное завершение запуска.
func (m *Metrics) RunCompleted(name string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runsCompleted.WithLabelValues(name).Inc()
	m.runDuration.WithLabelValues(name, "completed").Observe(elapsed.Seconds())
}

// RunFailed учитывает прерванный запуск.
func (m *Metrics) RunFailed(name string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runsFailed.WithLabelValues(name).Inc()
	m.runDuration.WithLabelValues(name, "failed").Observe(elapsed.Seconds())
}

// ItemRecorded учитывает сохранённый item.
func (m *Metrics) ItemRecorded(name, status string) {
	if m == nil {
		return
	}
	m.itemsRecorded.WithLabelValues(name, status).Inc()
}
