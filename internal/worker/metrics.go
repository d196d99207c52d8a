package worker

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry             *prometheus.Registry
	tasksTotal           *prometheus.CounterVec
	taskDuration         *prometheus.HistogramVec
	activeTasks          prometheus.Gauge
	pixelsProcessedTotal prometheus.Counter
	outputBytesTotal     prometheus.Counter
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &metrics{
		registry: registry,
		tasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "avatarforge_worker_tasks_total",
			Help: "Total logo tasks by detected shape and final status.",
		}, []string{"shape", "status"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "avatarforge_worker_task_duration_seconds",
			Help:    "Processing duration for each logo task.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		activeTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "avatarforge_worker_active_tasks",
			Help: "Current number of logos being processed.",
		}),
		pixelsProcessedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "avatarforge_worker_pixels_processed_total",
			Help: "Total output pixels written by successful tasks.",
		}),
		outputBytesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "avatarforge_worker_output_bytes_total",
			Help: "Total encoded bytes written by successful tasks.",
		}),
	}

	registry.MustRegister(
		m.tasksTotal,
		m.taskDuration,
		m.activeTasks,
		m.pixelsProcessedTotal,
		m.outputBytesTotal,
	)
	return m
}

func (m *metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
