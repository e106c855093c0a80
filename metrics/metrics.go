// Package metrics records pipeline run statistics in Prometheus format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects run and stage metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	RunsTotal     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	RunDuration   *prometheus.HistogramVec
}

// Create a new recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "artexport_runs_total",
				Help: "Total number of pipeline runs",
			},
			[]string{"category", "status"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "artexport_stage_duration_seconds",
				Help:    "Time spent in authoring tool processes",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"stage"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "artexport_run_duration_seconds",
				Help:    "End to end duration of pipeline runs",
				Buckets: []float64{0.5, 1, 5, 10, 30, 60, 300, 600},
			},
			[]string{"category"},
		),
	}
}

// Get the registry backing this recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (r *Recorder) ObserveRun(category, status string, d time.Duration) {
	r.RunsTotal.WithLabelValues(category, status).Inc()
	r.RunDuration.WithLabelValues(category).Observe(d.Seconds())
}

// Write the collected metrics to path in the text exposition format used by
// the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
