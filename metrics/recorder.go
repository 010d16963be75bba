// Package metrics records provisioning activity as Prometheus metrics and
// exports them in node-exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds provisioning metrics on a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	fetchAttemptsTotal     *prometheus.CounterVec
	fetchDuration          prometheus.Histogram
	installTotal           *prometheus.CounterVec
	installDuration        *prometheus.HistogramVec
	serviceOperationsTotal *prometheus.CounterVec
	stepsTotal             *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers its metrics.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetchAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provision_fetch_attempts_total",
				Help: "Total number of artifact download attempts",
			},
			[]string{"result"},
		),
		fetchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "provision_fetch_duration_seconds",
				Help:    "Duration of successful artifact downloads in seconds, retries included",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
		installTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provision_install_total",
				Help: "Total number of installer runs by outcome",
			},
			[]string{"installer", "outcome"},
		),
		installDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "provision_install_duration_seconds",
				Help:    "Duration of installer runs in seconds",
				Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1200, 2400},
			},
			[]string{"installer"},
		),
		serviceOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provision_service_operations_total",
				Help: "Total number of service operations by resulting state",
			},
			[]string{"operation", "state"},
		),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provision_plan_steps_total",
				Help: "Total number of plan steps executed",
			},
			[]string{"action", "success"},
		),
	}

	r.registry.MustRegister(
		r.fetchAttemptsTotal,
		r.fetchDuration,
		r.installTotal,
		r.installDuration,
		r.serviceOperationsTotal,
		r.stepsTotal,
	)

	return r
}

// Registry returns the registry the metrics are registered with.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordFetchAttempt records a single download attempt.
func (r *Recorder) RecordFetchAttempt(success bool) {
	if r == nil {
		return
	}
	r.fetchAttemptsTotal.WithLabelValues(resultLabel(success)).Inc()
}

// RecordFetchDuration records the total time spent on a successful download.
func (r *Recorder) RecordFetchDuration(duration time.Duration) {
	if r == nil {
		return
	}
	r.fetchDuration.Observe(duration.Seconds())
}

// RecordInstall records an installer run. installer is "binary" or
// "extension"; outcome is the classified outcome name.
func (r *Recorder) RecordInstall(installer, outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.installTotal.WithLabelValues(installer, outcome).Inc()
	r.installDuration.WithLabelValues(installer).Observe(duration.Seconds())
}

// RecordServiceOperation records the state a service operation ended in.
func (r *Recorder) RecordServiceOperation(operation, state string) {
	if r == nil {
		return
	}
	r.serviceOperationsTotal.WithLabelValues(operation, state).Inc()
}

// RecordStep records a plan step.
func (r *Recorder) RecordStep(action string, success bool) {
	if r == nil {
		return
	}
	successLabel := "false"
	if success {
		successLabel = "true"
	}
	r.stepsTotal.WithLabelValues(action, successLabel).Inc()
}

// WriteTextfile writes all metrics to path in the textfile collector format.
// The file is written atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
