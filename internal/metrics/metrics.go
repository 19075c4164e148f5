// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	WeatherAPIRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "weather_api_requests_total",
		Help: "Weather API calls by extensions and outcome.",
	}, []string{"extensions", "status"})

	WeatherAPIDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "weather_api_request_duration_seconds",
		Help:    "Weather API call latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"extensions"})

	DispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_dispatch_total",
		Help: "Notification dispatches by mode and outcome.",
	}, []string{"mode", "result"})

	DispatchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_dispatch_errors_total",
		Help: "Failed dispatches by error kind.",
	}, []string{"kind"})

	LogWriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_log_write_failures_total",
		Help: "Notification log entries that could not be persisted.",
	})

	BatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "batch_run_duration_seconds",
		Help:    "Duration of a full batch run.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})

	JobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduled_job_runs_total",
		Help: "Scheduled job executions by job and outcome.",
	}, []string{"job", "status"})
)

var registerOnce sync.Once

// MustRegister registers all collectors. Repeated calls are no-ops.
func MustRegister(registerer prometheus.Registerer) {
	registerOnce.Do(func() {
		registerer.MustRegister(
			WeatherAPIRequests,
			WeatherAPIDuration,
			DispatchTotal,
			DispatchErrors,
			LogWriteFailures,
			BatchDuration,
			JobRuns,
		)
	})
}

// Handler returns the Prometheus scrape handler for the default gatherer.
func Handler() http.Handler {
	return promhttp.Handler()
}
