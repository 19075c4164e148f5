// Package api implements the REST handlers for triggering jobs and reading
// stored weather and notification history.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/weatherbrief/internal/scheduler"
	"github.com/shaharia-lab/weatherbrief/internal/service"
)

// JobLister lists the registered recurring jobs.
type JobLister interface {
	Jobs() []scheduler.JobInfo
}

// Server holds all dependencies for the REST API handlers.
type Server struct {
	jobSvc     service.JobService
	weatherSvc service.WeatherService
	publisher  service.EventPublisher
	scheduler  JobLister
	logger     *slog.Logger
}

// New creates a new API Server backed by the provided services. publisher
// and sched may be nil, which disables async jobs and the schedule listing.
func New(
	jobSvc service.JobService,
	weatherSvc service.WeatherService,
	publisher service.EventPublisher,
	sched JobLister,
	logger *slog.Logger,
) *Server {
	return &Server{
		jobSvc:     jobSvc,
		weatherSvc: weatherSvc,
		publisher:  publisher,
		scheduler:  sched,
		logger:     logger,
	}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	r.Get("/version", s.handleVersion)

	// Jobs
	r.Get("/jobs", s.handleListJobs)
	r.Post("/jobs/daily-batch", s.handleDailyBatch)
	r.Post("/jobs/cleanup", s.handleCleanup)
	r.Get("/jobs/ping", s.handlePing)
	r.Post("/jobs/test-email", s.handleTestEmail)

	// Subscriptions
	r.Post("/subscriptions/{id}/send", s.handleSendSubscription)

	// Notification log
	r.Get("/notifications", s.handleListNotificationLog)

	// Weather
	r.Get("/regions/{code}/weather", s.handleRegionWeather)
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

const errInvalidJSONBody = "invalid JSON body"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// httpErr maps service errors to HTTP status codes.
func httpErr(w http.ResponseWriter, err error) {
	var notFound *service.NotFoundError
	var invalid *service.ValidationError
	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeSendResult reports a single send. Failed sends are still a normal
// response body, with 422 so callers can tell them apart.
func writeSendResult(w http.ResponseWriter, res service.SendResult) {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}
