package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shaharia-lab/weatherbrief/internal/scheduler"
	"github.com/shaharia-lab/weatherbrief/internal/service"
)

// queuedResponse is returned with 202 when a job was handed to the job bus.
type queuedResponse struct {
	Status string `json:"status"`
	Event  string `json:"event"`
}

// handleListJobs returns the recurring jobs and their next run time.
func (s *Server) handleListJobs(w http.ResponseWriter, _ *http.Request) {
	if s.scheduler == nil {
		writeJSON(w, http.StatusOK, []scheduler.JobInfo{})
		return
	}
	writeJSON(w, http.StatusOK, s.scheduler.Jobs())
}

// handleDailyBatch runs the daily batch. Query parameters:
//
//	async=true           enqueue on the job bus and return 202
//	user_id, subscription_id   restrict the batch
//	dry_run=true         list the eligible subscriptions without sending
func (s *Server) handleDailyBatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter, err := parseFilter(q.Get("user_id"), q.Get("subscription_id"))
	if err != nil {
		httpErr(w, err)
		return
	}

	if q.Get("dry_run") == "true" {
		subs, err := s.jobSvc.Eligible(r.Context(), filter)
		if err != nil {
			httpErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, subs)
		return
	}

	if q.Get("async") == "true" {
		if filter != (service.Filter{}) {
			writeError(w, http.StatusBadRequest, "async runs do not accept filters")
			return
		}
		s.enqueue(w, service.EventDailyBatch, nil)
		return
	}

	summary, err := s.jobSvc.RunBatchFor(r.Context(), filter)
	if err != nil {
		httpErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleCleanup deletes old notification log entries.
// Accepts an optional ?retention_days=N (default 30).
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("retention_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "retention_days must be a positive integer")
			return
		}
		days = n
	}

	summary, err := s.jobSvc.CleanupOldLogs(r.Context(), days)
	if err != nil {
		httpErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": s.jobSvc.Ping(r.Context())})
}

type testEmailRequest struct {
	To     string `json:"to"`
	Region string `json:"region"`
}

// handleTestEmail sends a test-mode report for a region to any address.
func (s *Server) handleTestEmail(w http.ResponseWriter, r *http.Request) {
	var req testEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidJSONBody)
		return
	}
	writeSendResult(w, s.jobSvc.SendPreview(r.Context(), req.To, req.Region))
}

func (s *Server) enqueue(w http.ResponseWriter, event string, payload map[string]string) {
	if s.publisher == nil {
		writeError(w, http.StatusServiceUnavailable, "job queue is not available")
		return
	}
	s.publisher.Publish(event, payload)
	s.logger.Info("job queued", "event", event)
	writeJSON(w, http.StatusAccepted, queuedResponse{Status: "queued", Event: event})
}

func parseFilter(userID, subscriptionID string) (service.Filter, error) {
	var f service.Filter
	if userID != "" {
		n, err := strconv.ParseInt(userID, 10, 64)
		if err != nil || n <= 0 {
			return f, &service.ValidationError{Field: "user_id", Message: "must be a positive integer"}
		}
		f.UserID = n
	}
	if subscriptionID != "" {
		n, err := strconv.ParseInt(subscriptionID, 10, 64)
		if err != nil || n <= 0 {
			return f, &service.ValidationError{Field: "subscription_id", Message: "must be a positive integer"}
		}
		f.SubscriptionID = n
	}
	return f, nil
}
