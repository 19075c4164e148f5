package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/weatherbrief/internal/notification"
	"github.com/shaharia-lab/weatherbrief/internal/service"
)

// handleSendSubscription sends one subscription's report now.
// Accepts ?mode=normal|test (default normal) and ?async=true.
func (s *Server) handleSendSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "subscription id must be a positive integer")
		return
	}

	mode, err := notification.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.URL.Query().Get("async") == "true" {
		s.enqueue(w, service.EventSendOne, map[string]string{
			"subscription_id": strconv.FormatInt(id, 10),
			"mode":            string(mode),
		})
		return
	}

	writeSendResult(w, s.jobSvc.SendOne(r.Context(), id, mode))
}
