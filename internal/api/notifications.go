package api

import (
	"net/http"
	"strconv"
)

// handleListNotificationLog returns recent notification delivery log entries.
// Accepts an optional ?limit=N query parameter (default 50).
func (s *Server) handleListNotificationLog(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.jobSvc.ListLog(r.Context(), limit)
	if err != nil {
		httpErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
