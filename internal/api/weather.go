package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleRegionWeather returns the latest persisted snapshot for a region.
func (s *Server) handleRegionWeather(w http.ResponseWriter, r *http.Request) {
	snap, err := s.weatherSvc.LatestSnapshot(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httpErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
