package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docoutline/internal/store"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]any{
		"queue_depth":  s.orchestrator.QueueDepth(),
		"tracked_jobs": s.orchestrator.TrackedJobs(),
		"workers":      s.cfg.WorkerCount,
	}
	if s.cache != nil {
		n, err := s.cache.Count(r.Context())
		if err != nil {
			jsonError(w, "failed to count cached outlines: "+err.Error(), http.StatusInternalServerError)
			return
		}
		stats["cached_outlines"] = n
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCachedOutline(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		jsonError(w, "outline cache is disabled", http.StatusServiceUnavailable)
		return
	}

	e, err := s.cache.Get(r.Context(), chi.URLParam(r, "hash"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "outline not cached", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "cache lookup failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
