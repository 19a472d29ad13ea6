package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docsift/docsift/internal/session"
)

// handleInsights returns the session's generated insights, waiting for the
// background build if it is still running.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	result, err := s.sessions.AwaitResult(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			jsonError(w, "no documents uploaded for this session", http.StatusNotFound)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			jsonError(w, "request cancelled", http.StatusRequestTimeout)
		default:
			jsonError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result.Insights)
}
