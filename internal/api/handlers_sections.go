package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docsift/docsift/internal/relevance"
)

type sectionsRequest struct {
	SelectedText string `json:"selected_text"`
}

// handleSections runs the relevance pipeline for a text selection against
// the session's documents and returns the ranked sections.
func (s *Server) handleSections(w http.ResponseWriter, r *http.Request) {
	var req sectionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.SelectedText == "" {
		jsonError(w, "selected_text is required", http.StatusBadRequest)
		return
	}

	id := sessionID(r)
	s.sessions.Touch(id)

	docs, err := s.ingestor.Documents(r.Context(), id)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if len(docs) == 0 {
		jsonError(w, "no documents uploaded for this session", http.StatusNotFound)
		return
	}

	result, err := s.pipeline.Run(r.Context(), req.SelectedText, docs)
	if err != nil {
		if errors.Is(err, relevance.ErrNoKeywords) {
			jsonError(w, "could not derive search keywords from the selection", http.StatusUnprocessableEntity)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if len(result.ExtractedSections) == 0 {
		json.NewEncoder(w).Encode(map[string]any{
			"message":            "no relevant sections found",
			"extracted_sections": result.ExtractedSections,
		})
		return
	}
	json.NewEncoder(w).Encode(result)
}
