package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/docsift/docsift/internal/podcast"
	"github.com/docsift/docsift/internal/session"
)

const audioKey = "audio/podcast.mp3"

// handlePodcast streams the session's podcast audio, synthesizing it on
// first request from the script produced by the session build.
func (s *Server) handlePodcast(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	result, err := s.sessions.GetOrBuild(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			jsonError(w, "no documents uploaded for this session", http.StatusNotFound)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if key := s.sessions.AudioKey(id); key != "" {
		rc, err := s.ingestor.Store().Get(r.Context(), id, key)
		if err == nil {
			defer rc.Close()
			serveAudio(w, rc)
			return
		}
		s.log.Warn("stored podcast audio unreadable, resynthesizing", "session", id, "error", err)
	}

	if s.synth == nil {
		jsonError(w, "speech synthesis is not configured", http.StatusNotImplemented)
		return
	}
	if len(result.ScriptA) == 0 {
		jsonError(w, "session build produced no podcast script", http.StatusUnprocessableEntity)
		return
	}

	script := &podcast.Script{HostA: result.ScriptA, HostB: result.ScriptB}
	audio, err := s.synth.Synthesize(r.Context(), script.SSML(s.voices))
	if err != nil {
		jsonError(w, "speech synthesis failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	if err := s.ingestor.Store().Put(r.Context(), id, audioKey, bytes.NewReader(audio)); err != nil {
		s.log.Warn("could not cache podcast audio", "session", id, "error", err)
	} else if err := s.sessions.AttachAudio(id, audioKey); err != nil {
		s.log.Warn("could not record podcast audio key", "session", id, "error", err)
	}

	serveAudio(w, bytes.NewReader(audio))
}

func serveAudio(w http.ResponseWriter, r io.Reader) {
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `attachment; filename="podcast.mp3"`)
	io.Copy(w, r)
}
