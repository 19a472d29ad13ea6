package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/docsift/docsift/internal/ingest"
	"github.com/docsift/docsift/internal/session"
)

// handleUpload replaces a session's document set. Fresh documents arrive in
// the files_current field and background reading in files_past. Any prior
// artifacts for the session are cleared, then extraction runs per document
// and the session's insight build is kicked off.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	current := r.MultipartForm.File["files_current"]
	past := r.MultipartForm.File["files_past"]
	if len(current) == 0 {
		jsonError(w, "files_current is required", http.StatusBadRequest)
		return
	}

	id := sessionID(r)
	if err := s.sessions.Reset(id); err != nil {
		if errors.Is(err, session.ErrAlreadyBuilding) {
			jsonError(w, "session analysis in progress, retry shortly", http.StatusConflict)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result := &ingest.Result{}
	merge := func(batch *ingest.Result) {
		result.Stored = append(result.Stored, batch.Stored...)
		result.Skipped = append(result.Skipped, batch.Skipped...)
	}
	merge(s.ingestBatch(r, id, ingest.RoleCurrent, current))
	merge(s.ingestBatch(r, id, ingest.RolePast, past))

	if len(result.Stored) == 0 {
		jsonError(w, "no document could be processed", http.StatusUnprocessableEntity)
		return
	}

	// Insights and the podcast script depend only on the document set, so
	// their build starts now rather than on first read.
	if err := s.sessions.StartBuild(r.Context(), id); err != nil && !errors.Is(err, session.ErrAlreadyBuilding) {
		s.log.Error("start session build", "session", id, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(result)
}

// ingestBatch opens each upload behind a size guard and hands the batch to
// the ingestor, which isolates per-document failures.
func (s *Server) ingestBatch(r *http.Request, id string, role ingest.Role, headers []*multipart.FileHeader) *ingest.Result {
	res := &ingest.Result{}
	uploads := make([]ingest.Upload, 0, len(headers))
	var open []io.Closer
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			res.Skipped = append(res.Skipped, ingest.Skipped{Name: fh.Filename, Reason: "failed to open upload"})
			continue
		}
		open = append(open, f)
		limited := io.LimitReader(f, s.cfg.MaxUploadBytes+1)
		uploads = append(uploads, ingest.Upload{
			Name: fh.Filename,
			Body: &sizeGuard{r: limited, max: s.cfg.MaxUploadBytes},
		})
	}

	batch := s.ingestor.AddBatch(r.Context(), id, role, uploads)
	for _, f := range open {
		f.Close()
	}
	res.Stored = append(res.Stored, batch.Stored...)
	res.Skipped = append(res.Skipped, batch.Skipped...)
	return res
}

// sizeGuard fails the read once more than max bytes have been consumed.
type sizeGuard struct {
	r    io.Reader
	max  int64
	seen int64
}

func (g *sizeGuard) Read(p []byte) (int, error) {
	n, err := g.r.Read(p)
	g.seen += int64(n)
	if g.seen > g.max {
		return n, fmt.Errorf("file exceeds max size (%d bytes)", g.max)
	}
	return n, err
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
