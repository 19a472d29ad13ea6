package api

import (
	"log/slog"
	"net/http"

	"github.com/docsift/docsift/internal/config"
	"github.com/docsift/docsift/internal/genai"
	"github.com/docsift/docsift/internal/ingest"
	"github.com/docsift/docsift/internal/podcast"
	"github.com/docsift/docsift/internal/relevance"
	"github.com/docsift/docsift/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the docsift HTTP API server.
type Server struct {
	router    chi.Router
	ingestor  *ingest.Ingestor
	sessions  *session.Orchestrator
	pipeline  *relevance.Pipeline
	genClient *genai.Client
	synth     podcast.Synthesizer
	voices    podcast.Voices
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(ing *ingest.Ingestor, sessions *session.Orchestrator, pipe *relevance.Pipeline,
	gen *genai.Client, synth podcast.Synthesizer, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		ingestor:  ing,
		sessions:  sessions,
		pipeline:  pipe,
		genClient: gen,
		synth:     synth,
		voices:    podcast.DefaultVoices(),
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated, session-scoped endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		r.Use(SessionID)

		r.Post("/api/documents", s.handleUpload)
		r.Post("/api/sections", s.handleSections)
		r.Get("/api/insights", s.handleInsights)
		r.Get("/api/podcast", s.handlePodcast)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
