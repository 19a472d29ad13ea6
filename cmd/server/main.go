package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docsift/docsift/internal/api"
	"github.com/docsift/docsift/internal/artifact"
	"github.com/docsift/docsift/internal/config"
	"github.com/docsift/docsift/internal/genai"
	"github.com/docsift/docsift/internal/ingest"
	"github.com/docsift/docsift/internal/insights"
	"github.com/docsift/docsift/internal/podcast"
	"github.com/docsift/docsift/internal/relevance"
	"github.com/docsift/docsift/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Error("artifact store init failed", "error", err)
		os.Exit(1)
	}

	gen := genai.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.GenAITimeout)
	ingestor := ingest.New(store, log)
	pipe := relevance.New(gen, log)
	pipe.MaxConcurrentFilter = cfg.MaxConcurrentFilter

	var synth podcast.Synthesizer
	if cfg.SpeechKey != "" && cfg.SpeechEndpoint != "" {
		synth = podcast.NewAzureSynthesizer(cfg.SpeechKey, cfg.SpeechEndpoint, 60*time.Second)
	} else {
		log.Warn("speech synthesis disabled: AZURE_SPEECH_KEY or AZURE_SPEECH_ENDPOINT not set")
	}

	// A session build aggregates the session's document texts, generates
	// insights, and writes the podcast script. Audio synthesis is deferred
	// to the first podcast request.
	build := func(ctx context.Context, sessionID string) (*session.BuildResult, error) {
		texts, err := ingestor.Texts(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		res, combined, err := insights.Generate(ctx, gen, texts, log)
		if err != nil {
			return nil, err
		}
		result := &session.BuildResult{
			Insights: res,
			Text:     combined,
			BuiltAt:  time.Now(),
		}
		script, err := podcast.WriteScript(ctx, gen, combined)
		if err != nil {
			log.Warn("podcast script generation failed", "session", sessionID, "error", err)
		} else {
			result.ScriptA = script.HostA
			result.ScriptB = script.HostB
		}
		return result, nil
	}

	sessions := session.New(build, log, cfg.SessionTTL, cfg.SweepInterval)
	sessions.OnEvict = func(id string) {
		if err := store.DeleteSession(context.Background(), id); err != nil {
			log.Warn("session artifact cleanup failed", "session", id, "error", err)
		}
	}
	sessions.Start()

	srv := api.NewServer(ingestor, sessions, pipe, gen, synth, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		sessions.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		gen.Close()
	}()

	log.Info("starting docsift", "port", cfg.Port, "storage", cfg.StorageBackend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newStore(ctx context.Context, cfg config.Config) (artifact.Store, error) {
	if cfg.StorageBackend == "minio" {
		return artifact.NewMinioStore(ctx, artifact.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	}
	return artifact.NewFSStore(cfg.ArtifactRoot)
}
