package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Claude generation
	AnthropicAPIKey string
	AnthropicModel  string
	GenAITimeout    time.Duration

	// Azure text-to-speech
	SpeechKey      string
	SpeechEndpoint string

	// Artifact storage: "fs" or "minio"
	StorageBackend string
	ArtifactRoot   string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Relevance pipeline
	MaxConcurrentFilter int

	// Upload limits
	MaxUploadBytes int64

	// Session lifecycle
	SessionTTL    time.Duration
	SweepInterval time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("DOCSIFT_API_KEY"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		GenAITimeout:    envDuration("GENAI_TIMEOUT", 2*time.Minute),

		SpeechKey:      os.Getenv("AZURE_SPEECH_KEY"),
		SpeechEndpoint: os.Getenv("AZURE_SPEECH_ENDPOINT"),

		StorageBackend: envOr("STORAGE_BACKEND", "fs"),
		ArtifactRoot:   envOr("ARTIFACT_ROOT", "./data"),
		MinioEndpoint:  envOr("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    envOr("MINIO_BUCKET", "docsift"),
		MinioUseSSL:    envBool("MINIO_USE_SSL", false),

		MaxConcurrentFilter: envInt("MAX_CONCURRENT_FILTER", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		SessionTTL:    envDuration("SESSION_TTL", 1*time.Hour),
		SweepInterval: envDuration("SWEEP_INTERVAL", 10*time.Minute),
	}

	if cfg.MaxConcurrentFilter <= 0 {
		cfg.MaxConcurrentFilter = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 1 * time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Minute
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCSIFT_API_KEY is required")
	}
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if c.StorageBackend != "fs" && c.StorageBackend != "minio" {
		return fmt.Errorf("STORAGE_BACKEND must be fs or minio, got %q", c.StorageBackend)
	}
	if c.StorageBackend == "minio" && (c.MinioAccessKey == "" || c.MinioSecretKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio backend")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
