package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8090"`

	// Auth
	APIKey string `env:"DOCCHUNK_API_KEY"`

	// Blob store roots (any afs URL).
	ContentURL string `env:"CONTENT_URL" envDefault:"file:///tmp/docchunk/content"`
	LogURL     string `env:"LOG_URL"`

	// Chunking
	ChunkTargetSize int    `env:"CHUNK_TARGET_SIZE" envDefault:"750"`
	TokenEncoding   string `env:"TOKEN_ENCODING" envDefault:"cl100k_base"`
	StrictLayout    bool   `env:"STRICT_LAYOUT" envDefault:"false"`

	// Worker pool
	WorkerCount     int `env:"WORKER_COUNT" envDefault:"4"`
	MaxQueueSize    int `env:"MAX_QUEUE_SIZE" envDefault:"100"`
	MaxWriteRetries int `env:"MAX_WRITE_RETRIES" envDefault:"3"`

	// Upload limits
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"52428800"` // 50MB

	// Job state
	JobTTL time.Duration `env:"JOB_TTL" envDefault:"1h"`

	// PDF
	PDFFallbackPdftotext bool `env:"PDF_FALLBACK_PDFTOTEXT" envDefault:"true"`

	// Dev output of document maps and layout results to LogURL.
	EnableDevOutput bool `env:"ENABLE_DEV_OUTPUT" envDefault:"false"`
}

// Load reads the configuration from the environment, after seeding it from
// a .env file in the working directory when one exists.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxWriteRetries <= 0 {
		cfg.MaxWriteRetries = 3
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("DOCCHUNK_API_KEY is required")
	}
	if c.ContentURL == "" {
		return fmt.Errorf("CONTENT_URL is required")
	}
	if c.ChunkTargetSize <= 0 {
		return fmt.Errorf("CHUNK_TARGET_SIZE must be positive, got %d", c.ChunkTargetSize)
	}
	if c.EnableDevOutput && c.LogURL == "" {
		return fmt.Errorf("LOG_URL is required when ENABLE_DEV_OUTPUT is set")
	}
	return nil
}
