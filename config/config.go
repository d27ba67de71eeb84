// Package config reads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	Storage   StorageConfig
	Embedding EmbeddingConfig
	Models    ModelConfig
	Pipeline  PipelineConfig

	Addr         string        `env:"VAULT_ADDR" envDefault:":8080"`
	ModelTimeout time.Duration `env:"VAULT_MODEL_TIMEOUT" envDefault:"2m"`
	Debug        bool          `env:"VAULT_DEBUG" envDefault:"false"`
}

// PipelineConfig tunes ingestion and retrieval.
type PipelineConfig struct {
	TopK              int  `env:"VAULT_TOP_K" envDefault:"5"`
	MaxAnswerTokens   int  `env:"VAULT_MAX_ANSWER_TOKENS" envDefault:"100"`
	MaxImageDimension int  `env:"VAULT_MAX_IMAGE_DIMENSION" envDefault:"1024"`
	IngestWorkers     int  `env:"VAULT_INGEST_WORKERS" envDefault:"4"`
	ExtractYear       bool `env:"VAULT_EXTRACT_YEAR" envDefault:"false"`
}

// Load reads files (default .env) into the process environment, then parses it.
// Missing files are skipped; variables already set are not overridden.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse()
}

// Parse reads configuration from the environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Pipeline.TopK <= 0:
		return fmt.Errorf("VAULT_TOP_K must be positive, got %d", c.Pipeline.TopK)
	case c.Pipeline.MaxAnswerTokens <= 0:
		return fmt.Errorf("VAULT_MAX_ANSWER_TOKENS must be positive, got %d", c.Pipeline.MaxAnswerTokens)
	case c.Pipeline.IngestWorkers <= 0:
		return fmt.Errorf("VAULT_INGEST_WORKERS must be positive, got %d", c.Pipeline.IngestWorkers)
	case c.Embedding.CacheSize < 0:
		return fmt.Errorf("VAULT_EMBED_CACHE_SIZE must not be negative, got %d", c.Embedding.CacheSize)
	}
	switch c.Embedding.Provider {
	case EmbedderOpenAI, EmbedderONNX, EmbedderMock:
	default:
		return fmt.Errorf("unknown VAULT_EMBEDDER %q", c.Embedding.Provider)
	}
	return nil
}
