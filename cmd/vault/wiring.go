package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/becomeliminal/memory-vault/config"
	"github.com/becomeliminal/memory-vault/engine"
	"github.com/becomeliminal/memory-vault/ingest"
	"github.com/becomeliminal/memory-vault/log"
	"github.com/becomeliminal/memory-vault/memory"
	"github.com/becomeliminal/memory-vault/memory/embedder/cache"
	"github.com/becomeliminal/memory-vault/memory/embedder/mock"
	"github.com/becomeliminal/memory-vault/memory/embedder/openai"
	"github.com/becomeliminal/memory-vault/memory/store/chromem"
	"github.com/becomeliminal/memory-vault/rag"
)

// app is every component of a running vault.
type app struct {
	vault     *memory.Vault
	media     *ingest.MediaDir
	ingestor  *ingest.Ingestor
	responder *rag.Responder
	closers   []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// storeOnly opens the vault without model adapters, for commands that never generate.
func storeOnly(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}

	embedder, err := newEmbedder(ctx, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	index, err := chromem.Open(cfg.Storage.IndexPath(), cfg.Storage.Collection, cfg.Storage.Compress)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.vault = memory.NewVault(index, embedder)
	a.closers = append(a.closers, func() { a.vault.Close() })

	a.media, err = ingest.NewMediaDir(cfg.Storage.MediaPath())
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// buildApp opens the vault and connects the model adapters.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a, err := storeOnly(ctx, cfg)
	if err != nil {
		return nil, err
	}

	models, err := engine.New(engine.Config{
		Generator:          engine.Provider(cfg.Models.Generator),
		Captioner:          engine.Provider(cfg.Models.Captioner),
		AnthropicAPIKey:    cfg.Models.AnthropicAPIKey,
		AnthropicModel:     cfg.Models.AnthropicModel,
		OpenAIAPIKey:       cfg.Models.OpenAIAPIKey,
		OpenAIBaseURL:      cfg.Models.OpenAIBaseURL,
		OpenAIModel:        cfg.Models.OpenAIModel,
		TranscriptionModel: cfg.Models.TranscriptionModel,
	}, engine.WithSystemPrompt(rag.PersonaPrompt))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("configure models: %w", err)
	}
	if models.Transcriber == nil {
		log.Component(ctx, "wiring").Warn().Msg("no transcriber configured, audio will be stored as placeholders")
	}

	opts := []ingest.Option{
		ingest.WithWorkers(cfg.Pipeline.IngestWorkers),
		ingest.WithScratchDir(cfg.Storage.ScratchDir),
	}
	if cfg.Pipeline.ExtractYear {
		opts = append(opts, ingest.WithYearExtraction())
	}

	normalizer := ingest.NewNormalizer(models.Captioner, models.Transcriber, cfg.Pipeline.MaxImageDimension)
	a.ingestor = ingest.NewIngestor(normalizer, a.media, opts...)
	a.responder = rag.NewResponder(a.vault, models.Generator, rag.WithMaxTokens(cfg.Pipeline.MaxAnswerTokens))

	return a, nil
}

func newEmbedder(ctx context.Context, full *config.Config, a *app) (memory.Embedder, error) {
	cfg := full.Embedding

	var (
		base memory.Embedder
		err  error
	)

	switch cfg.Provider {
	case config.EmbedderMock:
		base = mock.New(cfg.Dimensions)
	case config.EmbedderOpenAI:
		base, err = openai.New(openai.Config{
			APIKey:     full.Models.OpenAIAPIKey,
			BaseURL:    full.Models.OpenAIBaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	case config.EmbedderONNX:
		base, err = newONNXEmbedder(ctx, cfg, a)
	default:
		err = fmt.Errorf("unknown embedder %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	if cfg.CacheSize == 0 {
		return base, nil
	}
	cached, err := cache.New(base, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, cached.Close)
	return cached, nil
}

var errONNXUnavailable = errors.New("onnx embedder not compiled in; rebuild with -tags onnx")
