// Package engine adapts hosted models to the generator, captioner and transcriber
// roles used by ingestion and retrieval.
package engine

import (
	"context"
	"fmt"
	"strings"
)

// DefaultAnthropicModel is used when no model is configured.
const DefaultAnthropicModel = "claude-sonnet-4-20250514"

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// CaptionPrompt asks a vision model for a short, factual description.
const CaptionPrompt = "Describe this photograph in one short sentence. Mention the people, place and activity if visible. Reply with the description only."

const captionMaxTokens = 120

// Generator produces candidate completions for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) ([]string, error)
}

// Captioner describes an image.
type Captioner interface {
	Caption(ctx context.Context, image []byte, mediaType string) (string, error)
}

// Transcriber converts an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// Provider names a model backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
)

// Config selects and configures backends.
type Config struct {
	Generator Provider
	Captioner Provider

	AnthropicAPIKey string
	AnthropicModel  string

	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	TranscriptionModel string
}

// Models holds the adapters selected by New. Transcriber is nil when no OpenAI
// credentials are configured; audio then degrades to placeholder content.
type Models struct {
	Generator   Generator
	Captioner   Captioner
	Transcriber Transcriber
}

// Option configures an adapter.
type Option func(*options)

type options struct {
	model        string
	systemPrompt string
}

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithSystemPrompt sets the system prompt sent with every generation.
func WithSystemPrompt(prompt string) Option {
	return func(o *options) {
		o.systemPrompt = prompt
	}
}

// New builds the adapters named in cfg. opts apply to the generator.
func New(cfg Config, opts ...Option) (*Models, error) {
	var (
		anthropicClient *Anthropic
		openaiClient    *OpenAI
	)

	getAnthropic := func() (*Anthropic, error) {
		if anthropicClient == nil {
			if cfg.AnthropicAPIKey == "" {
				return nil, fmt.Errorf("anthropic: ANTHROPIC_API_KEY is not set")
			}
			anthropicClient = NewAnthropic(cfg.AnthropicAPIKey, append([]Option{WithModel(cfg.AnthropicModel)}, opts...)...)
		}
		return anthropicClient, nil
	}
	getOpenAI := func() (*OpenAI, error) {
		if openaiClient == nil {
			if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
				return nil, fmt.Errorf("openai: OPENAI_API_KEY is not set")
			}
			openaiClient = NewOpenAI(OpenAIConfig{
				APIKey:             cfg.OpenAIAPIKey,
				BaseURL:            cfg.OpenAIBaseURL,
				TranscriptionModel: cfg.TranscriptionModel,
			}, append([]Option{WithModel(cfg.OpenAIModel)}, opts...)...)
		}
		return openaiClient, nil
	}
	pick := func(role string, p Provider) (interface {
		Generator
		Captioner
	}, error) {
		switch Provider(strings.ToLower(string(p))) {
		case ProviderAnthropic, "":
			return getAnthropic()
		case ProviderOpenAI:
			return getOpenAI()
		default:
			return nil, fmt.Errorf("unknown %s provider %q", role, p)
		}
	}

	gen, err := pick("generator", cfg.Generator)
	if err != nil {
		return nil, err
	}
	capt, err := pick("captioner", cfg.Captioner)
	if err != nil {
		return nil, err
	}

	models := &Models{Generator: gen, Captioner: capt}
	if oa, err := getOpenAI(); err == nil {
		models.Transcriber = oa
	}
	return models, nil
}
