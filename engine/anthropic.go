package engine

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/becomeliminal/memory-vault/log"
)

// Anthropic generates text and captions with Claude.
type Anthropic struct {
	client       *anthropic.Client
	model        string
	systemPrompt string
}

// NewAnthropic creates an adapter authenticated with apiKey.
func NewAnthropic(apiKey string, opts ...Option) *Anthropic {
	return NewAnthropicWithClientOptions([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
}

// NewAnthropicWithClientOptions creates an adapter from raw SDK request options.
func NewAnthropicWithClientOptions(clientOpts []option.RequestOption, opts ...Option) *Anthropic {
	o := options{model: DefaultAnthropicModel}
	for _, opt := range opts {
		opt(&o)
	}
	if o.model == "" {
		o.model = DefaultAnthropicModel
	}

	client := anthropic.NewClient(clientOpts...)
	return &Anthropic{
		client:       &client,
		model:        o.model,
		systemPrompt: o.systemPrompt,
	}
}

// Generate returns a single candidate: the concatenated text blocks of one message.
func (a *Anthropic) Generate(ctx context.Context, prompt string, maxTokens int) ([]string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if a.systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: a.systemPrompt}}
	}

	text, err := a.complete(ctx, params)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	return []string{text}, nil
}

// Caption describes an image sent inline as base64.
func (a *Anthropic) Caption(ctx context.Context, image []byte, mediaType string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: captionMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(image)),
				anthropic.NewTextBlock(CaptionPrompt),
			),
		},
	}

	text, err := a.complete(ctx, params)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("claude returned an empty caption")
	}
	return text, nil
}

func (a *Anthropic) complete(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	log.Component(ctx, "anthropic").Debug().
		Str("model", a.model).
		Int64("input_tokens", resp.Usage.InputTokens).
		Int64("output_tokens", resp.Usage.OutputTokens).
		Msg("message complete")

	return text, nil
}
