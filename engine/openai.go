package engine

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/becomeliminal/memory-vault/log"
)

// OpenAIConfig configures the OpenAI-compatible adapter.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string

	// TranscriptionModel defaults to whisper-1.
	TranscriptionModel string
}

// OpenAI generates, captions and transcribes through an OpenAI-compatible API.
type OpenAI struct {
	client             *openai.Client
	model              string
	transcriptionModel string
	systemPrompt       string
}

// NewOpenAI creates an adapter.
func NewOpenAI(cfg OpenAIConfig, opts ...Option) *OpenAI {
	o := options{model: DefaultOpenAIModel}
	for _, opt := range opts {
		opt(&o)
	}
	if o.model == "" {
		o.model = DefaultOpenAIModel
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	transcriptionModel := cfg.TranscriptionModel
	if transcriptionModel == "" {
		transcriptionModel = openai.Whisper1
	}

	return &OpenAI{
		client:             openai.NewClientWithConfig(clientConfig),
		model:              o.model,
		transcriptionModel: transcriptionModel,
		systemPrompt:       o.systemPrompt,
	}
}

// Generate returns the content of every choice as a candidate.
func (o *OpenAI) Generate(ctx context.Context, prompt string, maxTokens int) ([]string, error) {
	var messages []openai.ChatCompletionMessage
	if o.systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: o.systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	candidates := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		candidates = append(candidates, choice.Message.Content)
	}

	log.Component(ctx, "openai").Debug().
		Str("model", o.model).
		Int("choices", len(candidates)).
		Int("total_tokens", resp.Usage.TotalTokens).
		Msg("chat completion complete")

	return candidates, nil
}

// Caption describes an image passed as a data URL.
func (o *OpenAI) Caption(ctx context.Context, image []byte, mediaType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(image))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: captionMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: CaptionPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("caption completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("empty caption response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe converts the audio file at path to text.
func (o *OpenAI) Transcribe(ctx context.Context, path string) (string, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.transcriptionModel,
		FilePath: path,
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return resp.Text, nil
}
