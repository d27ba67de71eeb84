// Package rag answers questions from stored memories.
package rag

import (
	"context"
	"errors"
	"fmt"

	"github.com/becomeliminal/memory-vault/core"
	"github.com/becomeliminal/memory-vault/log"
)

// DefaultTopK is the number of memories retrieved when the caller does not say.
const DefaultTopK = 5

// DefaultMaxAnswerTokens bounds generated answers.
const DefaultMaxAnswerTokens = 100

// ErrNoCompletion is returned when the generator produces no candidates.
var ErrNoCompletion = errors.New("generator returned no completion")

// Retriever finds the memories nearest to a query.
type Retriever interface {
	Search(ctx context.Context, query string, k int) ([]core.Result, error)
}

// Generator produces candidate completions for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) ([]string, error)
}

// Responder is the retrieval-augmented question answerer.
type Responder struct {
	retriever Retriever
	generator Generator
	maxTokens int
}

// Option configures a Responder.
type Option func(*Responder)

// WithMaxTokens bounds generated answers.
func WithMaxTokens(n int) Option {
	return func(r *Responder) {
		if n > 0 {
			r.maxTokens = n
		}
	}
}

// NewResponder creates a Responder.
func NewResponder(retriever Retriever, generator Generator, opts ...Option) *Responder {
	r := &Responder{
		retriever: retriever,
		generator: generator,
		maxTokens: DefaultMaxAnswerTokens,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Answer retrieves up to k memories and narrates a response. k <= 0 uses DefaultTopK.
func (r *Responder) Answer(ctx context.Context, query string, k int) (*core.Answer, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	logger := log.Component(ctx, "rag")

	results, err := r.retriever.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve memories: %w", err)
	}

	answer := &core.Answer{
		Images: []core.MediaRef{},
		Audio:  []core.MediaRef{},
	}
	if len(results) == 0 {
		logger.Debug().Msg("no memories, returning fallback")
		answer.Response = FallbackResponse
		return answer, nil
	}

	var images, audio, other []core.Result
	for _, res := range results {
		switch res.Record.SourceType {
		case core.SourceImage:
			images = append(images, res)
		case core.SourceAudio:
			audio = append(audio, res)
		default:
			other = append(other, res)
		}
	}

	prompt := buildPrompt(query, buildContext(query, images, audio, other))

	candidates, err := r.generator.Generate(ctx, prompt, r.maxTokens)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoCompletion
	}

	answer.Response = personaResponse(cleanCompletion(candidates[0]))
	answer.Images = mediaRefs(images)
	answer.Audio = mediaRefs(audio)

	logger.Info().
		Int("retrieved", len(results)).
		Int("images", len(answer.Images)).
		Int("audio", len(answer.Audio)).
		Msg("answered query")

	return answer, nil
}

// mediaRefs lists results that have a persisted original, in retrieval order.
func mediaRefs(results []core.Result) []core.MediaRef {
	refs := make([]core.MediaRef, 0, len(results))
	for _, res := range results {
		if res.Record.FilePath == "" {
			continue
		}
		refs = append(refs, core.MediaRef{Path: res.Record.FilePath, Filename: res.Record.Filename})
	}
	return refs
}
