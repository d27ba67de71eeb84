//go:build !onnx

package main

import (
	"context"

	"github.com/becomeliminal/memory-vault/config"
	"github.com/becomeliminal/memory-vault/memory"
)

func newONNXEmbedder(ctx context.Context, cfg config.EmbeddingConfig, a *app) (memory.Embedder, error) {
	return nil, errONNXUnavailable
}
