//go:build onnx

package main

import (
	"context"

	"github.com/becomeliminal/memory-vault/config"
	"github.com/becomeliminal/memory-vault/memory"
	"github.com/becomeliminal/memory-vault/memory/embedder/onnx"
)

func newONNXEmbedder(ctx context.Context, cfg config.EmbeddingConfig, a *app) (memory.Embedder, error) {
	e, err := onnx.New(ctx, onnx.Config{
		ModelPath:     cfg.ONNXModelPath,
		TokenizerPath: cfg.ONNXTokenizerPath,
		LibraryPath:   cfg.ONNXLibraryPath,
		Dimensions:    cfg.Dimensions,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { e.Close() })
	return e, nil
}
