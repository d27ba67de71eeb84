package memory

import (
	"context"
)

// Embedder converts text to vector embeddings.
// Implementations: mock (testing), onnx (local), openai (remote), cache (decorator).
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	// Identical text must produce identical vectors for a given model.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns embedding vector size.
	Dimensions() int
}

// Index is the persistent vector index the Vault writes to.
// Implementations: chromem (memory/store/chromem).
type Index interface {
	// Add writes a batch. The slices are parallel and equally long.
	Add(ctx context.Context, ids []string, embeddings [][]float32, documents []string, metadatas []map[string]string) error

	// Query returns up to k nearest entries, best match first.
	Query(ctx context.Context, embedding []float32, k int) ([]Hit, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// Hit is a raw index match before metadata decoding.
type Hit struct {
	ID       string
	Document string
	Metadata map[string]string
	Distance float32
}
