package chromem

import (
	"context"
	"errors"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/becomeliminal/memory-vault/log"
	"github.com/becomeliminal/memory-vault/memory"
)

// DefaultCollection is the collection memories are written to.
const DefaultCollection = "memories"

// ErrInvalidBatch is returned by Add for batches rejected before anything is written.
var ErrInvalidBatch = errors.New("invalid batch")

// Index wraps chromem-go for vector storage.
// chromem-go is a pure Go, embedded vector database; with a path it persists to disk.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	mu         sync.RWMutex
}

var _ memory.Index = (*Index)(nil)

// Open opens (or creates) a persistent index at path.
// Existing entries are loaded, so id assignment continues across restarts.
func Open(path, collection string, compress bool) (*Index, error) {
	db, err := chromem.NewPersistentDB(path, compress)
	if err != nil {
		return nil, fmt.Errorf("open chromem db at %s: %w", path, err)
	}
	return newIndex(db, collection)
}

// NewInMemory creates a non-persistent index.
func NewInMemory(collection string) (*Index, error) {
	return newIndex(chromem.NewDB(), collection)
}

func newIndex(db *chromem.DB, collection string) (*Index, error) {
	if collection == "" {
		collection = DefaultCollection
	}

	col, err := db.GetOrCreateCollection(
		collection,
		nil, // No collection metadata
		nil, // No embedding func (the vault provides embeddings)
	)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %s: %w", collection, err)
	}

	return &Index{
		db:         db,
		collection: col,
	}, nil
}

// Add writes a batch of documents with precomputed embeddings.
//
// chromem-go persists documents one at a time, so the batch is checked up front to keep
// the failures we can predict from leaving part of it behind.
func (s *Index) Add(ctx context.Context, ids []string, embeddings [][]float32, documents []string, metadatas []map[string]string) error {
	if err := validateBatch(ids, embeddings, documents, metadatas); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log.FromCtx(ctx).Debug().Int("count", len(ids)).Msg("chromem: adding documents")

	if err := s.collection.Add(ctx, ids, embeddings, metadatas, documents); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

func validateBatch(ids []string, embeddings [][]float32, documents []string, metadatas []map[string]string) error {
	n := len(ids)
	if len(embeddings) != n || len(documents) != n || len(metadatas) != n {
		return fmt.Errorf("%w: %d ids, %d embeddings, %d documents, %d metadatas",
			ErrInvalidBatch, n, len(embeddings), len(documents), len(metadatas))
	}

	seen := make(map[string]struct{}, n)
	dims := 0
	for i, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty id at %d", ErrInvalidBatch, i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidBatch, id)
		}
		seen[id] = struct{}{}

		if len(embeddings[i]) == 0 {
			return fmt.Errorf("%w: empty embedding for %s", ErrInvalidBatch, id)
		}
		if i == 0 {
			dims = len(embeddings[i])
		} else if len(embeddings[i]) != dims {
			return fmt.Errorf("%w: %s has %d dimensions, want %d", ErrInvalidBatch, id, len(embeddings[i]), dims)
		}
	}
	return nil
}

// Query retrieves the k nearest documents, highest similarity first.
func (s *Index) Query(ctx context.Context, embedding []float32, k int) ([]memory.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// chromem-go rejects nResults larger than the collection.
	if n := s.collection.Count(); k > n {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	hits := make([]memory.Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, memory.Hit{
			ID:       r.ID,
			Document: r.Content,
			Metadata: r.Metadata,
			Distance: 1 - r.Similarity,
		})
	}

	log.FromCtx(ctx).Debug().Int("k", k).Int("hits", len(hits)).Msg("chromem: query complete")
	return hits, nil
}

// Count returns the number of documents in the collection.
func (s *Index) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection.Count(), nil
}

// Close releases resources.
func (s *Index) Close() error {
	// Persistent chromem DBs write through on every add; nothing to flush.
	return nil
}
