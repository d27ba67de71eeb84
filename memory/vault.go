package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/becomeliminal/memory-vault/core"
	"github.com/becomeliminal/memory-vault/log"
)

// ErrInvalidLimit is returned when a search asks for fewer than one result.
var ErrInvalidLimit = errors.New("search limit must be positive")

// ErrCorruptEntry is returned when a stored memory's metadata cannot be decoded.
var ErrCorruptEntry = errors.New("corrupt index entry")

// IDPrefix prefixes every memory id.
const IDPrefix = "memory_"

// Vault is the Memory Store. It owns embedding generation and id assignment on top of an Index.
//
// All AddBatch calls are serialized: the count read, id assignment and index write happen
// under one writer lock. Searches share a read lock, so results never include part of a batch.
type Vault struct {
	index    Index
	embedder Embedder // Internal: callers only see records and results
	mu       sync.RWMutex
}

// NewVault creates a Vault over the given index and embedder.
func NewVault(index Index, embedder Embedder) *Vault {
	return &Vault{
		index:    index,
		embedder: embedder,
	}
}

// MemoryID formats the id of the n-th memory.
func MemoryID(n int) string {
	return fmt.Sprintf("%s%d", IDPrefix, n)
}

// AddBatch embeds and stores records with consecutive ids continuing from the current count.
func (v *Vault) AddBatch(ctx context.Context, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}

	logger := log.Component(ctx, "vault")

	v.mu.Lock()
	defer v.mu.Unlock()

	existing, err := v.index.Count(ctx)
	if err != nil {
		// An uninitialized index must still accept its first batch.
		logger.Warn().Err(err).Msg("count lookup failed, assigning ids from zero")
		existing = 0
	}

	ids := make([]string, len(records))
	embeddings := make([][]float32, len(records))
	documents := make([]string, len(records))
	metadatas := make([]map[string]string, len(records))

	for i, rec := range records {
		embedding, err := v.embedder.Embed(ctx, rec.Content)
		if err != nil {
			return fmt.Errorf("embed %s: %w", rec.Filename, err)
		}

		ids[i] = MemoryID(existing + i)
		embeddings[i] = embedding
		documents[i] = rec.Content
		metadatas[i] = EncodeMetadata(rec)
	}

	if err := v.index.Add(ctx, ids, embeddings, documents, metadatas); err != nil {
		return fmt.Errorf("add to index: %w", err)
	}

	logger.Info().
		Int("count", len(records)).
		Str("first_id", ids[0]).
		Str("last_id", ids[len(ids)-1]).
		Msg("stored memories")

	return nil
}

// Search returns up to k memories nearest to query, best match first.
// An empty vault yields an empty slice and no error.
func (v *Vault) Search(ctx context.Context, query string, k int) ([]core.Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, k)
	}

	logger := log.Component(ctx, "vault")

	v.mu.RLock()
	defer v.mu.RUnlock()

	count, err := v.index.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count index: %w", err)
	}
	if count == 0 {
		logger.Debug().Msg("vault is empty")
		return []core.Result{}, nil
	}
	if k > count {
		k = count
	}

	embedding, err := v.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := v.index.Query(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	results := make([]core.Result, 0, len(hits))
	for _, hit := range hits {
		rec, err := DecodeMetadata(hit.Document, hit.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %w", ErrCorruptEntry, hit.ID, err)
		}
		results = append(results, core.Result{
			ID:       hit.ID,
			Content:  hit.Document,
			Record:   rec,
			Distance: hit.Distance,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > k {
		results = results[:k]
	}

	logger.Debug().
		Int("k", k).
		Int("results", len(results)).
		Str("query", truncateLog(query, 50)).
		Msg("retrieved memories")

	return results, nil
}

// Count returns the number of stored memories.
func (v *Vault) Count(ctx context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.index.Count(ctx)
}

// Close releases the underlying index.
func (v *Vault) Close() error {
	return v.index.Close()
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
