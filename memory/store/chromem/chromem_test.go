package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_AddQueryCount(t *testing.T) {
	ctx := context.Background()
	idx, err := NewInMemory("")
	require.NoError(t, err)

	err = idx.Add(ctx,
		[]string{"memory_0", "memory_1"},
		[][]float32{{1, 0}, {0, 1}},
		[]string{"east", "north"},
		[]map[string]string{{"filename": "a.txt"}, {"filename": "b.txt"}},
	)
	require.NoError(t, err)

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	hits, err := idx.Query(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "memory_0", hits[0].ID)
	assert.Equal(t, "east", hits[0].Document)
	assert.Equal(t, "a.txt", hits[0].Metadata["filename"])
	assert.InDelta(t, 0, hits[0].Distance, 1e-5)
	assert.InDelta(t, 1, hits[1].Distance, 1e-5)
}

func TestIndex_QueryEmpty(t *testing.T) {
	idx, err := NewInMemory("memories")
	require.NoError(t, err)

	hits, err := idx.Query(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	idx, err := Open(dir, "memories", false)
	require.NoError(t, err)
	require.NoError(t, idx.Add(ctx,
		[]string{"memory_0"},
		[][]float32{{0.6, 0.8}},
		[]string{"kept"},
		[]map[string]string{{"source_type": "text"}},
	))
	require.NoError(t, idx.Close())

	reopened, err := Open(dir, "memories", false)
	require.NoError(t, err)

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := reopened.Query(ctx, []float32{0.6, 0.8}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "kept", hits[0].Document)
}

func TestIndex_AddRejectsInvalidBatchWithoutWriting(t *testing.T) {
	ctx := context.Background()

	cases := map[string]struct {
		ids        []string
		embeddings [][]float32
	}{
		"length mismatch":    {ids: []string{"memory_0", "memory_1"}, embeddings: [][]float32{{1, 0}}},
		"empty id":           {ids: []string{"memory_0", ""}, embeddings: [][]float32{{1, 0}, {0, 1}}},
		"duplicate id":       {ids: []string{"memory_0", "memory_0"}, embeddings: [][]float32{{1, 0}, {0, 1}}},
		"empty embedding":    {ids: []string{"memory_0", "memory_1"}, embeddings: [][]float32{{1, 0}, {}}},
		"dimension mismatch": {ids: []string{"memory_0", "memory_1"}, embeddings: [][]float32{{1, 0}, {0, 0, 1}}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			idx, err := Open(t.TempDir(), "memories", false)
			require.NoError(t, err)

			documents := make([]string, len(tc.ids))
			metadatas := make([]map[string]string, len(tc.ids))

			err = idx.Add(ctx, tc.ids, tc.embeddings, documents, metadatas)
			assert.ErrorIs(t, err, ErrInvalidBatch)

			count, err := idx.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}
