package mock

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
)

// DefaultDimensions matches all-MiniLM-L6-v2.
const DefaultDimensions = 384

// Embedder is a deterministic embedder for tests and offline runs.
// Identical text always maps to the identical unit vector; it carries no semantics.
type Embedder struct {
	dimensions int
}

// New creates a mock embedder. dims <= 0 selects DefaultDimensions.
func New(dims int) *Embedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dimensions: dims}
}

// Embed draws a gaussian vector from a generator seeded by the text and scales it to unit
// length, which spreads distinct texts evenly over the sphere.
func (m *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(seeds(text)))

	raw := make([]float64, m.dimensions)
	var sum float64
	for i := range raw {
		raw[i] = rng.NormFloat64()
		sum += raw[i] * raw[i]
	}
	norm := math.Sqrt(sum)

	vec := make([]float32, m.dimensions)
	for i, v := range raw {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

// Dimensions returns the embedding size.
func (m *Embedder) Dimensions() int {
	return m.dimensions
}

// seeds derives the two PCG seed words from text.
func seeds(text string) (uint64, uint64) {
	h := fnv.New128a()
	h.Write([]byte(text))
	sum := h.Sum(nil)

	var hi, lo uint64
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(sum[i])
		lo = lo<<8 | uint64(sum[8+i])
	}
	return hi, lo
}
