// Package inmemory implements a deterministic, hash-based
// embedding.Embedder with no external dependency, for tests and local
// development.
package inmemory

import (
	"context"
	"hash/fnv"

	"github.com/lookatitude/beluga-ai/config"
	"github.com/lookatitude/beluga-ai/rag/embedding"
)

const defaultDimensions = 128

func init() {
	embedding.Register("inmemory", func(cfg config.ProviderConfig) (embedding.Embedder, error) {
		dims := defaultDimensions
		if d, ok := config.GetOption[float64](cfg, "dimensions"); ok {
			dims = int(d)
		}
		return New(dims), nil
	})
}

// Embedder produces deterministic pseudo-random vectors derived from a
// text's hash. It carries no semantic meaning: it exists to exercise the
// Embedder contract (determinism, distinct texts, fixed dimensionality)
// without a network call.
type Embedder struct {
	dims int
}

// New creates an Embedder producing vectors of the given dimensionality.
func New(dims int) *Embedder {
	return &Embedder{dims: dims}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, text := range texts {
		vecs[i] = vectorFor(text, e.dims)
	}
	return vecs, nil
}

func (e *Embedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return vectorFor(text, e.dims), nil
}

func (e *Embedder) Dimensions() int {
	return e.dims
}

// vectorFor derives a deterministic unit-ish vector from text: each
// dimension is seeded from an FNV hash of the text and its index, so the
// same text always yields the same vector and different texts diverge.
func vectorFor(text string, dims int) []float32 {
	vec := make([]float32, dims)
	for i := 0; i < dims; i++ {
		h := fnv.New64a()
		h.Write([]byte(text))
		h.Write([]byte{byte(i), byte(i >> 8)})
		sum := h.Sum64()
		vec[i] = float32(sum%2000)/1000 - 1 // range [-1, 1)
	}
	return vec
}
