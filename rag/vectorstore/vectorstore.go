// Package vectorstore defines the adapter interface retrievers use to add
// and search embedded documents, independent of the backing store: an
// in-process index for tests and small corpora, or a durable backend
// reached over the network in production.
package vectorstore

import (
	"context"

	"github.com/lookatitude/beluga-ai/schema"
)

// VectorStore adds embedded documents and searches them by vector
// similarity. Implementations own their own persistence; callers are
// responsible for generating embeddings beforehand.
type VectorStore interface {
	Add(ctx context.Context, docs []schema.Document, embeddings [][]float32) error
	Search(ctx context.Context, query []float32, k int, opts ...SearchOption) ([]schema.Document, error)
	Delete(ctx context.Context, ids []string) error
}

// SearchStrategy selects the similarity measure a Search call ranks by.
type SearchStrategy int

const (
	Cosine SearchStrategy = iota
	DotProduct
	Euclidean
)

func (s SearchStrategy) String() string {
	switch s {
	case Cosine:
		return "cosine"
	case DotProduct:
		return "dot_product"
	case Euclidean:
		return "euclidean"
	default:
		return "unknown"
	}
}

// SearchConfig holds the options a Search call was given.
type SearchConfig struct {
	Filter    map[string]any
	Threshold float64
	Strategy  SearchStrategy
}

// SearchOption mutates a SearchConfig. Options apply in call order.
type SearchOption func(*SearchConfig)

// WithFilter restricts results to documents whose Metadata matches every
// key/value pair in filter.
func WithFilter(filter map[string]any) SearchOption {
	return func(c *SearchConfig) { c.Filter = filter }
}

// WithThreshold drops results whose similarity score falls below min.
func WithThreshold(min float64) SearchOption {
	return func(c *SearchConfig) { c.Threshold = min }
}

// WithStrategy selects the similarity measure to rank by. The default is
// Cosine.
func WithStrategy(s SearchStrategy) SearchOption {
	return func(c *SearchConfig) { c.Strategy = s }
}
