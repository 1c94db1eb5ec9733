// Package retriever fetches relevant documents for a query: a dense
// nearest-neighbor search over a vector store, a lexical BM25 search, and
// reciprocal-rank fusion over both, plus the registry, hooks, and
// middleware used to configure and observe a Retriever.
package retriever

import (
	"context"

	"github.com/lookatitude/beluga-ai/schema"
)

// Retriever fetches documents relevant to query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, opts ...Option) ([]schema.Document, error)
}

// BM25Searcher is the lexical half of a hybrid retriever.
type BM25Searcher interface {
	Search(ctx context.Context, query string, k int) ([]schema.Document, error)
}

// WebSearcher is an external fallback search used when retrieved context
// proves insufficient.
type WebSearcher interface {
	Search(ctx context.Context, query string, k int) ([]schema.Document, error)
}

// Config holds the options a Retrieve call was given.
type Config struct {
	TopK      int
	Threshold float64
	Metadata  map[string]any
}

// Option mutates a Config. Options apply in call order.
type Option func(*Config)

// ApplyOptions builds a Config from opts, starting from the defaults
// (TopK=10, Threshold=0).
func ApplyOptions(opts ...Option) Config {
	cfg := Config{TopK: 10}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTopK sets how many documents Retrieve should return.
func WithTopK(k int) Option {
	return func(c *Config) { c.TopK = k }
}

// WithThreshold drops results whose similarity score falls below min.
func WithThreshold(min float64) Option {
	return func(c *Config) { c.Threshold = min }
}

// WithMetadata attaches caller-defined metadata to the search, for
// providers that support structured filtering.
func WithMetadata(md map[string]any) Option {
	return func(c *Config) { c.Metadata = md }
}
