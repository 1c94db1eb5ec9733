package retriever

import (
	"context"
	"fmt"

	"github.com/lookatitude/beluga-ai/schema"
)

// EnsembleRetriever queries several Retrievers for the same query and
// fuses their result sets with a FusionStrategy. A nil strategy defaults
// to reciprocal rank fusion with k=60.
type EnsembleRetriever struct {
	retrievers []Retriever
	strategy   FusionStrategy
}

// NewEnsembleRetriever creates an EnsembleRetriever over retrievers,
// fused by strategy.
func NewEnsembleRetriever(retrievers []Retriever, strategy FusionStrategy) *EnsembleRetriever {
	if strategy == nil {
		strategy = NewRRFStrategy(60)
	}
	return &EnsembleRetriever{retrievers: retrievers, strategy: strategy}
}

func (e *EnsembleRetriever) Retrieve(ctx context.Context, query string, opts ...Option) ([]schema.Document, error) {
	cfg := ApplyOptions(opts...)

	sets := make([][]schema.Document, len(e.retrievers))
	for i, r := range e.retrievers {
		docs, err := r.Retrieve(ctx, query, opts...)
		if err != nil {
			return nil, fmt.Errorf("retriever: ensemble member %d: %w", i, err)
		}
		sets[i] = docs
	}

	fused, err := e.strategy.Fuse(ctx, sets)
	if err != nil {
		return nil, err
	}

	if cfg.TopK > 0 && len(fused) > cfg.TopK {
		fused = fused[:cfg.TopK]
	}
	return fused, nil
}
