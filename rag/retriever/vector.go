package retriever

import (
	"context"

	"github.com/lookatitude/beluga-ai/rag/embedding"
	"github.com/lookatitude/beluga-ai/rag/vectorstore"
	"github.com/lookatitude/beluga-ai/schema"
)

// VectorStoreRetriever is the dense half of a hybrid retriever: it
// embeds the query and searches a vectorstore.VectorStore by cosine
// similarity.
type VectorStoreRetriever struct {
	embedder embedding.Embedder
	store    vectorstore.VectorStore
}

// NewVectorStoreRetriever creates a VectorStoreRetriever over store,
// embedding queries with embedder.
func NewVectorStoreRetriever(embedder embedding.Embedder, store vectorstore.VectorStore) *VectorStoreRetriever {
	return &VectorStoreRetriever{embedder: embedder, store: store}
}

func (r *VectorStoreRetriever) Retrieve(ctx context.Context, query string, opts ...Option) ([]schema.Document, error) {
	cfg := ApplyOptions(opts...)

	vec, err := r.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, err
	}

	var searchOpts []vectorstore.SearchOption
	if cfg.Threshold > 0 {
		searchOpts = append(searchOpts, vectorstore.WithThreshold(cfg.Threshold))
	}
	if cfg.Metadata != nil {
		searchOpts = append(searchOpts, vectorstore.WithFilter(cfg.Metadata))
	}

	return r.store.Search(ctx, vec, cfg.TopK, searchOpts...)
}
