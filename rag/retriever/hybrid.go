package retriever

import (
	"context"
	"fmt"

	"github.com/lookatitude/beluga-ai/rag/embedding"
	"github.com/lookatitude/beluga-ai/rag/vectorstore"
	"github.com/lookatitude/beluga-ai/schema"
)

// minCandidates is the floor on how many candidates each ranker fetches
// before fusion, regardless of the caller's requested TopK: fusion needs
// enough overlap between rankers to be meaningful.
const minCandidates = 20

// HybridOption configures a HybridRetriever.
type HybridOption func(*HybridRetriever)

// WithHybridRRFK overrides the reciprocal-rank-fusion k constant
// (default 60). Zero or negative values are ignored.
func WithHybridRRFK(k int) HybridOption {
	return func(h *HybridRetriever) {
		if k > 0 {
			h.rrf = NewRRFStrategy(k)
		}
	}
}

// WithHybridHooks attaches observability hooks to the retriever.
func WithHybridHooks(hooks Hooks) HybridOption {
	return func(h *HybridRetriever) { h.hooks = hooks }
}

// HybridRetriever combines a dense vector search and a lexical BM25
// search for the same query, fused by reciprocal rank fusion. This is
// the per-domain retrieval strategy: one HybridRetriever is bound to a
// single domain's vector collection and lexical index.
type HybridRetriever struct {
	store    vectorstore.VectorStore
	embedder embedding.Embedder
	bm25     BM25Searcher
	rrf      *RRFStrategy
	hooks    Hooks
}

// NewHybridRetriever creates a HybridRetriever over store/embedder
// (dense) and bm25 (lexical).
func NewHybridRetriever(store vectorstore.VectorStore, embedder embedding.Embedder, bm25 BM25Searcher, opts ...HybridOption) *HybridRetriever {
	h := &HybridRetriever{
		store:    store,
		embedder: embedder,
		bm25:     bm25,
		rrf:      NewRRFStrategy(60),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HybridRetriever) Retrieve(ctx context.Context, query string, opts ...Option) ([]schema.Document, error) {
	if h.hooks.BeforeRetrieve != nil {
		if err := h.hooks.BeforeRetrieve(ctx, query); err != nil {
			return nil, err
		}
	}

	docs, err := h.retrieve(ctx, query, opts...)
	if h.hooks.AfterRetrieve != nil {
		h.hooks.AfterRetrieve(ctx, docs, err)
	}
	return docs, err
}

func (h *HybridRetriever) retrieve(ctx context.Context, query string, opts ...Option) ([]schema.Document, error) {
	cfg := ApplyOptions(opts...)

	kFetch := cfg.TopK * 2
	if kFetch < minCandidates {
		kFetch = minCandidates
	}

	vec, err := h.embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retriever: hybrid embed: %w", err)
	}

	var searchOpts []vectorstore.SearchOption
	if cfg.Metadata != nil {
		searchOpts = append(searchOpts, vectorstore.WithFilter(cfg.Metadata))
	}
	if cfg.Threshold > 0 {
		searchOpts = append(searchOpts, vectorstore.WithThreshold(cfg.Threshold))
	}

	denseDocs, err := h.store.Search(ctx, vec, kFetch, searchOpts...)
	if err != nil {
		return nil, fmt.Errorf("retriever: hybrid vector search: %w", err)
	}

	lexicalDocs, err := h.bm25.Search(ctx, query, kFetch)
	if err != nil {
		return nil, fmt.Errorf("retriever: hybrid bm25 search: %w", err)
	}

	fused, err := h.rrf.Fuse(ctx, [][]schema.Document{denseDocs, lexicalDocs})
	if err != nil {
		return nil, err
	}

	if cfg.TopK > 0 && len(fused) > cfg.TopK {
		fused = fused[:cfg.TopK]
	}
	return fused, nil
}
