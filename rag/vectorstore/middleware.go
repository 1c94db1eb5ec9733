package vectorstore

import (
	"context"

	"github.com/lookatitude/beluga-ai/schema"
)

// Middleware wraps a VectorStore to add cross-cutting behavior.
type Middleware func(VectorStore) VectorStore

// ApplyMiddleware wraps store with each middleware in order: the first
// middleware given is the outermost wrapper, so it observes a call first
// and last.
func ApplyMiddleware(store VectorStore, mws ...Middleware) VectorStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// WithHooks returns a Middleware that invokes hooks around Add and
// Search. BeforeAdd can abort the call by returning an error; AfterSearch
// observes the result and error without changing them.
func WithHooks(hooks Hooks) Middleware {
	return func(next VectorStore) VectorStore {
		return &hookedStore{next: next, hooks: hooks}
	}
}

type hookedStore struct {
	next  VectorStore
	hooks Hooks
}

func (s *hookedStore) Add(ctx context.Context, docs []schema.Document, embeddings [][]float32) error {
	if s.hooks.BeforeAdd != nil {
		if err := s.hooks.BeforeAdd(ctx, docs); err != nil {
			return err
		}
	}
	return s.next.Add(ctx, docs, embeddings)
}

func (s *hookedStore) Search(ctx context.Context, query []float32, k int, opts ...SearchOption) ([]schema.Document, error) {
	results, err := s.next.Search(ctx, query, k, opts...)
	if s.hooks.AfterSearch != nil {
		s.hooks.AfterSearch(ctx, results, err)
	}
	return results, err
}

func (s *hookedStore) Delete(ctx context.Context, ids []string) error {
	return s.next.Delete(ctx, ids)
}
