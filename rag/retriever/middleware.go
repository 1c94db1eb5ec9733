package retriever

import (
	"context"

	"github.com/lookatitude/beluga-ai/schema"
)

// Middleware wraps a Retriever to add cross-cutting behavior.
type Middleware func(Retriever) Retriever

// ApplyMiddleware wraps r with each middleware in order: the first
// middleware given is the outermost wrapper, so it observes a call first
// and last.
func ApplyMiddleware(r Retriever, mws ...Middleware) Retriever {
	for i := len(mws) - 1; i >= 0; i-- {
		r = mws[i](r)
	}
	return r
}

// WithHooks returns a Middleware that invokes hooks around Retrieve.
// BeforeRetrieve can abort the call by returning an error; AfterRetrieve
// observes the result and error without changing them.
func WithHooks(hooks Hooks) Middleware {
	return func(next Retriever) Retriever {
		return &hookedRetriever{next: next, hooks: hooks}
	}
}

type hookedRetriever struct {
	next  Retriever
	hooks Hooks
}

func (r *hookedRetriever) Retrieve(ctx context.Context, query string, opts ...Option) ([]schema.Document, error) {
	if r.hooks.BeforeRetrieve != nil {
		if err := r.hooks.BeforeRetrieve(ctx, query); err != nil {
			return nil, err
		}
	}
	docs, err := r.next.Retrieve(ctx, query, opts...)
	if r.hooks.AfterRetrieve != nil {
		r.hooks.AfterRetrieve(ctx, docs, err)
	}
	return docs, err
}
