package vectorstore

import (
	"context"

	"github.com/lookatitude/beluga-ai/schema"
)

// Hooks observe a VectorStore's Add/Search calls without changing their
// result, for logging, metrics, or tracing. Any hook left nil is skipped.
type Hooks struct {
	BeforeAdd   func(ctx context.Context, docs []schema.Document) error
	AfterSearch func(ctx context.Context, results []schema.Document, err error)
}

// ComposeHooks runs each hooks' BeforeAdd in order, stopping at the first
// error, and runs every hooks' AfterSearch in order.
func ComposeHooks(hooks ...Hooks) Hooks {
	return Hooks{
		BeforeAdd: func(ctx context.Context, docs []schema.Document) error {
			for _, h := range hooks {
				if h.BeforeAdd == nil {
					continue
				}
				if err := h.BeforeAdd(ctx, docs); err != nil {
					return err
				}
			}
			return nil
		},
		AfterSearch: func(ctx context.Context, results []schema.Document, err error) {
			for _, h := range hooks {
				if h.AfterSearch == nil {
					continue
				}
				h.AfterSearch(ctx, results, err)
			}
		},
	}
}
