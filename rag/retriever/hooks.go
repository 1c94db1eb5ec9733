package retriever

import (
	"context"

	"github.com/lookatitude/beluga-ai/schema"
)

// Hooks observe a Retriever's Retrieve calls without changing the
// result, for logging, metrics, or tracing. Any hook left nil is
// skipped.
type Hooks struct {
	BeforeRetrieve func(ctx context.Context, query string) error
	AfterRetrieve  func(ctx context.Context, results []schema.Document, err error)
}

// ComposeHooks runs each hooks' BeforeRetrieve in order, stopping at the
// first error, and runs every hooks' AfterRetrieve in order.
func ComposeHooks(hooks ...Hooks) Hooks {
	return Hooks{
		BeforeRetrieve: func(ctx context.Context, query string) error {
			for _, h := range hooks {
				if h.BeforeRetrieve == nil {
					continue
				}
				if err := h.BeforeRetrieve(ctx, query); err != nil {
					return err
				}
			}
			return nil
		},
		AfterRetrieve: func(ctx context.Context, results []schema.Document, err error) {
			for _, h := range hooks {
				if h.AfterRetrieve == nil {
					continue
				}
				h.AfterRetrieve(ctx, results, err)
			}
		},
	}
}
