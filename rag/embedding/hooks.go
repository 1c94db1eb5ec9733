package embedding

import "context"

// Hooks observe an Embedder's Embed calls without changing the result,
// for logging, metrics, or tracing. Any hook left nil is skipped.
type Hooks struct {
	BeforeEmbed func(ctx context.Context, texts []string) error
	AfterEmbed  func(ctx context.Context, embeddings [][]float32, err error)
}

// ComposeHooks runs each hooks' BeforeEmbed in order, stopping at the
// first error, and runs every hooks' AfterEmbed in order.
func ComposeHooks(hooks ...Hooks) Hooks {
	return Hooks{
		BeforeEmbed: func(ctx context.Context, texts []string) error {
			for _, h := range hooks {
				if h.BeforeEmbed == nil {
					continue
				}
				if err := h.BeforeEmbed(ctx, texts); err != nil {
					return err
				}
			}
			return nil
		},
		AfterEmbed: func(ctx context.Context, embeddings [][]float32, err error) {
			for _, h := range hooks {
				if h.AfterEmbed == nil {
					continue
				}
				h.AfterEmbed(ctx, embeddings, err)
			}
		},
	}
}
