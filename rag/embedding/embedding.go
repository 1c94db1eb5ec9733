// Package embedding defines the Embedder interface that turns text into
// dense vectors for vectorstore indexing and search, plus the provider
// registry, hooks, and middleware used to configure and observe it.
package embedding

import "context"

// Embedder turns text into dense vectors. Dimensions reports the fixed
// length every vector Embed/EmbedSingle returns.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
