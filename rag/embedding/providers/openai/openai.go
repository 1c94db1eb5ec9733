// Package openai implements the embedding.Embedder interface against the
// OpenAI embeddings API.
package openai

import (
	"context"
	"fmt"

	openaisdk "github.com/sashabaranov/go-openai"

	"github.com/lookatitude/beluga-ai/config"
	"github.com/lookatitude/beluga-ai/rag/embedding"
)

const defaultModel = "text-embedding-3-small"

func init() {
	embedding.Register("openai", func(cfg config.ProviderConfig) (embedding.Embedder, error) {
		return New(cfg)
	})
}

// Embedder calls the OpenAI embeddings endpoint.
type Embedder struct {
	client *openaisdk.Client
	model  string
	dims   int
}

// New creates an Embedder from cfg. cfg.APIKey is required; cfg.Model
// defaults to text-embedding-3-small. The dimensions option, if set,
// requests a truncated embedding size (supported by the v3 models).
func New(cfg config.ProviderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding/openai: API key is required")
	}

	clientCfg := openaisdk.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	dims := 1536
	if d, ok := config.GetOption[float64](cfg, "dimensions"); ok {
		dims = int(d)
	}

	return &Embedder{
		client: openaisdk.NewClientWithConfig(clientCfg),
		model:  model,
		dims:   dims,
	}, nil
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	req := openaisdk.EmbeddingRequestConverter(openaisdk.EmbeddingRequest{
		Input:      texts,
		Model:      openaisdk.EmbeddingModel(e.model),
		Dimensions: e.dims,
	})

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("embedding/openai: create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding/openai: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

func (e *Embedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *Embedder) Dimensions() int {
	return e.dims
}
