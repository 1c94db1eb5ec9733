package embedding_test

import (
	"context"
	"testing"
	"time"

	"github.com/lookatitude/beluga-ai/config"
	"github.com/lookatitude/beluga-ai/rag/embedding"
)

// countingStore is a minimal in-memory embedding.CacheStore that counts Set
// calls, so tests can assert the wrapped embedder was only invoked on miss.
type countingStore struct {
	entries map[string]any
	sets    int
}

func newCountingStore() *countingStore {
	return &countingStore{entries: make(map[string]any)}
}

func (s *countingStore) Get(_ context.Context, key string) (any, bool, error) {
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *countingStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.entries[key] = value
	s.sets++
	return nil
}

func TestWithCaching_EmbedSingle(t *testing.T) {
	emb, _ := embedding.New("inmemory", config.ProviderConfig{})
	store := newCountingStore()
	wrapped := embedding.ApplyMiddleware(emb, embedding.WithCaching(store, time.Minute))
	ctx := context.Background()

	v1, err := wrapped.EmbedSingle(ctx, "창업 자금 조달")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.sets != 1 {
		t.Fatalf("expected 1 cache write after first call, got %d", store.sets)
	}

	v2, err := wrapped.EmbedSingle(ctx, "창업 자금 조달")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.sets != 1 {
		t.Fatalf("expected no additional cache write on hit, got %d sets", store.sets)
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("cached vector diverged at index %d: %f != %f", i, v1[i], v2[i])
		}
	}
}

func TestWithCaching_Embed_PartialHit(t *testing.T) {
	emb, _ := embedding.New("inmemory", config.ProviderConfig{})
	store := newCountingStore()
	wrapped := embedding.ApplyMiddleware(emb, embedding.WithCaching(store, 0))
	ctx := context.Background()

	if _, err := wrapped.EmbedSingle(ctx, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.sets != 1 {
		t.Fatalf("expected 1 cache write, got %d", store.sets)
	}

	vecs, err := wrapped.Embed(ctx, []string{"hello", "world"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vecs))
	}
	if store.sets != 2 {
		t.Fatalf("expected only the miss (\"world\") to write through, got %d sets", store.sets)
	}
}

func TestWithCaching_DimensionsPassthrough(t *testing.T) {
	emb, _ := embedding.New("inmemory", config.ProviderConfig{})
	wrapped := embedding.ApplyMiddleware(emb, embedding.WithCaching(newCountingStore(), time.Minute))
	if wrapped.Dimensions() != emb.Dimensions() {
		t.Fatalf("dimensions mismatch: %d != %d", wrapped.Dimensions(), emb.Dimensions())
	}
}
