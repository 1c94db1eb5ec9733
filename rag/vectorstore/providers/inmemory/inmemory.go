// Package inmemory implements an in-process vectorstore.VectorStore backed
// by a plain slice, for tests and small corpora.
package inmemory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/lookatitude/beluga-ai/config"
	"github.com/lookatitude/beluga-ai/rag/vectorstore"
	"github.com/lookatitude/beluga-ai/schema"
)

func init() {
	vectorstore.Register("inmemory", func(cfg config.ProviderConfig) (vectorstore.VectorStore, error) {
		return New(), nil
	})
}

type entry struct {
	doc       schema.Document
	embedding []float32
}

// Store is an in-memory VectorStore. The zero value is not usable; use
// New.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty Store.
func New() *Store {
	return &Store{entries: make(map[string]entry)}
}

func (s *Store) Add(ctx context.Context, docs []schema.Document, embeddings [][]float32) error {
	if len(docs) != len(embeddings) {
		return fmt.Errorf("vectorstore/inmemory: docs and embeddings length mismatch: %d != %d", len(docs), len(embeddings))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range docs {
		s.entries[doc.ID] = entry{doc: doc, embedding: embeddings[i]}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, query []float32, k int, opts ...vectorstore.SearchOption) ([]schema.Document, error) {
	cfg := &vectorstore.SearchConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	s.mu.RLock()
	candidates := make([]entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !matchesFilter(e.doc.Metadata, cfg.Filter) {
			continue
		}
		candidates = append(candidates, e)
	}
	s.mu.RUnlock()

	scored := make([]schema.Document, 0, len(candidates))
	for _, e := range candidates {
		score := score(cfg.Strategy, query, e.embedding)
		if score < cfg.Threshold {
			continue
		}
		doc := e.doc
		doc.Score = score
		scored = append(scored, doc)
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

func (s *Store) Delete(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.entries, id)
	}
	return nil
}

func matchesFilter(metadata map[string]any, filter map[string]any) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

func score(strategy vectorstore.SearchStrategy, a, b []float32) float64 {
	switch strategy {
	case vectorstore.DotProduct:
		return dotProduct(a, b)
	case vectorstore.Euclidean:
		return 1 / (1 + euclideanDistance(a, b))
	default:
		return cosineSimilarity(a, b)
	}
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func cosineSimilarity(a, b []float32) float64 {
	dot := dotProduct(a, b)
	normA := math.Sqrt(dotProduct(a, a))
	normB := math.Sqrt(dotProduct(b, b))
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (normA * normB)
}

func euclideanDistance(a, b []float32) float64 {
	var sum float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
