package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// CacheStore is the narrow slice of cache.Cache the caching middleware
// depends on.
type CacheStore interface {
	Get(ctx context.Context, key string) (any, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// WithCaching returns a Middleware that memoizes EmbedSingle results by the
// text's content hash, so re-embedding the same advisory passage across
// index rebuilds or repeated queries skips the provider round trip. Embed
// batches are served one cached lookup at a time and fall through to the
// wrapped Embedder for any miss; entries expire after ttl, or never if ttl
// is zero.
func WithCaching(store CacheStore, ttl time.Duration) Middleware {
	return func(next Embedder) Embedder {
		return &cachingEmbedder{next: next, store: store, ttl: ttl}
	}
}

type cachingEmbedder struct {
	next  Embedder
	store CacheStore
	ttl   time.Duration
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embed:" + hex.EncodeToString(sum[:])
}

// asVector recovers a []float32 from a cache hit. A backend that round-trips
// the value through Go's own type system (the inmemory provider) hands back
// the original []float32; one that JSON-encodes it (the redis provider)
// hands back []any of float64, since JSON has no float32/float64
// distinction, so both shapes are accepted.
func asVector(v any) ([]float32, bool) {
	switch vec := v.(type) {
	case []float32:
		return vec, true
	case []any:
		out := make([]float32, len(vec))
		for i, x := range vec {
			f, ok := x.(float64)
			if !ok {
				return nil, false
			}
			out[i] = float32(f)
		}
		return out, true
	default:
		return nil, false
	}
}

func (e *cachingEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(text)
	if v, ok, err := e.store.Get(ctx, key); err == nil && ok {
		if vec, ok := asVector(v); ok {
			return vec, nil
		}
	}
	vec, err := e.next.EmbedSingle(ctx, text)
	if err != nil {
		return nil, err
	}
	_ = e.store.Set(ctx, key, vec, e.ttl)
	return vec, nil
}

// Embed looks each text up individually so a partial cache hit still only
// pays the provider round trip for the misses, preserving input order in
// the result.
func (e *cachingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int

	for i, t := range texts {
		key := cacheKey(t)
		if v, ok, err := e.store.Get(ctx, key); err == nil && ok {
			if vec, ok := asVector(v); ok {
				vecs[i] = vec
				continue
			}
		}
		missTexts = append(missTexts, t)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return vecs, nil
	}

	missVecs, err := e.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		vecs[idx] = missVecs[j]
		_ = e.store.Set(ctx, cacheKey(missTexts[j]), missVecs[j], e.ttl)
	}
	return vecs, nil
}

func (e *cachingEmbedder) Dimensions() int {
	return e.next.Dimensions()
}
