package vectorstore

import (
	"context"

	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/resilience"
	"github.com/lookatitude/beluga-ai/schema"
)

// WithCircuitBreaker returns a Middleware that fails fast with a
// ragcore.ErrBackendUnavailable error once cb has tripped on repeated
// Add/Search/Delete failures, rather than paying the backend's own
// transport timeout on every call while it is down.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Middleware {
	return func(next VectorStore) VectorStore {
		return &breakerStore{next: next, cb: cb}
	}
}

type breakerStore struct {
	next VectorStore
	cb   *resilience.CircuitBreaker
}

func wrapBreakerErr(err error) error {
	if err == resilience.ErrCircuitOpen {
		return ragcore.New("vectorstore.circuitbreaker", ragcore.ErrBackendUnavailable, "vector store circuit open", err)
	}
	return err
}

func (s *breakerStore) Add(ctx context.Context, docs []schema.Document, embeddings [][]float32) error {
	_, err := s.cb.Execute(ctx, func(ctx context.Context) (any, error) {
		return nil, s.next.Add(ctx, docs, embeddings)
	})
	return wrapBreakerErr(err)
}

func (s *breakerStore) Search(ctx context.Context, query []float32, k int, opts ...SearchOption) ([]schema.Document, error) {
	result, err := s.cb.Execute(ctx, func(ctx context.Context) (any, error) {
		return s.next.Search(ctx, query, k, opts...)
	})
	if err != nil {
		return nil, wrapBreakerErr(err)
	}
	docs, _ := result.([]schema.Document)
	return docs, nil
}

func (s *breakerStore) Delete(ctx context.Context, ids []string) error {
	_, err := s.cb.Execute(ctx, func(ctx context.Context) (any, error) {
		return nil, s.next.Delete(ctx, ids)
	})
	return wrapBreakerErr(err)
}

// WithRetry returns a Middleware giving the vector store adapter its one
// transparent reconnect: on any transport failure, the call is retried once
// with backoff before the failure reaches the circuit breaker. Wire this
// innermost, closest to the real backend, so the breaker only ever sees a
// failure that already survived a reconnect attempt.
func WithRetry(policy resilience.RetryPolicy) Middleware {
	policy.Retryable = func(err error) bool { return err != nil }
	return func(next VectorStore) VectorStore {
		return &retryStore{next: next, policy: policy}
	}
}

type retryStore struct {
	next   VectorStore
	policy resilience.RetryPolicy
}

func (s *retryStore) Add(ctx context.Context, docs []schema.Document, embeddings [][]float32) error {
	_, err := resilience.Retry(ctx, s.policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.next.Add(ctx, docs, embeddings)
	})
	return err
}

func (s *retryStore) Search(ctx context.Context, query []float32, k int, opts ...SearchOption) ([]schema.Document, error) {
	return resilience.Retry(ctx, s.policy, func(ctx context.Context) ([]schema.Document, error) {
		return s.next.Search(ctx, query, k, opts...)
	})
}

func (s *retryStore) Delete(ctx context.Context, ids []string) error {
	_, err := resilience.Retry(ctx, s.policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.next.Delete(ctx, ids)
	})
	return err
}
