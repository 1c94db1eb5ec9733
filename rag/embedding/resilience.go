package embedding

import (
	"context"

	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/resilience"
)

// WithCircuitBreaker returns a Middleware that fails fast with a
// ragcore.ErrBackendUnavailable error once cb has tripped on repeated
// embedding failures.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Middleware {
	return func(next Embedder) Embedder {
		return &breakerEmbedder{next: next, cb: cb}
	}
}

type breakerEmbedder struct {
	next Embedder
	cb   *resilience.CircuitBreaker
}

func wrapBreakerErr(err error) error {
	if err == resilience.ErrCircuitOpen {
		return ragcore.New("embedding.circuitbreaker", ragcore.ErrBackendUnavailable, "embedding service circuit open", err)
	}
	return err
}

func (e *breakerEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := e.cb.Execute(ctx, func(ctx context.Context) (any, error) {
		return e.next.Embed(ctx, texts)
	})
	if err != nil {
		return nil, wrapBreakerErr(err)
	}
	vecs, _ := result.([][]float32)
	return vecs, nil
}

func (e *breakerEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	result, err := e.cb.Execute(ctx, func(ctx context.Context) (any, error) {
		return e.next.EmbedSingle(ctx, text)
	})
	if err != nil {
		return nil, wrapBreakerErr(err)
	}
	vec, _ := result.([]float32)
	return vec, nil
}

func (e *breakerEmbedder) Dimensions() int { return e.next.Dimensions() }

// WithRetry returns a Middleware giving the embedding adapter its one
// transparent reconnect: on any transport failure, the call is retried once
// with backoff before the failure reaches the circuit breaker. Wire this
// innermost, closest to the real backend, so the breaker only ever sees a
// failure that already survived a reconnect attempt.
func WithRetry(policy resilience.RetryPolicy) Middleware {
	policy.Retryable = func(err error) bool { return err != nil }
	return func(next Embedder) Embedder {
		return &retryEmbedder{next: next, policy: policy}
	}
}

type retryEmbedder struct {
	next   Embedder
	policy resilience.RetryPolicy
}

func (e *retryEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return resilience.Retry(ctx, e.policy, func(ctx context.Context) ([][]float32, error) {
		return e.next.Embed(ctx, texts)
	})
}

func (e *retryEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return resilience.Retry(ctx, e.policy, func(ctx context.Context) ([]float32, error) {
		return e.next.EmbedSingle(ctx, text)
	})
}

func (e *retryEmbedder) Dimensions() int { return e.next.Dimensions() }

// WithSuspendingRateLimit returns a Middleware backed by a
// resilience.RateLimiter: Embed/EmbedSingle calls suspend until a token is
// available or ctx is canceled, rather than failing immediately, matching
// the "a task suspends, it does not fail" budget semantics for the
// embedding service.
func WithSuspendingRateLimit(rl *resilience.RateLimiter) Middleware {
	return func(next Embedder) Embedder {
		return &suspendingRateLimitedEmbedder{next: next, rl: rl}
	}
}

type suspendingRateLimitedEmbedder struct {
	next Embedder
	rl   *resilience.RateLimiter
}

func (e *suspendingRateLimitedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.rl.Allow(ctx); err != nil {
		return nil, err
	}
	defer e.rl.Release()
	return e.next.Embed(ctx, texts)
}

func (e *suspendingRateLimitedEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	if err := e.rl.Allow(ctx); err != nil {
		return nil, err
	}
	defer e.rl.Release()
	return e.next.EmbedSingle(ctx, text)
}

func (e *suspendingRateLimitedEmbedder) Dimensions() int { return e.next.Dimensions() }
