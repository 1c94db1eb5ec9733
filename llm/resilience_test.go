package llm

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/resilience"
	"github.com/lookatitude/beluga-ai/schema"
)

func TestWithRetry_SucceedsAfterOneFailure(t *testing.T) {
	backendErr := errors.New("connection reset")
	attempts := 0
	flaky := &stubModel{
		id: "flaky",
		generateFn: func(ctx context.Context, msgs []schema.Message, opts ...GenerateOption) (*schema.AIMessage, error) {
			attempts++
			if attempts == 1 {
				return nil, backendErr
			}
			return &schema.AIMessage{ModelID: "flaky"}, nil
		},
	}
	wrapped := ApplyMiddleware(flaky, WithRetry(resilience.RetryPolicy{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
	}))

	if _, err := wrapped.Generate(context.Background(), nil); err != nil {
		t.Fatalf("expected reconnect to succeed, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	backendErr := errors.New("connection reset")
	attempts := 0
	alwaysFails := &stubModel{
		id: "down",
		generateFn: func(ctx context.Context, msgs []schema.Message, opts ...GenerateOption) (*schema.AIMessage, error) {
			attempts++
			return nil, backendErr
		},
	}
	wrapped := ApplyMiddleware(alwaysFails, WithRetry(resilience.RetryPolicy{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
	}))

	if _, err := wrapped.Generate(context.Background(), nil); !errors.Is(err, backendErr) {
		t.Fatalf("expected backendErr after exhausting retries, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected exactly MaxAttempts calls, got %d", attempts)
	}
}

func TestWithRetry_StreamFailsBeforeFirstChunkIsRetried(t *testing.T) {
	backendErr := errors.New("connection reset")
	attempts := 0
	flaky := &stubModel{
		id: "flaky-stream",
		streamFn: func(ctx context.Context, msgs []schema.Message, opts ...GenerateOption) iter.Seq2[schema.StreamChunk, error] {
			attempts++
			if attempts == 1 {
				return func(yield func(schema.StreamChunk, error) bool) {
					yield(schema.StreamChunk{}, backendErr)
				}
			}
			return func(yield func(schema.StreamChunk, error) bool) {
				yield(schema.StreamChunk{Delta: "hi"}, nil)
			}
		},
	}
	wrapped := ApplyMiddleware(flaky, WithRetry(resilience.RetryPolicy{
		MaxAttempts:    2,
		InitialBackoff: time.Millisecond,
	}))

	var deltas []string
	for chunk, err := range wrapped.Stream(context.Background(), nil) {
		if err != nil {
			t.Fatalf("unexpected stream error after reconnect: %v", err)
		}
		deltas = append(deltas, chunk.Delta)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 stream attempts, got %d", attempts)
	}
	if len(deltas) == 0 || deltas[0] != "hi" {
		t.Fatalf("expected relayed chunk from the successful retry, got %v", deltas)
	}
}

func TestWithCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	backendErr := errors.New("provider down")
	failing := &stubModel{
		id: "failing",
		generateFn: func(ctx context.Context, msgs []schema.Message, opts ...GenerateOption) (*schema.AIMessage, error) {
			return nil, backendErr
		},
	}
	cb := resilience.NewCircuitBreaker(2, time.Minute)
	wrapped := ApplyMiddleware(failing, WithCircuitBreaker(cb))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := wrapped.Generate(ctx, nil); !errors.Is(err, backendErr) {
			t.Fatalf("call %d: expected backendErr, got %v", i, err)
		}
	}

	_, err := wrapped.Generate(ctx, nil)
	code, ok := ragcore.Code(err)
	if !ok || code != ragcore.ErrBackendUnavailable {
		t.Fatalf("expected ErrBackendUnavailable once open, got %v", err)
	}
}

func TestWithCircuitBreaker_PassesThroughOnSuccess(t *testing.T) {
	model := &stubModel{id: "ok"}
	cb := resilience.NewCircuitBreaker(5, time.Minute)
	wrapped := ApplyMiddleware(model, WithCircuitBreaker(cb))

	resp, err := wrapped.Generate(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp == nil {
		t.Fatal("expected non-nil response")
	}
}

func TestWithSuspendingRateLimit_AllowsWithinBudget(t *testing.T) {
	model := &stubModel{id: "limited"}
	rl := resilience.NewRateLimiter(resilience.ProviderLimits{RPM: 60, MaxConcurrent: 1})
	wrapped := ApplyMiddleware(model, WithSuspendingRateLimit(rl))

	if _, err := wrapped.Generate(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWithSuspendingRateLimit_CancelsOnContext(t *testing.T) {
	model := &stubModel{id: "limited"}
	rl := resilience.NewRateLimiter(resilience.ProviderLimits{RPM: 1, MaxConcurrent: 0})
	wrapped := ApplyMiddleware(model, WithSuspendingRateLimit(rl))

	// Exhaust the single RPM token, then cancel immediately so the second
	// call cannot suspend forever waiting for a refill.
	ctx := context.Background()
	if _, err := wrapped.Generate(ctx, nil); err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := wrapped.Generate(cancelCtx, nil); err == nil {
		t.Fatal("expected error from canceled context")
	}
}
