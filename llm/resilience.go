package llm

import (
	"context"
	"iter"

	"github.com/lookatitude/beluga-ai/ragcore"
	"github.com/lookatitude/beluga-ai/resilience"
	"github.com/lookatitude/beluga-ai/schema"
)

// WithCircuitBreaker returns a Middleware that fails fast with a
// ragcore.ErrBackendUnavailable error once cb has tripped, instead of
// letting every call pay the provider's own timeout. Streaming calls trip
// the breaker on the first chunk error, since a stream that never starts
// and a stream that dies mid-token are both provider failures.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) Middleware {
	return func(next ChatModel) ChatModel {
		return &breakerModel{next: next, cb: cb}
	}
}

type breakerModel struct {
	next ChatModel
	cb   *resilience.CircuitBreaker
}

func (m *breakerModel) Generate(ctx context.Context, msgs []schema.Message, opts ...GenerateOption) (*schema.AIMessage, error) {
	result, err := m.cb.Execute(ctx, func(ctx context.Context) (any, error) {
		return m.next.Generate(ctx, msgs, opts...)
	})
	if err == resilience.ErrCircuitOpen {
		return nil, ragcore.New("llm.circuitbreaker", ragcore.ErrBackendUnavailable, "provider circuit open", err)
	}
	if err != nil {
		return nil, err
	}
	msg, _ := result.(*schema.AIMessage)
	return msg, nil
}

func (m *breakerModel) Stream(ctx context.Context, msgs []schema.Message, opts ...GenerateOption) iter.Seq2[schema.StreamChunk, error] {
	if m.cb.State() == resilience.StateOpen {
		return func(yield func(schema.StreamChunk, error) bool) {
			yield(schema.StreamChunk{}, ragcore.New("llm.circuitbreaker", ragcore.ErrBackendUnavailable, "provider circuit open", resilience.ErrCircuitOpen))
		}
	}
	inner := m.next.Stream(ctx, msgs, opts...)
	return func(yield func(schema.StreamChunk, error) bool) {
		failed := false
		for chunk, err := range inner {
			if err != nil {
				failed = true
				yield(chunk, err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
		if failed {
			m.cb.Execute(context.Background(), func(context.Context) (any, error) { return nil, resilience.ErrCircuitOpen })
		} else {
			m.cb.Reset()
		}
	}
}

func (m *breakerModel) BindTools(tools []schema.ToolDefinition) ChatModel {
	return &breakerModel{next: m.next.BindTools(tools), cb: m.cb}
}

func (m *breakerModel) ModelID() string { return m.next.ModelID() }

// WithRetry returns a Middleware giving the provider adapter its one
// transparent reconnect: a failed Generate call (or a Stream call that
// fails before yielding any chunk) is retried once with backoff before the
// failure reaches the circuit breaker. Wire this innermost, closest to the
// real provider, so the breaker only ever sees a failure that already
// survived a reconnect attempt.
func WithRetry(policy resilience.RetryPolicy) Middleware {
	policy.Retryable = func(err error) bool { return err != nil }
	return func(next ChatModel) ChatModel {
		return &retryModel{next: next, policy: policy}
	}
}

type retryModel struct {
	next   ChatModel
	policy resilience.RetryPolicy
}

func (m *retryModel) Generate(ctx context.Context, msgs []schema.Message, opts ...GenerateOption) (*schema.AIMessage, error) {
	return resilience.Retry(ctx, m.policy, func(ctx context.Context) (*schema.AIMessage, error) {
		return m.next.Generate(ctx, msgs, opts...)
	})
}

// pulledStream holds the first pulled (chunk, err, ok) result from a
// started iter.Seq2[schema.StreamChunk, error], plus the pull/stop pair to
// continue it lazily. Retrying only has to re-run the part of Stream up to
// this first pull; everything after relays live exactly as the teacher's
// other middleware does.
type pulledStream struct {
	next  func() (schema.StreamChunk, error, bool)
	stop  func()
	chunk schema.StreamChunk
	ok    bool
}

func (m *retryModel) Stream(ctx context.Context, msgs []schema.Message, opts ...GenerateOption) iter.Seq2[schema.StreamChunk, error] {
	// A stream that dies mid-token has already delivered chunks to the
	// caller and cannot be transparently retried; only a stream that fails
	// on its very first chunk gets the reconnect, so only that first pull
	// runs inside Retry — everything after relays live, unbuffered.
	pulled, err := resilience.Retry(ctx, m.policy, func(ctx context.Context) (*pulledStream, error) {
		next, stop := iter.Pull2(m.next.Stream(ctx, msgs, opts...))
		chunk, chunkErr, ok := next()
		if chunkErr != nil {
			stop()
			return nil, chunkErr
		}
		return &pulledStream{next: next, stop: stop, chunk: chunk, ok: ok}, nil
	})
	if err != nil {
		return func(yield func(schema.StreamChunk, error) bool) {
			yield(schema.StreamChunk{}, err)
		}
	}
	return func(yield func(schema.StreamChunk, error) bool) {
		defer pulled.stop()
		if !pulled.ok {
			return
		}
		if !yield(pulled.chunk, nil) {
			return
		}
		for {
			chunk, chunkErr, ok := pulled.next()
			if !ok {
				return
			}
			if !yield(chunk, chunkErr) {
				return
			}
			if chunkErr != nil {
				return
			}
		}
	}
}

func (m *retryModel) BindTools(tools []schema.ToolDefinition) ChatModel {
	return &retryModel{next: m.next.BindTools(tools), policy: m.policy}
}

func (m *retryModel) ModelID() string { return m.next.ModelID() }

// WithSuspendingRateLimit returns a Middleware backed by a
// resilience.RateLimiter: calls suspend until a token is available or ctx
// is canceled, rather than failing immediately the way WithProviderLimits
// does. Use one limiter per external-service budget (embedding,
// generation, judge) per the per-service rate-limit requirement.
func WithSuspendingRateLimit(rl *resilience.RateLimiter) Middleware {
	return func(next ChatModel) ChatModel {
		return &suspendingRateLimitedModel{next: next, rl: rl}
	}
}

type suspendingRateLimitedModel struct {
	next ChatModel
	rl   *resilience.RateLimiter
}

func (m *suspendingRateLimitedModel) Generate(ctx context.Context, msgs []schema.Message, opts ...GenerateOption) (*schema.AIMessage, error) {
	if err := m.rl.Allow(ctx); err != nil {
		return nil, err
	}
	defer m.rl.Release()
	return m.next.Generate(ctx, msgs, opts...)
}

func (m *suspendingRateLimitedModel) Stream(ctx context.Context, msgs []schema.Message, opts ...GenerateOption) iter.Seq2[schema.StreamChunk, error] {
	if err := m.rl.Allow(ctx); err != nil {
		return func(yield func(schema.StreamChunk, error) bool) {
			yield(schema.StreamChunk{}, err)
		}
	}
	inner := m.next.Stream(ctx, msgs, opts...)
	return func(yield func(schema.StreamChunk, error) bool) {
		defer m.rl.Release()
		for chunk, err := range inner {
			if !yield(chunk, err) {
				return
			}
		}
	}
}

func (m *suspendingRateLimitedModel) BindTools(tools []schema.ToolDefinition) ChatModel {
	return &suspendingRateLimitedModel{next: m.next.BindTools(tools), rl: m.rl}
}

func (m *suspendingRateLimitedModel) ModelID() string { return m.next.ModelID() }
