package resilience

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/lookatitude/beluga-ai/core"
)

// RetryPolicy configures exponential backoff retry for a single call.
type RetryPolicy struct {
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	BackoffFactor   float64
	Jitter          bool
	RetryableErrors []core.ErrorCode // additional codes to treat as retryable

	// Retryable, when set, replaces the default core.IsRetryable/
	// RetryableErrors check entirely. Transport adapters sit below the
	// engine's own ragcore error taxonomy and see raw provider errors, so
	// they supply their own predicate instead of tagging every failure as a
	// *core.Error first.
	Retryable func(error) bool
}

// DefaultRetryPolicy returns the engine's standard backoff policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         true,
	}
}

func (p RetryPolicy) normalize() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = def.InitialBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = def.MaxBackoff
	}
	if p.BackoffFactor <= 0 {
		p.BackoffFactor = def.BackoffFactor
	}
	return p
}

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	if core.IsRetryable(err) {
		return true
	}
	if len(p.RetryableErrors) == 0 {
		return false
	}
	var e *core.Error
	if errors.As(err, &e) {
		for _, code := range p.RetryableErrors {
			if e.Code == code {
				return true
			}
		}
	}
	return false
}

// Retry calls fn, retrying with exponential backoff while the error it
// returns is retryable (per core.IsRetryable or policy.RetryableErrors),
// up to MaxAttempts total calls. Plain (non-*core.Error) errors are never
// retried.
func Retry[T any](ctx context.Context, policy RetryPolicy, fn func(context.Context) (T, error)) (T, error) {
	policy = policy.normalize()
	backoff := policy.InitialBackoff

	var zero T
	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == policy.MaxAttempts || !policy.retryable(err) {
			return zero, lastErr
		}

		wait := backoff
		if policy.Jitter {
			wait = time.Duration(float64(wait) * (0.5 + rand.Float64()))
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * policy.BackoffFactor)
		if backoff > policy.MaxBackoff {
			backoff = policy.MaxBackoff
		}
	}
	return zero, lastErr
}
