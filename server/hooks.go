package server

import (
	"context"
	"net/http"
)

// Hooks lets a caller observe or intervene around a request without
// implementing a full Middleware. BeforeRequest returning an error aborts
// the request before the handler runs; OnError lets a hook replace or
// suppress an error raised further down the chain.
type Hooks struct {
	BeforeRequest func(ctx context.Context, r *http.Request) error
	AfterRequest  func(ctx context.Context, r *http.Request, statusCode int)
	OnError       func(ctx context.Context, err error) error
}

// ComposeHooks chains hs in order: BeforeRequest and AfterRequest call every
// non-nil hook in sequence (BeforeRequest stops at the first error);
// OnError passes the error down the chain, stopping as soon as a hook
// returns a non-nil replacement.
func ComposeHooks(hs ...Hooks) Hooks {
	return Hooks{
		BeforeRequest: func(ctx context.Context, r *http.Request) error {
			for _, h := range hs {
				if h.BeforeRequest == nil {
					continue
				}
				if err := h.BeforeRequest(ctx, r); err != nil {
					return err
				}
			}
			return nil
		},
		AfterRequest: func(ctx context.Context, r *http.Request, statusCode int) {
			for _, h := range hs {
				if h.AfterRequest == nil {
					continue
				}
				h.AfterRequest(ctx, r, statusCode)
			}
		},
		OnError: func(ctx context.Context, err error) error {
			for _, h := range hs {
				if h.OnError == nil {
					continue
				}
				if replaced := h.OnError(ctx, err); replaced != nil {
					return replaced
				}
			}
			return err
		},
	}
}
