package server

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitHandler wraps next with an ingress token-bucket limiter: once
// the bucket is empty a request gets 429 Too Many Requests immediately
// rather than queuing, since an HTTP client is better served by a fast
// "retry later" than by a handler goroutine blocked on a suspended gate.
// A nil limiter disables the check entirely.
func RateLimitHandler(next http.Handler, limiter *rate.Limiter) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
