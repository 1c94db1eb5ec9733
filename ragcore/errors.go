package ragcore

import (
	"errors"
	"fmt"
)

// ErrorCode identifies the category of an error per the engine's error
// taxonomy. Orchestration decides whether to degrade or terminate based on
// this code, not on the wrapped cause.
type ErrorCode string

const (
	// ErrOutOfDomain is not a fault: the Router refused the query. Surfaced
	// as a distinct terminal state (REFUSED), never retried.
	ErrOutOfDomain ErrorCode = "out_of_domain"

	// ErrInsufficientContext is the retrieval gate's FAIL verdict.
	ErrInsufficientContext ErrorCode = "insufficient_context"

	// ErrBackendUnavailable is an external service hard failure after the
	// adapter's bounded (one) transparent reconnect.
	ErrBackendUnavailable ErrorCode = "backend_unavailable"

	// ErrQuotaExhausted is a permanently empty rate-limit bucket. Treated
	// identically to ErrBackendUnavailable by the orchestrator.
	ErrQuotaExhausted ErrorCode = "quota_exhausted"

	// ErrDeadlineExceeded is the wall-clock deadline firing.
	ErrDeadlineExceeded ErrorCode = "deadline_exceeded"

	// ErrMalformedModelOutput means the parser could not recover citations
	// or actions. Not fatal: the answer text is still delivered.
	ErrMalformedModelOutput ErrorCode = "malformed_model_output"
)

var retryableCodes = map[ErrorCode]bool{
	ErrBackendUnavailable: true,
	ErrDeadlineExceeded:   true,
}

// Error is the engine's structured error: an operation name, a taxonomy
// code, a human message, and an optional wrapped cause.
type Error struct {
	Op      string
	Code    ErrorCode
	Message string
	Err     error
}

// New creates an Error with the given operation, code, message, and cause.
func New(op string, code ErrorCode, msg string, cause error) *Error {
	return &Error{Op: op, Code: code, Message: msg, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Op, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Op, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error sharing the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Code extracts the taxonomy code from err, if any.
func Code(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// IsRetryable reports whether err carries a retryable code. Only
// BackendUnavailable and DeadlineExceeded are retryable; OutOfDomain,
// InsufficientContext, and MalformedModelOutput are expected terminal
// outcomes, not faults, and are never retried.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return retryableCodes[e.Code]
	}
	return false
}
