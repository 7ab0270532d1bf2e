package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider gave no hint.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("llm: rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("llm: rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse carries model output that failed JSON or schema
// checks.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string { return "llm: invalid response: " + errText(e.Err) }

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers unreachable, failing or unconfigured
// providers.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	return "llm: provider unavailable: " + errText(e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is output cut off at Request.MaxTokens.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string { return "llm: response truncated at max tokens" }

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// Failure classifies a Generate error for callers that report it.
type Failure int

const (
	FailureNone Failure = iota
	FailureCanceled
	FailureRateLimited
	FailureUnavailable
	FailureInvalid
	FailureTruncated
	FailureOther
)

var failureNames = map[Failure]string{
	FailureNone:        "none",
	FailureCanceled:    "canceled",
	FailureRateLimited: "rate_limited",
	FailureUnavailable: "unavailable",
	FailureInvalid:     "invalid",
	FailureTruncated:   "truncated",
	FailureOther:       "other",
}

func (f Failure) String() string { return failureNames[f] }

// Temporary reports whether the same request may succeed later.
func (f Failure) Temporary() bool {
	return f == FailureRateLimited || f == FailureUnavailable
}

// Classify maps err onto a Failure.
func Classify(err error) Failure {
	var (
		rl  *ErrRateLimit
		un  *ErrProviderUnavailable
		inv *ErrInvalidResponse
		tr  *ErrMaxTokensExceeded
	)
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, context.Canceled):
		return FailureCanceled
	case errors.As(err, &rl):
		return FailureRateLimited
	case errors.As(err, &un), errors.Is(err, context.DeadlineExceeded):
		return FailureUnavailable
	case errors.As(err, &inv):
		return FailureInvalid
	case errors.As(err, &tr):
		return FailureTruncated
	}
	return FailureOther
}
