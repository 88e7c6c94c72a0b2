package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Kind classifies a provider failure for retry decisions.
type Kind string

const (
	// KindTimeout: the request exceeded its deadline. Retryable.
	KindTimeout Kind = "timeout"
	// KindRateLimited: the provider throttled us. Retried once, honoring
	// any wait hint the provider supplied.
	KindRateLimited Kind = "rateLimited"
	// KindInvalidResponse: the provider answered but the answer is
	// unusable (malformed body, empty content, auth rejection). Fatal for
	// the chunk; never retried.
	KindInvalidResponse Kind = "invalidResponse"
	// KindUnreachable: the provider could not be reached at all.
	// Retryable.
	KindUnreachable Kind = "unreachable"
)

// Error is the typed failure crossing the gateway boundary.
type Error struct {
	Kind     Kind
	Provider string
	Message  string
	// RetryAfter carries the provider's wait hint on rate limits; zero
	// when the provider gave none.
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.Kind)
}

// KindOf extracts the failure kind from err. ok is false when err is not
// a provider error.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// classifyTransport maps an http.Client error to Timeout or Unreachable.
func classifyTransport(provider string, err error) *Error {
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Provider: provider, Message: msg}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Provider: provider, Message: msg}
	}
	return &Error{Kind: KindUnreachable, Provider: provider, Message: msg}
}
