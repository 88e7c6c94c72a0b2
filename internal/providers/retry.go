package providers

import (
	"context"
	"errors"
	"time"
)

// Retrier applies comet's retry policy around a single Generator:
//
//   - Timeout and Unreachable are retried up to MaxRetries with linearly
//     increasing backoff (RetryDelay * attempt number).
//   - RateLimited is retried exactly once, waiting the provider's hint if
//     it gave one and RetryDelay otherwise.
//   - InvalidResponse is never retried; the chunk it belongs to is
//     reported failed and the batch continues.
type Retrier struct {
	Generator  Generator
	MaxRetries int
	RetryDelay time.Duration
}

// Name returns the wrapped generator's name.
func (r Retrier) Name() string { return r.Generator.Name() }

// Generate runs the wrapped generator under the retry policy.
func (r Retrier) Generate(ctx context.Context, req Request) (Response, error) {
	rateLimitRetried := false

	for attempt := 1; ; attempt++ {
		resp, err := r.Generator.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		var pe *Error
		if !errors.As(err, &pe) || pe.Kind == KindInvalidResponse {
			return Response{}, err
		}

		var wait time.Duration
		switch pe.Kind {
		case KindRateLimited:
			if rateLimitRetried {
				return Response{}, err
			}
			rateLimitRetried = true
			wait = r.RetryDelay
			if pe.RetryAfter > 0 {
				wait = pe.RetryAfter
			}
		default: // KindTimeout, KindUnreachable
			if attempt > r.MaxRetries {
				return Response{}, err
			}
			wait = r.RetryDelay * time.Duration(attempt)
		}

		select {
		case <-ctx.Done():
			return Response{}, ctx.Err()
		case <-time.After(wait):
		}
	}
}
