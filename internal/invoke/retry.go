// Package invoke wraps model calls with caching, bounded retry, and a
// direct-call fallback so callers always receive a usable string.
package invoke

import (
	"context"
	"time"
)

// Do runs fn up to attempts times, sleeping between tries with exponential
// backoff: the delay before retry n is baseDelay * 2^(n-1), so 3 retries at
// a 1s base wait 1s, 2s, 4s. The backoff is deliberate backpressure against
// a misbehaving upstream. Unlike SafeInvoke, Do propagates the final error
// when every attempt fails. The wait honors ctx cancellation.
func Do[T any](ctx context.Context, attempts int, baseDelay time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
			delay *= 2
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}
