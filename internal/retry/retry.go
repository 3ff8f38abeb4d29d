// Package retry runs an operation a bounded number of times with a growing
// delay between attempts.
package retry

import (
	"context"
	"fmt"
	"time"
)

type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	OnRetry        func(attempt int, err error, backoff time.Duration)
}

// Classify reports whether an error is worth another attempt.
type Classify func(err error) bool

type Operation[T any] func() (T, error)

// Do runs op until it succeeds, the error is classified permanent, attempts
// run out, or ctx is cancelled. The backoff grows linearly: attempt n waits
// n * InitialBackoff.
func Do[T any](ctx context.Context, p Policy, retryable Classify, op Operation[T]) (T, error) {
	var zero T

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		val, err := op()
		if err == nil {
			return val, nil
		}

		if !retryable(err) {
			return zero, err
		}

		if attempt == p.MaxAttempts {
			return zero, fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}

		backoff := time.Duration(attempt) * p.InitialBackoff
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, backoff)
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return zero, fmt.Errorf("cancelled during retry: %w", ctx.Err())
		}
	}

	panic("unreachable: MaxAttempts must be >= 1")
}
