// Package retry provides a bounded-retry combinator for calls against
// flaky external services.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAttemptsExceeded is returned when every attempt failed.
var ErrAttemptsExceeded = errors.New("max retry attempts exceeded")

// Config configures retry behavior.
type Config struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Delay is the pause between attempts.
	Delay time.Duration
	// IsRetryable decides whether an error is worth another attempt.
	// Nil retries every error.
	IsRetryable func(error) bool
}

// Do runs fn until it succeeds, the attempts are exhausted, or the context is
// cancelled. On exhaustion the zero value is returned together with
// ErrAttemptsExceeded wrapping the last error.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if cfg.IsRetryable != nil && !cfg.IsRetryable(err) {
			return zero, err
		}

		if attempt < cfg.MaxAttempts && cfg.Delay > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(cfg.Delay):
			}
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExceeded, cfg.MaxAttempts, lastErr)
}
