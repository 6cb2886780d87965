// Package resilience wraps remote calls with bounded retry.
package resilience

import (
	"context"
	"time"

	"opentrade/internal/errors"
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration // fixed inter-attempt delay
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Delay:       2 * time.Second,
	}
}

// Do executes a remote operation with bounded retry and returns a result.
// Transient failures are retried up to MaxAttempts with a fixed delay
// between attempts; permanent failures (auth, malformed configuration)
// short-circuit on the first occurrence. After exhaustion the last error is
// returned rather than raised past the caller, so the caller can apply its
// degradation policy. Do performs no caching and has no side effects of its
// own beyond the wrapped call.
func Do[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if errors.IsPermanent(err) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(cfg.Delay):
		}
	}

	return zero, lastErr
}

// DoVoid executes a resultless remote operation with the same policy as Do.
func DoVoid(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := Do(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
