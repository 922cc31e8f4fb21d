// Package resilience bounds outbound provider calls: each call gets its own
// deadline, and transient failures are retried with exponential backoff.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/hanzara/quick-hello-wave/internal/apperr"
)

const maxShift = 32

// Backoff returns the delay before retry number retry (0-indexed): the base
// delay doubled per prior retry, with shift overflow clamped.
func Backoff(base time.Duration, retry int) time.Duration {
	if base <= 0 {
		return 0
	}
	if retry < 0 {
		retry = 0
	} else if retry > maxShift {
		retry = maxShift
	}
	return base * time.Duration(1<<retry)
}

// Do executes op up to maxAttempts times. The first attempt runs immediately;
// each retry waits Backoff(initialDelay, retries-so-far) first. Errors whose
// kind is not transient stop the loop at once, so validation and
// insufficient-funds failures are never replayed. The last error is returned
// when every attempt fails.
func Do[T any](ctx context.Context, maxAttempts int, initialDelay time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, Backoff(initialDelay, attempt-1)); err != nil {
				return zero, apperr.Wrap(apperr.KindNetworkError, "retry interrupted", err)
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !apperr.Retryable(err) {
			break
		}
	}
	return zero, lastErr
}

// WithTimeout runs call under a fresh deadline. Each retry attempt is expected
// to pass through here again so it gets its own budget rather than sharing one
// deadline across the whole retry sequence. Deadline expiry is reported as a
// network_timeout error.
func WithTimeout[T any](ctx context.Context, d time.Duration, call func(context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	result, err := call(callCtx)
	if err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded)) {
		var zero T
		return zero, apperr.Wrap(apperr.KindNetworkTimeout, "outbound call exceeded its deadline", err)
	}
	return result, err
}

// WithTimeoutErr is WithTimeout for calls that return only an error.
func WithTimeoutErr(ctx context.Context, d time.Duration, call func(context.Context) error) error {
	_, err := WithTimeout(ctx, d, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, call(ctx)
	})
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
