package storage

import (
	"context"
	"errors"
	"time"
)

// Connection retry defaults used by [NewRedis] and [NewMongo].
const (
	ConnectAttempts = 3
	ConnectDelay    = 200 * time.Millisecond
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (refused connections, timeouts) with this type
// so that [Retry] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times with exponential backoff.
// It only retries errors wrapped with [RetryableError]; other errors are
// returned immediately. The delay doubles after each failed attempt.
// Returns the last error if all attempts fail, or ctx.Err() if cancelled.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// retryPing retries a connection check with the connect defaults.
func retryPing(ctx context.Context, ping func(context.Context) error) error {
	return Retry(ctx, ConnectAttempts, ConnectDelay, func() error {
		if err := ping(ctx); err != nil {
			if ctx.Err() != nil {
				return err
			}
			return &RetryableError{Err: err}
		}
		return nil
	})
}
