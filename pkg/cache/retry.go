package cache

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryDelay is the pause before the first retry; it doubles on each
// further attempt.
var RetryDelay = 500 * time.Millisecond

// RetryWithBackoff retries fn up to attempts times with exponential backoff.
// Only errors wrapped with Retryable trigger retries. The last error is
// returned unwrapped from its RetryableError.
func RetryWithBackoff(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	delay := RetryDelay
	var lastErr error

	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
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
	var re *RetryableError
	if errors.As(lastErr, &re) {
		return re.Err
	}
	return lastErr
}
