package cache

import (
	"context"
	"errors"
	"time"

	errs "github.com/matzehuels/selecttree/pkg/errors"
)

// RetryableError marks an error as transient.
type RetryableError struct{ Err error }

// Retryable wraps err as a [RetryableError]. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was wrapped with [Retryable] or carries
// the NETWORK_ERROR or TIMEOUT code. Database and Redis failures are coded
// that way; invalid rows never are.
func IsRetryable(err error) bool {
	var re *RetryableError
	if errors.As(err, &re) {
		return true
	}
	return errs.Is(err, errs.ErrCodeNetwork) || errs.Is(err, errs.ErrCodeTimeout)
}

// RetryPolicy retries transient failures with exponential backoff.
type RetryPolicy struct {
	// Attempts is the total number of calls, including the first.
	Attempts int
	// Backoff is the delay before the first retry. It doubles each time.
	Backoff time.Duration
	// OnRetry is called with the failed attempt number before each wait.
	OnRetry func(attempt int, err error)
}

// DefaultRetry makes three attempts, waiting one and then two seconds.
var DefaultRetry = RetryPolicy{Attempts: 3, Backoff: time.Second}

// Do calls fn until it succeeds, fails with an error [IsRetryable] rejects,
// or the attempts run out. The last error is returned. Cancelling ctx
// during a wait returns ctx.Err().
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Backoff

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !IsRetryable(err) || attempt == attempts {
			return err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}

// RetryWithBackoff runs fn under [DefaultRetry].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultRetry.Do(ctx, fn)
}
