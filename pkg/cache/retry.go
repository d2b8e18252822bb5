package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable marks a remote backend that could not be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

// Backoff retries operations whose errors are marked with [Retryable].
type Backoff struct {
	Attempts int           // total tries, including the first
	Delay    time.Duration // wait before the second try, doubled after each failure
}

// DefaultBackoff is used by the Redis cache and session backends.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 250 * time.Millisecond}

type retryable struct{ err error }

func (e retryable) Error() string { return e.err.Error() }
func (e retryable) Unwrap() error { return e.err }

// Retryable marks err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryable{err}
}

// IsRetryable reports whether err was marked with [Retryable].
func IsRetryable(err error) bool {
	var r retryable
	return errors.As(err, &r)
}

// Do calls fn until it succeeds, fails with an error not marked retryable,
// or runs out of attempts. The last error is returned without its marker.
// Waiting between attempts stops early when ctx ends.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var r retryable
		if !errors.As(err, &r) {
			return err
		}
		if attempt >= b.Attempts {
			return r.err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
}

// RetryWithBackoff runs fn under [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Do(ctx, fn)
}
