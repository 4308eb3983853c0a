// Package retry runs operations with capped exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 100 * time.Millisecond
	DefaultMaxBackoff     = 5 * time.Second
)

// Policy describes how often and how long to wait between attempts.
type Policy struct {
	// OnRetry is called before each retry with the 1-based attempt number,
	// the wait duration and the error that triggered the retry.
	OnRetry func(attempt int, wait time.Duration, err error)

	// MaxRetries is the number of retries after the first attempt.
	// Zero selects DefaultMaxRetries; a negative value disables retries.
	MaxRetries int

	// InitialBackoff defaults to DefaultInitialBackoff.
	InitialBackoff time.Duration

	// MaxBackoff defaults to DefaultMaxBackoff.
	MaxBackoff time.Duration
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the retries are
// exhausted or ctx is done. The last error from fn is returned.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	maxRetries := p.MaxRetries
	switch {
	case maxRetries == 0:
		maxRetries = DefaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if attempt == maxRetries {
			break
		}

		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, wait, lastErr)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}
	return lastErr
}

// Backoff returns the wait before retry attempt+1: InitialBackoff * 2^attempt,
// capped at MaxBackoff.
func (p Policy) Backoff(attempt int) time.Duration {
	initial := p.InitialBackoff
	if initial <= 0 {
		initial = DefaultInitialBackoff
	}
	maxBackoff := p.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = DefaultMaxBackoff
	}

	if attempt >= 32 {
		return maxBackoff
	}
	backoff := initial * (1 << attempt)
	if backoff <= 0 || backoff > maxBackoff {
		return maxBackoff
	}
	return backoff
}
