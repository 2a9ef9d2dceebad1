package ai

import (
	"context"
	"errors"
	"time"
)

// Sleeper abstracts backoff delays so retry behavior is testable without
// real time passing.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration)
}

// realSleeper waits on the wall clock, honoring context cancellation.
type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// permanentError marks a failure that must not be retried for the current
// model (authentication failures and other 4xx client errors).
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

func isPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// withRetry runs fn up to maxAttempts times, sleeping between attempts with
// exponential backoff (initial delay one second, doubling). Permanent errors
// fail immediately; the last error is returned once attempts are exhausted.
func withRetry(ctx context.Context, sleeper Sleeper, maxAttempts int, fn func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	delay := time.Second
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if isPermanent(lastErr) {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}
		sleeper.Sleep(ctx, delay)
		delay *= 2
	}
	return lastErr
}
