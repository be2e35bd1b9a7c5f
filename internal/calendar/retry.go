package calendar

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy bounds how gateway calls are retried on transient failures.
// Permanent failures are returned immediately.
type RetryPolicy struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy returns the retry configuration used in production.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 500 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 5 * time.Second
	}
	if p.BackoffFactor < 1 {
		p.BackoffFactor = 2.0
	}
	return p
}

// Do executes fn until it succeeds, fails permanently, the attempt budget is
// exhausted, or the context is cancelled. Delays between attempts grow
// exponentially up to MaxDelay.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	policy := p.normalized()

	var lastErr error
	delay := policy.InitialDelay

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * policy.BackoffFactor)
				if delay > policy.MaxDelay {
					delay = policy.MaxDelay
				}
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		if IsPermanent(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%w: %d attempts failed: %w", ErrUnavailable, policy.MaxAttempts, lastErr)
}
