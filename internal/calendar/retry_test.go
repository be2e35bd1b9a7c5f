package calendar

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:   maxAttempts,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestRetryPolicy_Do(t *testing.T) {
	t.Parallel()

	t.Run("succeeds without retrying", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := fastPolicy(3).Do(context.Background(), func() error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("Do returned error: %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected 1 call, got %d", calls)
		}
	})

	t.Run("retries transient failures within the budget", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := fastPolicy(3).Do(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &Error{Op: "CreateEvent", StatusCode: 503, Err: errors.New("unavailable")}
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Do returned error: %v", err)
		}
		if calls != 3 {
			t.Fatalf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("permanent failures are returned immediately", func(t *testing.T) {
		t.Parallel()
		calls := 0
		permanent := &Error{Op: "CreateEvent", StatusCode: 400, Permanent: true, Err: errors.New("bad request")}
		err := fastPolicy(3).Do(context.Background(), func() error {
			calls++
			return permanent
		})
		if !errors.Is(err, permanent) {
			t.Fatalf("expected the permanent error, got %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected 1 call, got %d", calls)
		}
	})

	t.Run("unclassified errors are treated as permanent", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := fastPolicy(3).Do(context.Background(), func() error {
			calls++
			return errors.New("something unexpected")
		})
		if err == nil {
			t.Fatalf("expected an error")
		}
		if calls != 1 {
			t.Fatalf("expected 1 call, got %d", calls)
		}
	})

	t.Run("exhausted budget reports unavailability", func(t *testing.T) {
		t.Parallel()
		calls := 0
		transient := &Error{Op: "CreateEvent", StatusCode: 500, Err: errors.New("boom")}
		err := fastPolicy(3).Do(context.Background(), func() error {
			calls++
			return transient
		})
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable, got %v", err)
		}
		if !errors.Is(err, transient) {
			t.Fatalf("expected the last attempt error preserved, got %v", err)
		}
		if calls != 3 {
			t.Fatalf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("cancelled context stops the loop between attempts", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		policy := RetryPolicy{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, BackoffFactor: 2.0}
		err := policy.Do(ctx, func() error {
			calls++
			cancel()
			return &Error{Op: "CreateEvent", StatusCode: 500, Err: errors.New("boom")}
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected 1 call before cancellation, got %d", calls)
		}
	})

	t.Run("zero values fall back to a single attempt", func(t *testing.T) {
		t.Parallel()
		calls := 0
		err := RetryPolicy{}.Do(context.Background(), func() error {
			calls++
			return &Error{Op: "CreateEvent", StatusCode: 500, Err: errors.New("boom")}
		})
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable, got %v", err)
		}
		if calls != 1 {
			t.Fatalf("expected 1 call, got %d", calls)
		}
	})
}

func TestIsPermanent(t *testing.T) {
	t.Parallel()

	if IsPermanent(&Error{Op: "CreateEvent", StatusCode: 503}) {
		t.Fatalf("503 must be transient")
	}
	if IsPermanent(&Error{Op: "CreateEvent", StatusCode: 429}) {
		t.Fatalf("429 must be transient")
	}
	if !IsPermanent(&Error{Op: "CreateEvent", StatusCode: 400, Permanent: true}) {
		t.Fatalf("400 must be permanent")
	}
	if !IsPermanent(errors.New("opaque")) {
		t.Fatalf("unknown errors must be permanent")
	}
}
