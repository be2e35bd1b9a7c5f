package testfixtures

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	t.Parallel()

	t.Run("starts at the reference time by default", func(t *testing.T) {
		t.Parallel()
		clock := NewClock(time.Time{})
		if !clock.Now().Equal(ReferenceTime()) {
			t.Fatalf("expected %s, got %s", ReferenceTime(), clock.Now())
		}
	})

	t.Run("advance moves the clock forward", func(t *testing.T) {
		t.Parallel()
		clock := NewClock(time.Time{})
		updated := clock.Advance(90 * time.Minute)
		if want := ReferenceTime().Add(90 * time.Minute); !updated.Equal(want) {
			t.Fatalf("expected %s, got %s", want, updated)
		}
		if !clock.Now().Equal(updated) {
			t.Fatalf("Now must reflect the advance")
		}
	})

	t.Run("set replaces the tracked instant", func(t *testing.T) {
		t.Parallel()
		clock := NewClock(time.Time{})
		target := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
		clock.Set(target)
		if !clock.Now().Equal(target) {
			t.Fatalf("expected %s, got %s", target, clock.Now())
		}
	})

	t.Run("nil clock falls back to the wall clock", func(t *testing.T) {
		t.Parallel()
		var clock *Clock
		now := clock.NowFunc()()
		if now.IsZero() {
			t.Fatalf("expected wall clock time")
		}
	})
}
