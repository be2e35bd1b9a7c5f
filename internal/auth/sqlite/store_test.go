package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alikaskat/calendar-bot/internal/auth"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	})
	return store
}

func TestStore_Ledger(t *testing.T) {
	ctx := context.Background()

	t.Run("owner registration and lookup", func(t *testing.T) {
		store := newTestStore(t)

		if err := store.RegisterOwner(ctx, 100, "owner@example.com"); err != nil {
			t.Fatalf("RegisterOwner returned error: %v", err)
		}

		authorized, err := store.IsAuthorized(ctx, 100)
		if err != nil || !authorized {
			t.Fatalf("expected owner authorized, got %v err=%v", authorized, err)
		}
		calendarID, err := store.PrimaryCalendar(ctx, 100)
		if err != nil || calendarID != "owner@example.com" {
			t.Fatalf("expected primary calendar, got %q err=%v", calendarID, err)
		}

		// Re-registration updates the calendar in place.
		if err := store.RegisterOwner(ctx, 100, "new@example.com"); err != nil {
			t.Fatalf("RegisterOwner returned error: %v", err)
		}
		calendarID, err = store.PrimaryCalendar(ctx, 100)
		if err != nil || calendarID != "new@example.com" {
			t.Fatalf("expected updated calendar, got %q err=%v", calendarID, err)
		}
	})

	t.Run("unknown owner reports not found", func(t *testing.T) {
		store := newTestStore(t)

		if _, err := store.PrimaryCalendar(ctx, 999); !errors.Is(err, auth.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("grant requires an existing owner", func(t *testing.T) {
		store := newTestStore(t)

		if err := store.GrantAccess(ctx, 100, 200, "code-1"); !errors.Is(err, auth.ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
	})

	t.Run("grant, verify and resolve", func(t *testing.T) {
		store := newTestStore(t)

		if err := store.RegisterOwner(ctx, 100, "owner@example.com"); err != nil {
			t.Fatalf("RegisterOwner returned error: %v", err)
		}
		if err := store.GrantAccess(ctx, 100, 200, "code-1"); err != nil {
			t.Fatalf("GrantAccess returned error: %v", err)
		}

		if authorized, _ := store.IsAuthorized(ctx, 200); authorized {
			t.Fatalf("unverified grant must not authorize")
		}
		if ok, err := store.VerifyCode(ctx, 200, "wrong"); err != nil || ok {
			t.Fatalf("expected wrong code refused, got ok=%v err=%v", ok, err)
		}
		if ok, err := store.VerifyCode(ctx, 200, "code-1"); err != nil || !ok {
			t.Fatalf("expected right code accepted, got ok=%v err=%v", ok, err)
		}
		if authorized, _ := store.IsAuthorized(ctx, 200); !authorized {
			t.Fatalf("verified grant must authorize")
		}

		// Repeat verification stays accepted.
		if ok, err := store.VerifyCode(ctx, 200, "code-1"); err != nil || !ok {
			t.Fatalf("expected repeat verification accepted, got ok=%v err=%v", ok, err)
		}

		ownerID, found, err := store.ResolveOwner(ctx, 200)
		if err != nil || !found || ownerID != 100 {
			t.Fatalf("expected owner 100, got %d found=%v err=%v", ownerID, found, err)
		}
	})

	t.Run("re-granting resets verification", func(t *testing.T) {
		store := newTestStore(t)

		if err := store.RegisterOwner(ctx, 100, "owner@example.com"); err != nil {
			t.Fatalf("RegisterOwner returned error: %v", err)
		}
		if err := store.GrantAccess(ctx, 100, 200, "code-1"); err != nil {
			t.Fatalf("GrantAccess returned error: %v", err)
		}
		if ok, err := store.VerifyCode(ctx, 200, "code-1"); err != nil || !ok {
			t.Fatalf("VerifyCode failed: ok=%v err=%v", ok, err)
		}

		if err := store.GrantAccess(ctx, 100, 200, "code-2"); err != nil {
			t.Fatalf("GrantAccess returned error: %v", err)
		}
		if authorized, _ := store.IsAuthorized(ctx, 200); authorized {
			t.Fatalf("new grant must require verification again")
		}
		if ok, err := store.VerifyCode(ctx, 200, "code-1"); err != nil || ok {
			t.Fatalf("old code must no longer verify, got ok=%v err=%v", ok, err)
		}
		if ok, err := store.VerifyCode(ctx, 200, "code-2"); err != nil || !ok {
			t.Fatalf("new code must verify, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("unknown user resolves to no owner", func(t *testing.T) {
		store := newTestStore(t)

		ownerID, found, err := store.ResolveOwner(ctx, 42)
		if err != nil || found || ownerID != 0 {
			t.Fatalf("expected no owner, got %d found=%v err=%v", ownerID, found, err)
		}
	})
}
