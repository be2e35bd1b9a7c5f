// Package auth defines the shared-calendar access ledger: owners register
// their calendar, grant access codes to other users, and users verify the
// code before the bot will create events on their behalf.
package auth

import (
	"context"
	"errors"
)

var (
	// ErrNotOwner is returned when a grant is attempted by a user that never
	// registered a calendar.
	ErrNotOwner = errors.New("auth: not an owner")
	// ErrNotFound is returned when the requested ledger record does not exist.
	ErrNotFound = errors.New("auth: not found")
)

// Store is the authorization ledger. Every mutation is written through to
// durable storage before the call returns.
type Store interface {
	// RegisterOwner records the user as an owner of the given calendar.
	// Re-registration updates the primary calendar and is otherwise a no-op.
	RegisterOwner(ctx context.Context, userID int64, calendarID string) error

	// GrantAccess lets an owner share their calendar with another user,
	// pending verification of the access code.
	GrantAccess(ctx context.Context, ownerID, userID int64, accessCode string) error

	// VerifyCode marks the user's grant verified when the code matches.
	// A mismatch reports false without error and never flips the flag.
	VerifyCode(ctx context.Context, userID int64, accessCode string) (bool, error)

	// IsAuthorized reports whether the user is an owner or holds a verified grant.
	IsAuthorized(ctx context.Context, userID int64) (bool, error)

	// ResolveOwner returns the owner whose calendar the user operates on:
	// the user itself for owners, the granting owner otherwise.
	ResolveOwner(ctx context.Context, userID int64) (int64, bool, error)

	// PrimaryCalendar returns the calendar registered by the owner.
	PrimaryCalendar(ctx context.Context, ownerID int64) (string, error)
}
