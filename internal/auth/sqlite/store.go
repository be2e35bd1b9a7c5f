// Package sqlite implements the auth ledger on SQLite for deployments where
// a flat file on ephemeral disk is not durable enough.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alikaskat/calendar-bot/internal/auth"
)

const schema = `
CREATE TABLE IF NOT EXISTS owners (
	user_id          INTEGER PRIMARY KEY,
	primary_calendar TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS grants (
	user_id    INTEGER PRIMARY KEY,
	owner_id   INTEGER NOT NULL REFERENCES owners(user_id),
	code_hash  TEXT NOT NULL,
	verified   INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// Store is a SQLite-backed auth.Store. Every mutation is a committed
// statement, so write-through durability comes from the database itself.
type Store struct {
	db     *sql.DB
	now    func() time.Time
	params auth.Argon2idParams
}

// Open opens the database at dsn and ensures the ledger schema exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open ledger: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now, params: auth.DefaultArgon2idParams}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// RegisterOwner implements auth.Store.
func (s *Store) RegisterOwner(ctx context.Context, userID int64, calendarID string) error {
	now := s.now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO owners (user_id, primary_calendar, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET primary_calendar = excluded.primary_calendar, updated_at = excluded.updated_at
	`, userID, calendarID, now, now)
	if err != nil {
		return fmt.Errorf("sqlite: register owner: %w", err)
	}
	return nil
}

// GrantAccess implements auth.Store. The access code is stored hashed.
func (s *Store) GrantAccess(ctx context.Context, ownerID, userID int64, accessCode string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM owners WHERE user_id = ?`, ownerID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("sqlite: lookup owner: %w", err)
	}
	if exists == 0 {
		return auth.ErrNotOwner
	}

	hashed, err := auth.HashAccessCode(accessCode, s.params)
	if err != nil {
		return err
	}

	now := s.now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO grants (user_id, owner_id, code_hash, verified, created_at, updated_at)
		VALUES (?, ?, ?, 0, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET owner_id = excluded.owner_id, code_hash = excluded.code_hash, verified = 0, updated_at = excluded.updated_at
	`, userID, ownerID, hashed, now, now)
	if err != nil {
		return fmt.Errorf("sqlite: store grant: %w", err)
	}
	return nil
}

// VerifyCode implements auth.Store.
func (s *Store) VerifyCode(ctx context.Context, userID int64, accessCode string) (bool, error) {
	var codeHash string
	var verified int
	err := s.db.QueryRowContext(ctx, `SELECT code_hash, verified FROM grants WHERE user_id = ?`, userID).Scan(&codeHash, &verified)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: lookup grant: %w", err)
	}

	match, err := auth.VerifyAccessCode(codeHash, accessCode)
	if err != nil || !match {
		return false, err
	}
	if verified == 1 {
		return true, nil
	}

	now := s.now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `UPDATE grants SET verified = 1, updated_at = ? WHERE user_id = ?`, now, userID); err != nil {
		return false, fmt.Errorf("sqlite: mark verified: %w", err)
	}
	return true, nil
}

// IsAuthorized implements auth.Store.
func (s *Store) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM owners WHERE user_id = ?
	`, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: lookup owner: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM grants WHERE user_id = ? AND verified = 1
	`, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: lookup grant: %w", err)
	}
	return count > 0, nil
}

// ResolveOwner implements auth.Store.
func (s *Store) ResolveOwner(ctx context.Context, userID int64) (int64, bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM owners WHERE user_id = ?`, userID).Scan(&count); err != nil {
		return 0, false, fmt.Errorf("sqlite: lookup owner: %w", err)
	}
	if count > 0 {
		return userID, true, nil
	}

	var ownerID int64
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM grants WHERE user_id = ?`, userID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("sqlite: lookup grant: %w", err)
	}
	return ownerID, true, nil
}

// PrimaryCalendar implements auth.Store.
func (s *Store) PrimaryCalendar(ctx context.Context, ownerID int64) (string, error) {
	var calendarID string
	err := s.db.QueryRowContext(ctx, `SELECT primary_calendar FROM owners WHERE user_id = ?`, ownerID).Scan(&calendarID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", auth.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: lookup calendar: %w", err)
	}
	return calendarID, nil
}
