// Package file implements the auth ledger as a single JSON document, read
// wholesale on open and rewritten wholesale on every mutation.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/alikaskat/calendar-bot/internal/auth"
)

type ledger struct {
	Owners          []int64                    `json:"owners"`
	SharedCalendars map[string]sharedCalendar  `json:"shared_calendars"`
	AuthorizedUsers map[string]authorizedEntry `json:"authorized_users"`
}

type sharedCalendar struct {
	Primary    string  `json:"primary"`
	SharedWith []int64 `json:"shared_with"`
}

type authorizedEntry struct {
	OwnerID    int64  `json:"owner_id"`
	AccessCode string `json:"access_code"`
	Verified   bool   `json:"verified"`
}

// Store is a file-backed auth.Store. All mutations hold the store lock and
// persist before returning, so a crash after a successful call never loses
// the applied change.
type Store struct {
	mu     sync.Mutex
	path   string
	data   ledger
	params auth.Argon2idParams
}

// Open loads the ledger at path, starting empty when the file does not exist.
func Open(path string) (*Store, error) {
	s := &Store{
		path:   path,
		params: auth.DefaultArgon2idParams,
		data: ledger{
			SharedCalendars: make(map[string]sharedCalendar),
			AuthorizedUsers: make(map[string]authorizedEntry),
		},
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file: read ledger: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("file: parse ledger: %w", err)
	}
	if s.data.SharedCalendars == nil {
		s.data.SharedCalendars = make(map[string]sharedCalendar)
	}
	if s.data.AuthorizedUsers == nil {
		s.data.AuthorizedUsers = make(map[string]authorizedEntry)
	}
	return s, nil
}

// RegisterOwner implements auth.Store.
func (s *Store) RegisterOwner(ctx context.Context, userID int64, calendarID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userKey(userID)
	calendar := s.data.SharedCalendars[key]
	calendar.Primary = calendarID
	s.data.SharedCalendars[key] = calendar
	if !containsID(s.data.Owners, userID) {
		s.data.Owners = append(s.data.Owners, userID)
	}

	return s.saveLocked()
}

// GrantAccess implements auth.Store. The access code is stored hashed.
func (s *Store) GrantAccess(ctx context.Context, ownerID, userID int64, accessCode string) error {
	hashed, err := auth.HashAccessCode(accessCode, s.params)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ownerKey := userKey(ownerID)
	calendar, ok := s.data.SharedCalendars[ownerKey]
	if !ok {
		return auth.ErrNotOwner
	}

	s.data.AuthorizedUsers[userKey(userID)] = authorizedEntry{
		OwnerID:    ownerID,
		AccessCode: hashed,
		Verified:   false,
	}
	if !containsID(calendar.SharedWith, userID) {
		calendar.SharedWith = append(calendar.SharedWith, userID)
		s.data.SharedCalendars[ownerKey] = calendar
	}

	return s.saveLocked()
}

// VerifyCode implements auth.Store.
func (s *Store) VerifyCode(ctx context.Context, userID int64, accessCode string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userKey(userID)
	entry, ok := s.data.AuthorizedUsers[key]
	if !ok {
		return false, nil
	}

	match, err := auth.VerifyAccessCode(entry.AccessCode, accessCode)
	if err != nil || !match {
		return false, err
	}
	if entry.Verified {
		return true, nil
	}

	entry.Verified = true
	s.data.AuthorizedUsers[key] = entry
	if err := s.saveLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// IsAuthorized implements auth.Store.
func (s *Store) IsAuthorized(ctx context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if containsID(s.data.Owners, userID) {
		return true, nil
	}
	entry, ok := s.data.AuthorizedUsers[userKey(userID)]
	return ok && entry.Verified, nil
}

// ResolveOwner implements auth.Store.
func (s *Store) ResolveOwner(ctx context.Context, userID int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if containsID(s.data.Owners, userID) {
		return userID, true, nil
	}
	if entry, ok := s.data.AuthorizedUsers[userKey(userID)]; ok {
		return entry.OwnerID, true, nil
	}
	return 0, false, nil
}

// PrimaryCalendar implements auth.Store.
func (s *Store) PrimaryCalendar(ctx context.Context, ownerID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	calendar, ok := s.data.SharedCalendars[userKey(ownerID)]
	if !ok {
		return "", auth.ErrNotFound
	}
	return calendar.Primary, nil
}

// saveLocked rewrites the whole ledger through a temp file and rename, so a
// crash mid-write cannot leave a truncated document behind.
func (s *Store) saveLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("file: encode ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".calendar_auth-*.json")
	if err != nil {
		return fmt.Errorf("file: create temp ledger: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file: write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: close ledger: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: replace ledger: %w", err)
	}
	return nil
}

func userKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
