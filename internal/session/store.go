package session

import (
	"sync"
	"time"
)

// Store keeps per-user dialog sessions in memory. Sessions are not durable
// across restarts; an idle session is reset lazily on next access once the
// configured timeout has elapsed.
type Store struct {
	mu          sync.Mutex
	now         func() time.Time
	idleTimeout time.Duration
	entries     map[int64]*entry
}

type entry struct {
	mu   sync.Mutex
	sess Session
}

// NewStore constructs a Store with the provided idle timeout and clock.
func NewStore(idleTimeout time.Duration, now func() time.Time) *Store {
	if idleTimeout <= 0 {
		idleTimeout = time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:         now,
		idleTimeout: idleTimeout,
		entries:     make(map[int64]*entry),
	}
}

// Do runs fn with exclusive access to the user's session. The session lock is
// per user, so concurrent events for different users proceed in parallel while
// a double-submitting user is serialized. The idle-eviction check runs once,
// before fn; the session fn observes is authoritative for the whole
// transition. LastActive is stamped after fn returns.
func (s *Store) Do(userID int64, fn func(sess *Session)) Session {
	e := s.entryFor(userID)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := s.now()
	if e.sess.LastActive.IsZero() || now.Sub(e.sess.LastActive) > s.idleTimeout {
		e.sess = Session{UserID: userID, Stage: StageMainMenu}
	}

	fn(&e.sess)
	e.sess.UserID = userID
	e.sess.LastActive = now
	return e.sess
}

// Get returns a copy of the user's session, applying idle eviction first.
func (s *Store) Get(userID int64) Session {
	return s.Do(userID, func(*Session) {})
}

// Clear resets the user's session to the main menu.
func (s *Store) Clear(userID int64) {
	s.Do(userID, func(sess *Session) { sess.Reset() })
}

func (s *Store) entryFor(userID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		e = &entry{sess: Session{UserID: userID, Stage: StageMainMenu}}
		s.entries[userID] = e
	}
	return e
}
