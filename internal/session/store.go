// Package session owns the authenticated session: a persisted store,
// a synchronously readable credential mirror, and the hydration guard
// that gates protected views until restoration has finished.
package session

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/taskdeck/taskdeck/internal/api"
)

// Session is the in-memory authentication state. AccessToken is
// non-empty iff the client is considered authenticated.
type Session struct {
	AccessToken string
	User        *api.User
}

// Store is the single source of truth for the session. It persists
// across restarts via sqlite and mirrors the credential on every
// mutation so the gate and the transport never disagree with it.
//
// Restoration runs asynchronously; callers that need the persisted
// state wait on HasHydrated/OnHydrated rather than reading early.
type Store struct {
	mu       sync.Mutex
	sess     Session
	dirty    bool // an explicit mutation happened before hydration finished
	hydrated bool
	waiters  []func()

	db     *DB
	mirror *Mirror
	logger *slog.Logger
}

// NewStore creates the store and starts restoring the persisted
// session in the background.
func NewStore(db *DB, mirror *Mirror, logger *slog.Logger) *Store {
	s := &Store{
		db:     db,
		mirror: mirror,
		logger: logger,
	}
	go s.hydrate()
	return s
}

// hydrate restores the persisted session. An unreadable or corrupt row
// is treated as absent and forces re-authentication.
func (s *Store) hydrate() {
	token, userJSON, ok, err := s.db.loadSession()

	var user *api.User
	if err != nil {
		s.logger.Warn("session restore failed, treating as absent", "error", err)
		ok = false
	}
	if ok {
		var u api.User
		if jsonErr := json.Unmarshal([]byte(userJSON), &u); jsonErr != nil {
			s.logger.Warn("persisted session corrupt, discarding", "error", jsonErr)
			ok = false
			_ = s.db.deleteSession()
		} else {
			user = &u
		}
	}

	s.mu.Lock()
	// A login that completed before restoration wins over the old row.
	if ok && !s.dirty {
		s.sess = Session{AccessToken: token, User: user}
	}
	s.hydrated = true
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	for _, fn := range waiters {
		fn()
	}
}

// Session returns a copy of the current session.
func (s *Store) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

// SetSession atomically replaces the session and updates the mirror in
// the same step. An empty credential behaves as ClearSession.
func (s *Store) SetSession(token string, user *api.User) {
	if token == "" {
		s.ClearSession()
		return
	}

	s.mu.Lock()
	s.sess = Session{AccessToken: token, User: user}
	s.dirty = true
	s.mu.Unlock()

	if err := s.mirror.Set(token); err != nil {
		s.logger.Warn("write credential mirror", "error", err)
	}
	s.persist(token, user)
}

// ClearSession empties the session, removes the persisted row and
// clears the mirror.
func (s *Store) ClearSession() {
	s.mu.Lock()
	s.sess = Session{}
	s.dirty = true
	s.mu.Unlock()

	if err := s.mirror.Clear(); err != nil {
		s.logger.Warn("clear credential mirror", "error", err)
	}
	if err := s.db.deleteSession(); err != nil {
		s.logger.Warn("clear persisted session", "error", err)
	}
}

func (s *Store) persist(token string, user *api.User) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("encode session user", "error", err)
		return
	}
	if err := s.db.saveSession(token, string(userJSON), time.Now().Unix()); err != nil {
		s.logger.Warn("persist session", "error", err)
	}
}

// HasHydrated reports whether restoration has finished.
func (s *Store) HasHydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// OnHydrated registers a one-shot callback for hydration completion.
// If restoration already finished the callback runs immediately on the
// calling goroutine.
func (s *Store) OnHydrated(fn func()) {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		fn()
		return
	}
	s.waiters = append(s.waiters, fn)
	s.mu.Unlock()
}
