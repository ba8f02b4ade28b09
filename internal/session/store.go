// Package session holds the per-browser editing state of the configuration
// builder: the working workflow config, its undo/redo history, and a
// memoization cache scoped to the session.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/CirroBioApps/cirro-configure-workflow/internal/workflow"
)

// DefaultTTL is how long a session survives without activity.
const DefaultTTL = 12 * time.Hour

// historyLimit bounds the undo stack so long editing sessions cannot grow
// memory without bound.
const historyLimit = 200

// Session is the editing state for one browser session. All methods are
// safe for concurrent use.
type Session struct {
	id string

	mu       sync.Mutex
	config   *workflow.Config
	history  [][]byte
	future   [][]byte
	lastUsed time.Time

	cache cache
}

// ID returns the session identifier used in the cookie.
func (s *Session) ID() string { return s.id }

// Config returns a deep copy of the working configuration.
func (s *Session) Config() *workflow.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Clone()
}

// Update applies a mutation to the working configuration, recording an undo
// snapshot first. A failed mutation leaves the configuration and history
// untouched.
func (s *Session) Update(mutate func(cfg *workflow.Config) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.config.Clone()
	if err := mutate(next); err != nil {
		return err
	}

	snap, err := s.config.MarshalSnapshot()
	if err != nil {
		return err
	}
	s.history = append(s.history, snap)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
	s.future = nil
	s.config = next
	return nil
}

// Replace swaps in a whole new configuration, recording an undo snapshot.
func (s *Session) Replace(cfg *workflow.Config) error {
	return s.Update(func(current *workflow.Config) error {
		*current = *cfg.Clone()
		return nil
	})
}

// Undo restores the previous configuration. It reports whether there was
// anything to undo.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return false
	}
	snap := s.history[len(s.history)-1]
	restored, err := workflow.ParseSnapshot(snap)
	if err != nil {
		return false
	}
	current, err := s.config.MarshalSnapshot()
	if err != nil {
		return false
	}
	s.history = s.history[:len(s.history)-1]
	s.future = append(s.future, current)
	s.config = restored
	return true
}

// Redo reapplies the most recently undone configuration. It reports whether
// there was anything to redo.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.future) == 0 {
		return false
	}
	snap := s.future[len(s.future)-1]
	restored, err := workflow.ParseSnapshot(snap)
	if err != nil {
		return false
	}
	current, err := s.config.MarshalSnapshot()
	if err != nil {
		return false
	}
	s.future = s.future[:len(s.future)-1]
	s.history = append(s.history, current)
	s.config = restored
	return true
}

// CanUndo reports whether an undo snapshot is available.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history) > 0
}

// CanRedo reports whether a redo snapshot is available.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.future) > 0
}

// Reset replaces the configuration with a fresh default and drops the
// history and cached values.
func (s *Session) Reset() {
	s.mu.Lock()
	s.config = workflow.NewConfig()
	s.history = nil
	s.future = nil
	s.mu.Unlock()
	s.cache.clear()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed) > ttl
}

// Store is a thread-safe in-memory session store. Sessions expire after a
// period of inactivity; expiry is checked on read.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

// NewStore creates an empty session store with the default TTL.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      DefaultTTL,
	}
}

// Create stores a new session seeded with the default configuration and
// returns it.
func (st *Store) Create() *Session {
	sess := &Session{
		id:       randomHex(16),
		config:   workflow.NewConfig(),
		lastUsed: time.Now(),
	}
	st.mu.Lock()
	st.sessions[sess.id] = sess
	st.mu.Unlock()
	return sess
}

// Get returns a session by ID, or nil if missing or expired. Reading a live
// session extends its lifetime.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil
	}
	now := time.Now()
	if sess.expired(now, st.ttl) {
		st.Delete(id)
		return nil
	}
	sess.touch(now)
	return sess
}

// Delete removes a session by ID.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// randomHex generates a cryptographically random hex string of n bytes.
func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
