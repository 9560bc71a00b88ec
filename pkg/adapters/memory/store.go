package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
)

type entry struct {
	state   *domain.State
	expires time.Time // zero means never
}

// Store keeps live sessions in process memory. Safe for concurrent use.
//
// With a TTL, a session not saved for longer than the TTL is dropped; expired
// entries are evicted lazily on Load and List.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires sessions idle for longer than ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock overrides the clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]entry),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) expired(e entry) bool {
	return !e.expires.IsZero() && !s.now().Before(e.expires)
}

// Save stores a snapshot of state and restarts its idle timer.
func (s *Store) Save(ctx context.Context, sessionID string, state *domain.State) error {
	e := entry{state: state.Snapshot()}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.sessions[sessionID] = e
	s.mu.Unlock()
	return nil
}

// Load returns a snapshot, so callers never share the stored value.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if ok && s.expired(e) {
		delete(s.sessions, sessionID)
		ok = false
	}
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return e.state.Snapshot(), nil
}

// Delete drops the session. Deleting a missing session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// List returns the live session IDs in ascending order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.sessions))
	for id, e := range s.sessions {
		if s.expired(e) {
			delete(s.sessions, id)
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
