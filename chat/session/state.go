package session

import (
	"sync"

	"github.com/google/uuid"
)

// seedNonceLen is the number of characters taken from a freshly generated
// UUID to seed the auth nonce before the server has issued one.
const seedNonceLen = 8

// State is a point-in-time view of the server-issued session state.
type State struct {
	// AffinityID routes subsequent requests to the backend that owns the
	// chat session. Empty until the server assigns one.
	AffinityID string

	// AuthNonce is the rotating anti-replay token echoed on authenticated
	// requests. Never empty; seeded locally at construction.
	AuthNonce string
}

// Partial carries the fields of a commit. Nil fields leave the current
// value untouched, so a response without a fresh nonce cannot erase one.
type Partial struct {
	AffinityID *string
	AuthNonce  *string
}

// Store holds the session state shared by all calls made through one client.
// Values are only ever replaced, never removed; the last committed value wins.
type Store struct {
	mu    sync.Mutex
	state State
}

// NewStore returns a store with a locally seeded auth nonce so the very
// first authenticated call has a nonce to present.
func NewStore() *Store {
	return &Store{
		state: State{AuthNonce: seedNonce()},
	}
}

func seedNonce() string {
	return uuid.NewString()[:seedNonceLen]
}

// Snapshot returns the most recently committed state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Commit overwrites the fields present in p. Commits are totally ordered;
// readers never observe a partially written state.
func (s *Store) Commit(p Partial) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.AffinityID != nil {
		s.state.AffinityID = *p.AffinityID
	}
	if p.AuthNonce != nil {
		s.state.AuthNonce = *p.AuthNonce
	}
}
