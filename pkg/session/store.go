package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxPairs is the number of user/assistant pairs kept when no limit is configured
const DefaultMaxPairs = 10

// Store is the ordered chat log of a single session.
// It has one writer; the lock only guards reads from the idle reaper.
type Store struct {
	id         string
	createdAt  time.Time
	lastActive time.Time
	turns      []Turn
	mu         sync.RWMutex
}

// NewStore creates an empty store with a fresh session ID
func NewStore() *Store {
	now := time.Now()
	return &Store{
		id:         uuid.New().String(),
		createdAt:  now,
		lastActive: now,
		turns:      []Turn{},
	}
}

// ID returns the session ID
func (s *Store) ID() string {
	return s.id
}

// CreatedAt returns when the session started
func (s *Store) CreatedAt() time.Time {
	return s.createdAt
}

// LastActive returns the time of the last mutation
func (s *Store) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

// Append adds a turn to the end of the log
func (s *Store) Append(turn Turn) error {
	if err := turn.Validate(); err != nil {
		return err
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, turn)
	s.lastActive = time.Now()
	return nil
}

// Trim discards the oldest turns so at most 2*maxPairs remain.
// It returns the number of turns removed.
func (s *Store) Trim(maxPairs int) int {
	if maxPairs <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	limit := 2 * maxPairs
	excess := len(s.turns) - limit
	if excess <= 0 {
		return 0
	}

	kept := make([]Turn, limit)
	copy(kept, s.turns[excess:])
	s.turns = kept
	return excess
}

// All returns a copy of the log in insertion order
func (s *Store) All() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

// Len returns the number of stored turns
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Truncate rolls the log back to its first n turns
func (s *Store) Truncate(n int) {
	if n < 0 {
		n = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n >= len(s.turns) {
		return
	}
	s.turns = s.turns[:n]
	s.lastActive = time.Now()
}

// Clear removes every turn
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = []Turn{}
	s.lastActive = time.Now()
}
