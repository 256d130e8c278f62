// Package session keeps per-user filter criteria. Each session owns its
// criteria; the record snapshot they are applied to is shared.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wrpfuk/records/internal/domain/filter"
	"github.com/wrpfuk/records/pkg/metrics"
)

// Session is a copy of one session's state.
type Session struct {
	ID        string          `json:"id"`
	Criteria  filter.Criteria `json:"criteria"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// node is an entry in the creation-order list. head is the newest session,
// tail the oldest.
type node struct {
	s          Session
	prev, next *node
}

// Store is a bounded in-memory session store safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	byID        map[string]*node
	head, tail  *node
	maxSessions int
	newID       func() string
	now         func() time.Time
}

// NewStore creates a session store. The default bound is 10000 sessions.
func NewStore(opts ...Option) *Store {
	s := &Store{
		byID:        make(map[string]*node),
		maxSessions: 10_000,
		newID:       uuid.NewString,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a session with default criteria.
func (s *Store) Create(ctx context.Context) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 {
		for len(s.byID) >= s.maxSessions {
			s.evictOldest()
		}
	}

	now := s.now()
	n := &node{s: Session{
		ID:        s.newID(),
		Criteria:  filter.Default(),
		CreatedAt: now,
		UpdatedAt: now,
	}}
	s.pushFront(n)
	s.byID[n.s.ID] = n

	metrics.RecordSessionCreated()
	metrics.UpdateSessionsActive(len(s.byID))
	return n.s
}

// Get returns the session with id.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.byID[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return n.s, nil
}

// Update replaces the session's criteria. Empty structured fields become All.
func (s *Store) Update(ctx context.Context, id string, c filter.Criteria) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	n.s.Criteria = c.Normalized()
	n.s.UpdatedAt = s.now()
	return n.s, nil
}

// Reset restores the default criteria.
func (s *Store) Reset(ctx context.Context, id string) (Session, error) {
	return s.Update(ctx, id, filter.Default())
}

// Delete removes a session. Deleting an unknown ID reports ErrSessionNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.byID[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.unlink(n)
	delete(s.byID, id)
	metrics.UpdateSessionsActive(len(s.byID))
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Must be called with s.mu held.
func (s *Store) evictOldest() {
	if s.tail == nil {
		return
	}
	old := s.tail
	s.unlink(old)
	delete(s.byID, old.s.ID)
	metrics.RecordSessionEvicted()
}

func (s *Store) pushFront(n *node) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

func (s *Store) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
