package session

import (
	"context"
	"sync"
	"time"

	"github.com/Trivo121/side-projects/internal/matching"
	"github.com/Trivo121/side-projects/internal/profile"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
}

// NewMemoryStore returns an empty store. A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (m *MemoryStore) Create(_ context.Context, p profile.Profile) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpired()
	s := newSession(p, m.now())
	m.sessions[s.ID] = s
	return clone(s), nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *MemoryStore) SaveRecommendations(_ context.Context, id string, recs []matching.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		return ErrNotFound
	}
	s.Recommendations = append([]matching.Recommendation{}, recs...)
	s.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || m.expired(s) {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, s := range m.sessions {
		if !m.expired(s) {
			n++
		}
	}
	return n
}

func (m *MemoryStore) expired(s *Session) bool {
	return m.now().Sub(s.UpdatedAt) > m.ttl
}

// evictExpired must be called with the write lock held.
func (m *MemoryStore) evictExpired() {
	for id, s := range m.sessions {
		if m.expired(s) {
			delete(m.sessions, id)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	c.Profile.TechnicalSkills = append([]string(nil), s.Profile.TechnicalSkills...)
	if s.Recommendations != nil {
		c.Recommendations = append([]matching.Recommendation{}, s.Recommendations...)
	}
	return &c
}
