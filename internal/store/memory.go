package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/claritycouncil/council/internal/domain"
)

// MemoryStore is the in-process session repository. Sessions live only as
// long as the process; callers are expected to know restarts drop them.
//
// Every stored value is replaced whole on update, and Get hands out deep
// copies, so readers are never exposed to partial writes.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMemoryStore creates an empty in-memory session repository.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
	}
}

// Create stores a new session under a fresh id.
func (m *MemoryStore) Create(_ context.Context, session *domain.Session) (*domain.Session, error) {
	stored := session.Clone()
	stored.SessionID = uuid.NewString()

	m.mu.Lock()
	m.sessions[stored.SessionID] = stored
	m.mu.Unlock()

	return stored.Clone(), nil
}

// Get returns a deep copy of the session, or ErrNotFound.
func (m *MemoryStore) Get(_ context.Context, sessionID string) (*domain.Session, error) {
	m.mu.RLock()
	current, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return current.Clone(), nil
}

// Update applies fn under the store lock, which serializes every
// read-modify-write cycle for the same session id.
func (m *MemoryStore) Update(_ context.Context, sessionID string, fn UpdateFunc) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}

	updated := fn(*current.Clone())
	updated.SessionID = sessionID
	m.sessions[sessionID] = &updated

	return updated.Clone(), nil
}

// Save upserts the session, assigning an id if it has none.
func (m *MemoryStore) Save(_ context.Context, session *domain.Session) (*domain.Session, error) {
	stored := session.Clone()
	if stored.SessionID == "" {
		stored.SessionID = uuid.NewString()
	}

	m.mu.Lock()
	m.sessions[stored.SessionID] = stored
	m.mu.Unlock()

	return stored.Clone(), nil
}

// Delete removes the session if present.
func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

// Len reports the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
