package session

import (
	"context"
	"sync"
	"time"

	"github.com/set-night/taskearn/internal/domain"
)

// MemoryStore keeps sessions for the lifetime of the process only.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[int64]domain.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]domain.Session)}
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s, nil
	}
	return domain.Session{UserID: userID}, nil
}

func (m *MemoryStore) Save(_ context.Context, s domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Idle() {
		delete(m.sessions, s.UserID)
		return nil
	}
	s.UpdatedAt = time.Now()
	m.sessions[s.UserID] = s
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
