package session

import (
	"context"
	"errors"
	"sync"

	"github.com/smallbiznis/billdesk/internal/clock"
)

var ErrNotFound = errors.New("session_not_found")

type Store interface {
	Save(ctx context.Context, sess Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process. Used when Redis is not configured and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	clock    clock.Clock
	sessions map[string]Session
}

func NewMemoryStore(clk clock.Clock) *MemoryStore {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &MemoryStore{
		clock:    clk,
		sessions: make(map[string]Session),
	}
}

func (m *MemoryStore) Save(ctx context.Context, sess Session) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	_ = ctx
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return Session{}, ErrNotFound
	}
	if !sess.ExpiresAt.IsZero() && !m.clock.Now().Before(sess.ExpiresAt) {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
