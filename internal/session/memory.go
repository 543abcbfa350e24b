package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in a process-local map. It exists for tests and
// single-process development; it is not a durable backend.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

func (m *MemoryStore) Load(ctx context.Context, token string) (*Session, bool, error) {
	_ = ctx
	m.mu.Lock()
	raw, ok := m.sessions[token]
	m.mu.Unlock()
	if !ok {
		return nil, false, nil
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, false, fmt.Errorf("decode session record: %w", err)
	}
	return &sess, true, nil
}

func (m *MemoryStore) Store(ctx context.Context, sess *Session) (string, error) {
	_ = ctx
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	raw, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("serialize session record: %w", err)
	}
	m.mu.Lock()
	m.sessions[sess.ID] = raw
	m.mu.Unlock()
	return sess.ID, nil
}

func (m *MemoryStore) Destroy(ctx context.Context, sess *Session) error {
	_ = ctx
	m.mu.Lock()
	delete(m.sessions, sess.ID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ClearAll(ctx context.Context) error {
	_ = ctx
	m.mu.Lock()
	m.sessions = make(map[string][]byte)
	m.mu.Unlock()
	return nil
}

// Len reports how many sessions are held; used by tests.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
