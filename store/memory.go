package store

import (
	"context"
	"sync"

	"github.com/cppla/socialquest/engine"
)

// MemoryStore keeps encoded states in process memory. Saved states are
// copied, so callers may keep mutating what they saved.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key string) (*engine.State, error) {
	m.mu.RLock()
	b, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return engine.Decode(b)
}

func (m *MemoryStore) Save(_ context.Context, key string, s *engine.State) error {
	b, err := engine.Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = b
	m.mu.Unlock()
	return nil
}
