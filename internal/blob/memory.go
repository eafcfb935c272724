package blob

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store for tests and local mode.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte // key: users/{id}/{kind}.json
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory blob store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte)}
}

func (m *Memory) Save(_ context.Context, userID string, kind Kind, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.blobs[key(userID, kind)] = cp
	return nil
}

func (m *Memory) Load(_ context.Context, userID string, kind Kind) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key(userID, kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %s for user %s", ErrNotFound, kind, userID)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *Memory) Exists(_ context.Context, userID string) (map[Kind]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status := make(map[Kind]bool, len(Kinds))
	for _, kind := range Kinds {
		_, ok := m.blobs[key(userID, kind)]
		status[kind] = ok
	}
	return status, nil
}

func (m *Memory) DeleteAll(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, kind := range Kinds {
		delete(m.blobs, key(userID, kind))
	}
	return nil
}
