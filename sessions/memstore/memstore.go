// Package memstore keeps the session snapshot in process memory.
package memstore

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-storefront-client/sessions"
)

var _ sessions.Storage = (*MemStore)(nil)

type MemStore struct {
	values map[string][]byte
	lock   sync.RWMutex
}

func New() *MemStore {
	return &MemStore{
		values: make(map[string][]byte),
	}
}

func (m *MemStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemStore) Set(_ context.Context, key string, data []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.values[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemStore) Delete(_ context.Context, key string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemStore) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.values)
}
