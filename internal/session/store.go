package session

import (
	"context"
	"sync"
)

// Keys of the two persisted session entries.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Store persists the session's string entries. Implementations scope keys to
// one browser or one CLI profile; the manager is the only writer.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Toucher is implemented by stores whose entries expire after inactivity.
// Touch restarts the idle clock for every entry at once.
type Toucher interface {
	Touch(ctx context.Context) error
}

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore builds a process-local store for tests and one-shot runs.
func NewMemoryStore() Store {
	return &memoryStore{entries: make(map[string]string)}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

func (s *memoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.entries, k)
	}
	return nil
}
