// Package memory provides a process-local KeyValueStore.
// Nothing survives a restart; it backs tests and the "memory" storage driver.
package memory

import (
	"context"
	"sync"

	"github.com/jsamuelsen/verse-service/internal/domain"
)

// Store is a map guarded by a RWMutex. Values are copied on the way in and out.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
	closed bool
}

// New creates an empty store.
func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.NewUnavailableError("memory", "store closed")
	}

	v, ok := s.values[key]
	if !ok {
		return nil, domain.NewNotFoundError("key", key)
	}

	return append([]byte(nil), v...), nil
}

// Set replaces the value stored under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.NewUnavailableError("memory", "store closed")
	}

	s.values[key] = append([]byte(nil), value...)

	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)

	return nil
}

// Close marks the store closed. Later reads and writes fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true

	return nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return "memory"
}

// Check reports unavailable after Close.
func (s *Store) Check(context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return domain.NewUnavailableError("memory", "store closed")
	}

	return nil
}
