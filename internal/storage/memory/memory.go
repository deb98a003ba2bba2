// Package memory provides an in-process implementation of storage.Store.
// Nothing survives a restart; it backs tests and STORAGE_BACKEND=memory.
package memory

import (
	"context"
	"sync"

	"github.com/mmynk/splitledger/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps documents in a map.
type Store struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// New creates an empty Store.
func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

// Load returns a copy of the document under key.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), doc...), nil
}

// Save stores a copy of doc under key.
func (s *Store) Save(ctx context.Context, key string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[key] = append([]byte(nil), doc...)
	return nil
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, key)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
