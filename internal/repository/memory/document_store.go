package memory

import (
	"bytes"
	"context"
	"sync"

	"emojiart/internal/domain"
)

// DocumentStore is an in-memory implementation of domain.DocumentStore
type DocumentStore struct {
	data   []byte
	writes int
	mu     sync.RWMutex
}

// NewDocumentStore creates an empty in-memory document store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{}
}

// Save replaces the stored document
func (s *DocumentStore) Save(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = bytes.Clone(data)
	s.writes++
	return nil
}

// Load returns the stored document
func (s *DocumentStore) Load(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return nil, domain.ErrNotFound
	}
	return bytes.Clone(s.data), nil
}

// Writes returns how many times the document has been saved
func (s *DocumentStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Close does nothing for the in-memory store
func (s *DocumentStore) Close() error {
	return nil
}
