package repository

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
)

// MemoryStore is an in-process DocumentStore. Data does not survive restarts.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[string][]byte
	logger *zap.Logger
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		docs:   make(map[string][]byte),
		logger: logger,
	}
}

// Get returns a copy of the document stored under key
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.docs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(value), nil
}

// Put stores value under key
func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[key] = slices.Clone(value)
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, key)
	return nil
}

// Update applies the batch under a single lock
func (s *MemoryStore) Update(ctx context.Context, fn func(b *Batch) error) error {
	b, err := collect(fn)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range b.ops {
		switch o.kind {
		case opPut:
			s.docs[o.key] = slices.Clone(o.value)
		case opDelete:
			delete(s.docs, o.key)
		}
	}

	s.logger.Debug("memory batch applied", zap.Int("operations", b.Len()))
	return nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
