package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedStore serves repeated reads from memory and invalidates on every write.
// A read only fills the cache when no write to the same key finished while it
// was loading, so a slow read never reinstates a value that was overwritten.
type CachedStore struct {
	next  DocumentStore
	cache *cache.Cache

	mu   sync.Mutex
	gens map[string]uint64
}

// NewCachedStore wraps next with a read cache whose entries expire after ttl
func NewCachedStore(next DocumentStore, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
		gens:  make(map[string]uint64),
	}
}

// Get returns the cached document or loads it from the wrapped store
func (s *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if x, found := s.cache.Get(key); found {
		return slices.Clone(x.([]byte)), nil
	}

	gen := s.generation(key)
	value, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.fill(key, gen, value)
	return value, nil
}

// Put writes through and drops the cached copy
func (s *CachedStore) Put(ctx context.Context, key string, value []byte) error {
	defer s.invalidate(key)
	return s.next.Put(ctx, key, value)
}

// Delete writes through and drops the cached copy
func (s *CachedStore) Delete(ctx context.Context, key string) error {
	defer s.invalidate(key)
	return s.next.Delete(ctx, key)
}

// Update delegates the batch and invalidates every touched key
func (s *CachedStore) Update(ctx context.Context, fn func(b *Batch) error) error {
	var touched []string
	err := s.next.Update(ctx, func(b *Batch) error {
		if err := fn(b); err != nil {
			return err
		}
		for _, o := range b.ops {
			touched = append(touched, o.key)
		}
		return nil
	})
	s.invalidate(touched...)
	return err
}

// Ping delegates to the wrapped store
func (s *CachedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close flushes the cache and closes the wrapped store
func (s *CachedStore) Close() error {
	s.cache.Flush()
	return s.next.Close()
}

func (s *CachedStore) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[key]
}

// fill caches value unless a write to key completed since gen was read
func (s *CachedStore) fill(key string, gen uint64, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[key] != gen {
		return
	}
	s.cache.Set(key, slices.Clone(value), cache.DefaultExpiration)
}

func (s *CachedStore) invalidate(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.gens[key]++
		s.cache.Delete(key)
	}
}
