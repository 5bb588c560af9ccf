package repository

import (
	"context"
	"fmt"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/security"
)

// EncryptedStore seals every document before it reaches the wrapped store
type EncryptedStore struct {
	next      DocumentStore
	encryptor *security.Encryptor
}

// NewEncryptedStore wraps next with AES-GCM encryption at rest
func NewEncryptedStore(next DocumentStore, encryptor *security.Encryptor) *EncryptedStore {
	return &EncryptedStore{next: next, encryptor: encryptor}
}

// Get loads and decrypts the document stored under key
func (s *EncryptedStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	value, err := s.encryptor.Open(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt document %s: %w", key, err)
	}
	return value, nil
}

// Put encrypts and stores value
func (s *EncryptedStore) Put(ctx context.Context, key string, value []byte) error {
	sealed, err := s.encryptor.Seal(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt document %s: %w", key, err)
	}
	return s.next.Put(ctx, key, sealed)
}

// Delete removes key from the wrapped store
func (s *EncryptedStore) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, key)
}

// Update encrypts every recorded put before delegating the batch
func (s *EncryptedStore) Update(ctx context.Context, fn func(b *Batch) error) error {
	return s.next.Update(ctx, func(inner *Batch) error {
		plain, err := collect(fn)
		if err != nil {
			return err
		}
		for _, o := range plain.ops {
			switch o.kind {
			case opPut:
				sealed, err := s.encryptor.Seal(o.value)
				if err != nil {
					return fmt.Errorf("failed to encrypt document %s: %w", o.key, err)
				}
				inner.Put(o.key, sealed)
			case opDelete:
				inner.Delete(o.key)
			}
		}
		return nil
	})
}

// Ping delegates to the wrapped store
func (s *EncryptedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

// Close closes the wrapped store
func (s *EncryptedStore) Close() error {
	return s.next.Close()
}
