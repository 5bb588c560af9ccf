package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document is stored under a key
var ErrNotFound = errors.New("document not found")

// DocumentStore persists opaque documents under string keys.
// Implementations must be safe for concurrent use.
type DocumentStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Update applies every write recorded in the batch atomically. If fn
	// returns an error nothing is written.
	Update(ctx context.Context, fn func(b *Batch) error) error
	Ping(ctx context.Context) error
	Close() error
}

type opKind int

const (
	opPut opKind = iota
	opDelete
)

type op struct {
	kind  opKind
	key   string
	value []byte
}

// Batch records writes to be applied together
type Batch struct {
	ops []op
}

// Put records a write of value under key
func (b *Batch) Put(key string, value []byte) {
	b.ops = append(b.ops, op{kind: opPut, key: key, value: value})
}

// Delete records removal of key
func (b *Batch) Delete(key string) {
	b.ops = append(b.ops, op{kind: opDelete, key: key})
}

// Len returns the number of recorded writes
func (b *Batch) Len() int {
	return len(b.ops)
}

func collect(fn func(b *Batch) error) (*Batch, error) {
	b := &Batch{}
	if err := fn(b); err != nil {
		return nil, err
	}
	return b, nil
}
