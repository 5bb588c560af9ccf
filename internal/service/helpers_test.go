package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vcscsvcscs/healthwise/apps/backend/internal/repository"
)

// testClock is a settable clock shared by the stores under test
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock(t time.Time) *testClock {
	return &testClock{t: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type testStores struct {
	store    repository.DocumentStore
	symptoms *SymptomStore
	chats    *ChatStore
	clock    *testClock
}

// newTestStores wires both stores to one in-memory backend and a UTC test clock
func newTestStores(t *testing.T) testStores {
	t.Helper()

	store := repository.NewMemoryStore(zap.NewNop())
	clock := newTestClock(testNow)

	symptoms := NewSymptomStore(store, zap.NewNop())
	symptoms.now = clock.Now
	symptoms.location = time.UTC

	chats := NewChatStore(store, zap.NewNop())
	chats.now = clock.Now
	chats.location = time.UTC

	return testStores{store: store, symptoms: symptoms, chats: chats, clock: clock}
}

// failingUpdateStore rejects every transactional write
type failingUpdateStore struct {
	repository.DocumentStore
}

func (failingUpdateStore) Update(ctx context.Context, fn func(b *repository.Batch) error) error {
	return errors.New("transaction aborted")
}
