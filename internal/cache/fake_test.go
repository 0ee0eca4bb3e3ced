package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errPrimaryDown = errors.New("primary down")

// fakeStore is a MemoryStore that can be switched into a failing mode and
// counts the calls it receives.
type fakeStore struct {
	mu      sync.Mutex
	inner   *MemoryStore
	failing bool
	calls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{inner: NewMemoryStore()}
}

func (f *fakeStore) setFailing(v bool) {
	f.mu.Lock()
	f.failing = v
	f.mu.Unlock()
}

func (f *fakeStore) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeStore) check() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing {
		return errPrimaryDown
	}
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := f.check(); err != nil {
		return nil, false, err
	}
	return f.inner.Get(ctx, key)
}

func (f *fakeStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.inner.Set(ctx, key, value, ttl)
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if err := f.check(); err != nil {
		return err
	}
	return f.inner.Delete(ctx, key)
}

func (f *fakeStore) Ping(context.Context) error {
	return f.check()
}
