package cache

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an in-process cache for single-instance deployments.
type Memory struct {
	store      *gocache.Cache
	generation atomic.Int64
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{store: gocache.New(ttl, 2*ttl)}
}

func (m *Memory) Generation(context.Context) (int64, error) {
	return m.generation.Load(), nil
}

func (m *Memory) Get(_ context.Context, generation int64, key string) ([]byte, bool, error) {
	v, ok := m.store.Get(entryKey(generation, key))
	if !ok {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

func (m *Memory) Set(_ context.Context, generation int64, key string, value []byte) error {
	m.store.SetDefault(entryKey(generation, key), value)
	return nil
}

// Invalidate moves to a new generation and drops the old entries right away.
func (m *Memory) Invalidate(context.Context) error {
	m.generation.Add(1)
	m.store.Flush()
	return nil
}

// Close empties the cache. go-cache's janitor goroutine cannot be stopped.
func (m *Memory) Close() error {
	m.store.Flush()
	return nil
}
