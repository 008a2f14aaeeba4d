// Package cache provides the mosque-directory cache: a short-TTL store for
// expensive directory payloads (country mosque lists, scraped page data).
// It is an explicit, injected object; nothing here is package-global.
package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL is how long a directory entry stays fresh.
const DefaultTTL = time.Hour

// FetchFunc produces the payload for a key on a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

// Directory is the mosque-directory cache contract. GetOrFetch returns the
// cached payload when fresh, otherwise invokes fetch and stores the result.
type Directory interface {
	GetOrFetch(ctx context.Context, key string, fetch FetchFunc) ([]byte, error)
	Invalidate(key string)
}

type memoryEntry struct {
	data     []byte
	cachedAt time.Time
}

// Memory is the in-process Directory: a mutex-guarded map with wall-clock
// freshness. The lock is held only for map reads and writes, never across a
// fetch.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

var _ Directory = (*Memory)(nil)

// NewMemory creates an in-memory directory cache. A ttl <= 0 falls back to
// DefaultTTL.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) ([]byte, error) {
	m.mu.Lock()
	entry, ok := m.entries[key]
	fresh := ok && m.now().Sub(entry.cachedAt) < m.ttl
	m.mu.Unlock()

	if fresh {
		return entry.data, nil
	}

	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{data: data, cachedAt: m.now()}
	m.mu.Unlock()

	return data, nil
}

func (m *Memory) Invalidate(key string) {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
}
