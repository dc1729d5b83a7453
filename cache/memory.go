package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vitalvas/edgemux/mux"
)

// Memory stores responses in a map.
//
// Server restarts reset the cache and entries are not shared between
// processes; use Redis when running more than one instance.
type Memory struct {
	mu      sync.Mutex
	entries map[mux.CacheKey]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	res     *mux.Result
	expires time.Time
}

// NewMemory returns an empty Memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[mux.CacheKey]memoryEntry),
		now:     time.Now,
	}
}

// Match returns a copy of the response stored under key, or nil when there
// is none or it expired.
func (m *Memory) Match(ctx context.Context, key mux.CacheKey) (*mux.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, nil
	}

	if !m.now().Before(e.expires) {
		delete(m.entries, key)
		return nil, nil
	}

	return e.res.Clone(), nil
}

// Put stores a copy of res under key for its Cache-Control lifetime. An
// uncacheable res leaves any entry already stored under key in place.
//
// For each call to Put, expired entries are evicted.
func (m *Memory) Put(ctx context.Context, key mux.CacheKey, res *mux.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ttl := TTL(res)

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
		}
	}

	if ttl <= 0 {
		return nil
	}

	m.entries[key] = memoryEntry{res: res.Clone(), expires: now.Add(ttl)}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}
