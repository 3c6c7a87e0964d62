package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryPageCache is a process-local PageCache. It is the default when no
// redis address is configured, and the one the tests run against.
type MemoryPageCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryPageCache() *MemoryPageCache {
	return &MemoryPageCache{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

func (c *MemoryPageCache) Get(_ context.Context, key string) (*Entry, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || c.now().After(item.expiresAt) {
		return nil, ErrCacheMiss
	}

	entry := item.entry
	return &entry, nil
}

func (c *MemoryPageCache) Set(_ context.Context, key string, entry *Entry, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = memoryItem{
		entry:     *entry,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *MemoryPageCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]memoryItem)
	return nil
}

var _ PageCache = (*MemoryPageCache)(nil)
