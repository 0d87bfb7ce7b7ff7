package cache

import (
	"context"
	"sync"
	"time"

	"github.com/yojanamitra-core/server/internal/model"
)

type memoryEntry struct {
	entry     model.CacheEntry
	expiresAt time.Time
}

// MemoryCache is the in-process backend for tests and reduced-mode operation.
type MemoryCache struct {
	mu       sync.Mutex
	cfg      Config
	entries  map[string]memoryEntry
	byScheme map[string]map[string]struct{}
	now      func() time.Time
}

func NewMemoryCache(cfg Config) *MemoryCache {
	return &MemoryCache{
		cfg:      cfg,
		entries:  make(map[string]memoryEntry),
		byScheme: make(map[string]map[string]struct{}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Get implements Cache.
func (c *MemoryCache) Get(ctx context.Context, fingerprint string) (*model.CacheEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[fingerprint]
	if !ok {
		return nil, false, nil
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, fingerprint)
		return nil, false, nil
	}
	out := e.entry
	return &out, true, nil
}

// Put implements Cache.
func (c *MemoryCache) Put(ctx context.Context, fingerprint string, entry model.CacheEntry, class Class) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[fingerprint] = memoryEntry{entry: entry, expiresAt: c.now().Add(c.cfg.ttl(class))}
	for _, schemeID := range entry.SchemeIDs {
		set, ok := c.byScheme[schemeID]
		if !ok {
			set = make(map[string]struct{})
			c.byScheme[schemeID] = set
		}
		set[fingerprint] = struct{}{}
	}
	return nil
}

// InvalidateByScheme implements Cache.
func (c *MemoryCache) InvalidateByScheme(ctx context.Context, schemeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for fp := range c.byScheme[schemeID] {
		delete(c.entries, fp)
	}
	delete(c.byScheme, schemeID)
	return nil
}

var _ Cache = (*MemoryCache)(nil)
