package cache

import (
	"context"
	"sync"
	"time"

	"github.com/amirasaad/pricer/pkg/cache"
	"github.com/amirasaad/pricer/pkg/exchange"
)

// MemoryCache implements cache.SnapshotCache using in-memory storage.
type MemoryCache struct {
	cache map[string]*cacheEntry
	mu    sync.RWMutex
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

type cacheEntry struct {
	snapshot  exchange.Snapshot
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache. Expired entries are swept
// every cleanupInterval until Close is called; zero disables sweeping.
func NewMemoryCache(cleanupInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		cache: make(map[string]*cacheEntry),
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.cleanup(cleanupInterval)
	}
	return c
}

// Get retrieves a snapshot from cache.
func (c *MemoryCache) Get(_ context.Context, key string) (*exchange.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache[key]
	if !exists || c.now().After(entry.expiresAt) {
		return nil, nil
	}
	s := entry.snapshot.Clone()
	return &s, nil
}

// Set stores a snapshot with TTL.
func (c *MemoryCache) Set(_ context.Context, key string, snapshot exchange.Snapshot, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = &cacheEntry{
		snapshot:  snapshot.Clone(),
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Delete removes a snapshot from cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, key)
	return nil
}

// Close stops the cleanup goroutine.
func (c *MemoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *MemoryCache) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *MemoryCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.cache {
		if now.After(entry.expiresAt) {
			delete(c.cache, key)
		}
	}
}

var _ cache.SnapshotCache = (*MemoryCache)(nil)
