package memory

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-translate/pkg/interfaces"
)

// CacheProvider is an in-memory TTL key-value store. It backs the preview
// store and serves as the translation cache's slow tier when no external
// store is configured.
type CacheProvider struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

var _ interfaces.CacheProvider = (*CacheProvider)(nil)

// NewCacheProvider constructs the store.
func NewCacheProvider() *CacheProvider {
	return NewCacheProviderWithClock(time.Now)
}

// NewCacheProviderWithClock constructs the store with an injected time
// source, for tests.
func NewCacheProviderWithClock(clock func() time.Time) *CacheProvider {
	return &CacheProvider{
		entries: make(map[string]cacheEntry),
		now:     clock,
	}
}

// Get returns the stored value, or nil when absent or expired.
func (c *CacheProvider) Get(_ context.Context, key string) (any, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	return entry.value, nil
}

// Set stores the value. A zero ttl means no expiry.
func (c *CacheProvider) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Delete removes the key.
func (c *CacheProvider) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Clear removes every key.
func (c *CacheProvider) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
	return nil
}
