package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/goliatone/go-translate/internal/logging"
	"github.com/goliatone/go-translate/pkg/interfaces"
)

// DefaultTTL is the soft expiry applied to entries when none is configured.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "translate_cache_"

// Unit identifies one translation for caching purposes. Two units are
// equivalent iff all four fields match byte for byte; an empty SourceLang
// means vendor-side language detection.
type Unit struct {
	Text        string `json:"t"`
	SourceLang  string `json:"s"`
	TargetLang  string `json:"d"`
	ProviderKey string `json:"p"`
}

// Key returns the deterministic content address for the unit.
func (u Unit) Key() string {
	encoded, _ := json.Marshal(u)
	sum := sha256.Sum256(encoded)
	return keyPrefix + hex.EncodeToString(sum[:])
}

type entry struct {
	value     string
	expiresAt time.Time
}

// Option mutates the cache configuration.
type Option func(*Cache)

// WithTTL overrides the soft expiry window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSlowTier attaches a persistent tier consulted on fast-tier misses.
func WithSlowTier(provider interfaces.CacheProvider) Option {
	return func(c *Cache) {
		c.slow = provider
	}
}

// WithLogger overrides the logger used for degraded reads/writes.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source for expiry checks.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) {
		if clock != nil {
			c.now = clock
		}
	}
}

// Cache memoizes provider translations. It is a pure function memo: storing
// and re-fetching the same key yields the stored value until overwritten,
// last writer wins. A failed read or write degrades to a miss and never
// blocks translation.
type Cache struct {
	mu     sync.RWMutex
	fast   map[string]entry
	slow   interfaces.CacheProvider
	ttl    time.Duration
	logger interfaces.Logger
	now    func() time.Time
}

// New constructs a translation cache with an in-memory fast tier.
func New(opts ...Option) *Cache {
	c := &Cache{
		fast:   make(map[string]entry),
		ttl:    DefaultTTL,
		logger: logging.NoOp(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the memoized translation for the unit, reporting whether one
// was present. A slow-tier hit repopulates the fast tier before returning.
func (c *Cache) Get(ctx context.Context, unit Unit) (string, bool) {
	key := unit.Key()

	c.mu.RLock()
	cached, ok := c.fast[key]
	c.mu.RUnlock()
	if ok {
		if c.now().Before(cached.expiresAt) {
			return cached.value, true
		}
		c.mu.Lock()
		if current, still := c.fast[key]; still && !c.now().Before(current.expiresAt) {
			delete(c.fast, key)
		}
		c.mu.Unlock()
	}

	if c.slow == nil {
		return "", false
	}

	raw, err := c.slow.Get(ctx, key)
	if err != nil || raw == nil {
		if err != nil {
			c.logger.Debug("cache slow tier read failed", "key", key, "error", err)
		}
		return "", false
	}
	value, ok := raw.(string)
	if !ok {
		c.logger.Debug("cache slow tier returned unexpected type", "key", key)
		return "", false
	}

	c.mu.Lock()
	c.fast[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return value, true
}

// Set stores the translation for the unit in both tiers. Writes are
// idempotent; the last writer for a key wins.
func (c *Cache) Set(ctx context.Context, unit Unit, translated string) {
	key := unit.Key()

	c.mu.Lock()
	c.fast[key] = entry{value: translated, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()

	if c.slow == nil {
		return
	}
	if err := c.slow.Set(ctx, key, translated, c.ttl); err != nil {
		c.logger.Warn("cache slow tier write failed", "key", key, "error", err)
	}
}
