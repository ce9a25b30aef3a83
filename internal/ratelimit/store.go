package ratelimit

import (
	"sync"
	"time"
)

type windowEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryStore is the process-local WindowStore. Counters for finished windows
// become unreadable once their expiry passes and are pruned on access.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]windowEntry
	now     func() time.Time
}

// NewMemoryStore constructs an empty in-memory window store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]windowEntry),
		now:     time.Now,
	}
}

// NewMemoryStoreWithClock constructs a store with an injected time source.
func NewMemoryStoreWithClock(clock func() time.Time) *MemoryStore {
	s := NewMemoryStore()
	if clock != nil {
		s.now = clock
	}
	return s
}

// Count returns the current counter value, treating absent or expired
// windows as zero.
func (s *MemoryStore) Count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return 0
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return 0
	}
	return entry.count
}

// Increment adds amount to the counter, setting the expiry on first write for
// a window, and returns the new value.
func (s *MemoryStore) Increment(key string, amount int, expiry time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.expiresAt) {
		entry = windowEntry{expiresAt: s.now().Add(expiry)}
	}
	entry.count += amount
	s.entries[key] = entry
	return entry.count
}
