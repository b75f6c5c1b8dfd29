package docs

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

const (
	DefaultCacheEntries = 10
	DefaultCacheTTL     = time.Hour
)

// CrateKey identifies a cached crate version.
type CrateKey struct {
	Name    string
	Version string
}

type cacheEntry struct {
	crate        *RustdocCrate
	fetchedAt    time.Time
	lastAccessed time.Time
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Entries     int
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	Expirations uint64
}

// Cache holds decoded crates in memory with a TTL and LRU eviction.
//
// Concurrent GetOrFetch calls for the same missing key each fetch; the last
// insert wins.
type Cache struct {
	mu         sync.Mutex
	entries    map[CrateKey]*cacheEntry
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger
	stats      CacheStats
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// WithCacheLogger sets the logger used for eviction and expiry events.
func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = l
	}
}

// NewCache creates a cache holding at most maxEntries crates, each for at
// most ttl. maxEntries below 1 is treated as 1.
func NewCache(maxEntries int, ttl time.Duration, opts ...CacheOption) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	c := &Cache{
		entries:    make(map[CrateKey]*cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached crate, or nil if absent or expired. Expired entries
// are removed.
func (c *Cache) Get(name, version string) *RustdocCrate {
	key := CrateKey{name, version}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil
	}
	now := c.now()
	if now.Sub(e.fetchedAt) > c.ttl {
		delete(c.entries, key)
		c.stats.Expirations++
		c.stats.Misses++
		c.logger.Debug("cache entry expired", "crate", name, "version", version)
		return nil
	}
	e.lastAccessed = now
	c.stats.Hits++
	return e.crate
}

// Insert stores crate under (name, version), purging expired entries and
// evicting the least recently accessed entry if the cache is full.
func (c *Cache) Insert(name, version string, crate *RustdocCrate) {
	key := CrateKey{name, version}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.fetchedAt) > c.ttl {
			delete(c.entries, k)
			c.stats.Expirations++
		}
	}

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		var (
			oldest     CrateKey
			oldestAt   time.Time
			haveVictim bool
		)
		for k, e := range c.entries {
			if !haveVictim || e.lastAccessed.Before(oldestAt) {
				oldest, oldestAt, haveVictim = k, e.lastAccessed, true
			}
		}
		if haveVictim {
			delete(c.entries, oldest)
			c.stats.Evictions++
			c.logger.Debug("cache entry evicted", "crate", oldest.Name, "version", oldest.Version)
		}
	}

	c.entries[key] = &cacheEntry{crate: crate, fetchedAt: now, lastAccessed: now}
}

// GetOrFetch returns the cached crate or fetches and caches it. Fetch errors
// are returned unchanged and nothing is cached.
func (c *Cache) GetOrFetch(ctx context.Context, f CrateFetcher, name, version string) (*RustdocCrate, error) {
	if crate := c.Get(name, version); crate != nil {
		return crate, nil
	}
	crate, err := f.Fetch(ctx, name, version)
	if err != nil {
		return nil, err
	}
	c.Insert(name, version, crate)
	return crate, nil
}

// Len returns the number of entries, including expired ones not yet purged.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// Keys returns the cached keys sorted by name then version.
func (c *Cache) Keys() []CrateKey {
	c.mu.Lock()
	keys := make([]CrateKey, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Version < keys[j].Version
	})
	return keys
}
