package cache

import (
	"math"
	"sort"
	"sync"
	"time"

	"cache-viewer/internal/models"
)

// item stores a cached value and its absolute expiration timestamp.
type item struct {
	value     string
	expiresAt time.Time // zero means no expiration
}

// TTLCache is a map-backed cache with per-entry TTL. Expired entries are
// dropped lazily on access or via PurgeExpired.
type TTLCache struct {
	// If muPtr is nil, the cache is NOT goroutine-safe.
	muPtr *sync.RWMutex

	items map[string]item
}

// Options controls construction of a TTLCache.
type Options struct {
	// ConcurrencySafe controls whether operations are guarded by a RWMutex.
	ConcurrencySafe bool
}

// NewTTLCache constructs a new TTLCache with the given options.
func NewTTLCache(opts Options) *TTLCache {
	var mu *sync.RWMutex
	if opts.ConcurrencySafe {
		mu = &sync.RWMutex{}
	}
	return &TTLCache{
		muPtr: mu,
		items: make(map[string]item),
	}
}

func (c *TTLCache) lockR() func() {
	if c.muPtr == nil {
		return func() {}
	}
	c.muPtr.RLock()
	return c.muPtr.RUnlock
}

func (c *TTLCache) lockW() func() {
	if c.muPtr == nil {
		return func() {}
	}
	c.muPtr.Lock()
	return c.muPtr.Unlock
}

// now is a small indirection to allow test stubbing.
var now = time.Now

func (i item) expired(at time.Time) bool {
	return !i.expiresAt.IsZero() && !at.Before(i.expiresAt)
}

// remaining reports the TTL left in whole seconds, rounded up so a live entry
// never reports zero. Entries without expiry report zero.
func (i item) remaining(at time.Time) int64 {
	if i.expiresAt.IsZero() {
		return 0
	}
	return int64(math.Ceil(i.expiresAt.Sub(at).Seconds()))
}

// Get implements Cache.Get.
func (c *TTLCache) Get(key string) (models.CacheEntry, bool) {
	unlock := c.lockR()
	defer unlock()

	ts := now()
	it, ok := c.items[key]
	if !ok || it.expired(ts) {
		return models.CacheEntry{}, false
	}
	return models.CacheEntry{Key: key, Value: it.value, Expiry: it.remaining(ts)}, true
}

// Set implements Cache.Set.
func (c *TTLCache) Set(key, value string, ttl time.Duration) {
	unlock := c.lockW()
	defer unlock()

	var exp time.Time
	if ttl > 0 {
		exp = now().Add(ttl)
	}
	c.items[key] = item{value: value, expiresAt: exp}
}

// Delete implements Cache.Delete.
func (c *TTLCache) Delete(key string) bool {
	unlock := c.lockW()
	defer unlock()

	it, ok := c.items[key]
	if !ok {
		return false
	}
	delete(c.items, key)
	return !it.expired(now())
}

// Entries implements Cache.Entries.
func (c *TTLCache) Entries() []models.CacheEntry {
	unlock := c.lockR()
	defer unlock()

	ts := now()
	entries := make([]models.CacheEntry, 0, len(c.items))
	for k, it := range c.items {
		if it.expired(ts) {
			continue
		}
		entries = append(entries, models.CacheEntry{Key: k, Value: it.value, Expiry: it.remaining(ts)})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Len implements Cache.Len. It counts only non-expired entries.
func (c *TTLCache) Len() int {
	unlock := c.lockR()
	defer unlock()

	ts := now()
	count := 0
	for _, it := range c.items {
		if !it.expired(ts) {
			count++
		}
	}
	return count
}

// Clear implements Cache.Clear.
func (c *TTLCache) Clear() {
	unlock := c.lockW()
	defer unlock()
	c.items = make(map[string]item)
}

// PurgeExpired implements Cache.PurgeExpired.
func (c *TTLCache) PurgeExpired() int {
	unlock := c.lockW()
	defer unlock()
	if len(c.items) == 0 {
		return 0
	}
	ts := now()
	purged := 0
	for k, it := range c.items {
		if it.expired(ts) {
			delete(c.items, k)
			purged++
		}
	}
	return purged
}

// Ensure TTLCache implements Cache at compile time.
var _ Cache = (*TTLCache)(nil)
