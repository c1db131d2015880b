package cache

import (
	"time"

	"cache-viewer/internal/models"
)

// Cache is the key-value store behind the stand-in cache service.
// Every entry carries its own TTL; there is no eviction policy.
type Cache interface {
	// Get returns the entry with its remaining TTL, if present and not expired.
	Get(key string) (models.CacheEntry, bool)

	// Set stores value under key. If ttl <= 0, the entry does not expire.
	Set(key, value string, ttl time.Duration)

	// Delete removes key and reports whether a live entry was removed.
	Delete(key string) bool

	// Entries returns every live entry sorted by key.
	Entries() []models.CacheEntry

	// Len returns the number of non-expired entries.
	Len() int

	// Clear removes all entries.
	Clear()

	// PurgeExpired removes expired entries and returns how many were dropped.
	PurgeExpired() int
}
