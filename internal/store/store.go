// Package store holds the last known snapshot of the remote cache.
package store

import (
	"sync"
	"sync/atomic"

	"cache-viewer/internal/models"
	"cache-viewer/internal/realtime"
)

// Store is the Entry Store: a snapshot container replaced wholesale on every write.
// Writers are serialized; readers never block and never see a partial snapshot.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[models.Snapshot]
	hub     *realtime.Hub
	closed  bool
}

// New creates an empty store. hub may be nil when nobody subscribes.
func New(hub *realtime.Hub) *Store {
	s := &Store{hub: hub}
	s.current.Store(&models.Snapshot{Entries: []models.CacheEntry{}})
	return s
}

// Current returns the installed snapshot.
func (s *Store) Current() models.Snapshot {
	return *s.current.Load()
}

// Replace installs entries as the new snapshot, clears any error and bumps the version.
// Empty keys and repeated keys are dropped, keeping the first occurrence.
func (s *Store) Replace(entries []models.CacheEntry) models.Snapshot {
	cleaned := dedupe(entries)
	return s.write(func(prev *models.Snapshot) *models.Snapshot {
		return &models.Snapshot{Entries: cleaned, Version: prev.Version + 1}
	})
}

// MarkError overlays err on the current snapshot. Entries and version are untouched.
func (s *Store) MarkError(err error) models.Snapshot {
	return s.write(func(prev *models.Snapshot) *models.Snapshot {
		return &models.Snapshot{Entries: prev.Entries, Version: prev.Version, Err: err}
	})
}

// Clear installs an empty snapshot and bumps the version.
func (s *Store) Clear() models.Snapshot {
	return s.write(func(prev *models.Snapshot) *models.Snapshot {
		return &models.Snapshot{Entries: []models.CacheEntry{}, Version: prev.Version + 1}
	})
}

// Subscribe registers client with the hub and sends it the current snapshot.
// Both happen under the writer lock so no update can slip in between.
func (s *Store) Subscribe(client realtime.Client) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hub == nil || s.closed {
		client.Close()
		return func() {}
	}
	s.hub.Register(client)
	client.Send(*s.current.Load())
	return func() { s.hub.Unregister(client) }
}

// Close empties the store for teardown. Later writes are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	prev := s.current.Load()
	s.current.Store(&models.Snapshot{Entries: []models.CacheEntry{}, Version: prev.Version + 1})
	s.closed = true
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) write(next func(prev *models.Snapshot) *models.Snapshot) models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	if s.closed {
		return *prev
	}
	snap := next(prev)
	s.current.Store(snap)
	if s.hub != nil {
		s.hub.Broadcast(*snap)
	}
	return *snap
}

func dedupe(entries []models.CacheEntry) []models.CacheEntry {
	out := make([]models.CacheEntry, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		if _, dup := seen[e.Key]; dup {
			continue
		}
		seen[e.Key] = struct{}{}
		out = append(out, e)
	}
	return out
}
