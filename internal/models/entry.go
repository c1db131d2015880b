package models

// CacheEntry represents a single key/value pair reported by the remote cache service.
// Expiry is the time to live in whole seconds.
type CacheEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Expiry int64  `json:"expiry"`
}

// Snapshot is the last known view of the remote cache contents.
// Entries keep the order returned by the remote service and must be treated as read-only.
type Snapshot struct {
	Entries []CacheEntry
	// Version is bumped on every accepted replace or clear, never by an error overlay.
	Version uint64
	// Err carries the most recent failed refresh, if any.
	Err error
}

// SnapshotView is the wire representation of a Snapshot sent to presentation clients.
type SnapshotView struct {
	Entries []CacheEntry `json:"entries"`
	Version uint64       `json:"version"`
	Error   string       `json:"error,omitempty"`
}

// ErrorMessage returns the advisory error text, or "" when the snapshot is clean.
func (s Snapshot) ErrorMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Len returns the number of entries in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Entries)
}

// View converts the snapshot to its wire form. Entries is never null in the output.
func (s Snapshot) View() SnapshotView {
	entries := s.Entries
	if entries == nil {
		entries = []CacheEntry{}
	}
	return SnapshotView{
		Entries: entries,
		Version: s.Version,
		Error:   s.ErrorMessage(),
	}
}
