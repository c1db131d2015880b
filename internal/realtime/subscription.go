package realtime

import (
	"sync"

	"cache-viewer/internal/models"
)

// Subscription is a channel-backed Client that only keeps the latest snapshot.
// A slow reader never blocks the broadcaster; it skips intermediate snapshots instead.
type Subscription struct {
	mu     sync.Mutex
	ch     chan models.Snapshot
	closed bool
}

// NewSubscription creates an open subscription.
func NewSubscription() *Subscription {
	return &Subscription{ch: make(chan models.Snapshot, 1)}
}

// C returns the channel snapshots are delivered on. It is closed by Close.
func (s *Subscription) C() <-chan models.Snapshot {
	return s.ch
}

// Send replaces any undelivered snapshot with snap.
func (s *Subscription) Send(snap models.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
	return true
}

// Close stops delivery and closes the channel. It is safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
