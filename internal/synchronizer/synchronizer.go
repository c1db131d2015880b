// Package synchronizer keeps the Entry Store in step with the remote cache.
//
// A Synchronizer polls the remote list operation on a fixed interval and on demand.
// Requests that arrive while a list call is outstanding join that call instead of
// issuing a new one, so at most one list request is ever in flight.
package synchronizer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"cache-viewer/internal/models"
	"cache-viewer/internal/store"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultInterval is the polling cadence when none is configured.
const DefaultInterval = 10 * time.Second

// ErrClosed is returned by Refresh once the synchronizer has been torn down.
var ErrClosed = errors.New("synchronizer closed")

// listKey is the single singleflight key: there is only one list operation.
const listKey = "list"

// Lister fetches the full remote cache contents.
type Lister interface {
	List(ctx context.Context) ([]models.CacheEntry, error)
}

// State is the refresh state of a Synchronizer.
type State int32

const (
	StateIdle State = iota
	StateRefreshing
)

func (s State) String() string {
	if s == StateRefreshing {
		return "refreshing"
	}
	return "idle"
}

// Stats is a point-in-time view of synchronizer activity.
type Stats struct {
	State State
	// ListCalls counts list requests actually sent to the remote service.
	ListCalls uint64
	// Waiters counts Refresh callers currently waiting on the in-flight call.
	Waiters int32
	// LastRefresh is when the last list call completed, successful or not.
	LastRefresh time.Time
}

// Options configures a Synchronizer.
type Options struct {
	Interval time.Duration
	Logger   zerolog.Logger
}

// Synchronizer owns the refresh cadence and applies list results to the store.
type Synchronizer struct {
	lister   Lister
	store    *store.Store
	interval time.Duration
	log      zerolog.Logger

	group   singleflight.Group
	state   atomic.Int32
	calls   atomic.Uint64
	waiters atomic.Int32
	last    atomic.Int64

	// ctx bounds the shared list call; it is cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	// mu guards closed and is held while a result is applied, so Close cannot
	// return while an apply is half done.
	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

// newTicker is a small indirection to allow tests to drive ticks by hand.
var newTicker = func(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// New validates its arguments, then starts the polling loop. The loop refreshes once
// immediately and then on every tick until Close.
func New(lister Lister, st *store.Store, opts Options) (*Synchronizer, error) {
	if lister == nil {
		return nil, errors.New("synchronizer: lister is required")
	}
	if st == nil {
		return nil, errors.New("synchronizer: store is required")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Synchronizer{
		lister:   lister,
		store:    st,
		interval: interval,
		log:      opts.Logger.With().Str("component", "synchronizer").Logger(),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	ticks, stop := newTicker(interval)
	go s.loop(ticks, stop)
	return s, nil
}

// Refresh requests a list call and waits for its result. If a call is already in
// flight the request joins it. ctx only bounds this caller's wait: a call abandoned
// by its waiters still applies its result when it completes.
func (s *Synchronizer) Refresh(ctx context.Context) (models.Snapshot, error) {
	if s.isClosed() {
		return models.Snapshot{}, ErrClosed
	}

	ch := s.group.DoChan(listKey, s.fetch)
	s.waiters.Add(1)
	defer s.waiters.Add(-1)

	select {
	case res := <-ch:
		if res.Err != nil {
			return s.store.Current(), res.Err
		}
		return res.Val.(models.Snapshot), nil
	case <-ctx.Done():
		return s.store.Current(), ctx.Err()
	}
}

// Stats returns current counters.
func (s *Synchronizer) Stats() Stats {
	st := Stats{
		State:     State(s.state.Load()),
		ListCalls: s.calls.Load(),
		Waiters:   s.waiters.Load(),
	}
	if ns := s.last.Load(); ns != 0 {
		st.LastRefresh = time.Unix(0, ns)
	}
	return st
}

// Interval returns the polling cadence.
func (s *Synchronizer) Interval() time.Duration {
	return s.interval
}

// Close stops the timer, cancels any in-flight list call and waits for the loop to
// exit. No result is applied to the store after Close returns.
func (s *Synchronizer) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		s.cancel()
		<-s.done
		s.log.Debug().Msg("stopped")
	})
	return nil
}

func (s *Synchronizer) loop(ticks <-chan time.Time, stop func()) {
	defer close(s.done)
	defer stop()

	s.tick()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticks:
			s.tick()
		}
	}
}

func (s *Synchronizer) tick() {
	if _, err := s.Refresh(s.ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, ErrClosed) {
		s.log.Warn().Err(err).Msg("scheduled refresh failed")
	}
}

// fetch is the shared list call. It runs once per coalesced group of callers.
func (s *Synchronizer) fetch() (any, error) {
	s.state.Store(int32(StateRefreshing))
	defer s.state.Store(int32(StateIdle))

	s.calls.Add(1)
	entries, err := s.lister.List(s.ctx)
	s.last.Store(time.Now().UnixNano())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	if err != nil {
		s.store.MarkError(err)
		s.log.Debug().Err(err).Msg("refresh failed; keeping previous entries")
		return nil, err
	}
	if entries == nil {
		entries = []models.CacheEntry{}
	}
	snap := s.store.Replace(entries)
	s.log.Debug().Int("entries", snap.Len()).Uint64("version", snap.Version).Msg("refreshed")
	return snap, nil
}

func (s *Synchronizer) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
