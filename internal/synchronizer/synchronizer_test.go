package synchronizer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cache-viewer/internal/cacheclient"
	"cache-viewer/internal/models"
	"cache-viewer/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	entryA = models.CacheEntry{Key: "a", Value: "1", Expiry: 10}
	entryB = models.CacheEntry{Key: "b", Value: "2", Expiry: 20}
	entryC = models.CacheEntry{Key: "c", Value: "3", Expiry: 30}
)

// fakeLister answers list calls through respond, numbering calls from 1.
type fakeLister struct {
	mu      sync.Mutex
	n       int
	respond func(ctx context.Context, n int) ([]models.CacheEntry, error)
}

func (f *fakeLister) List(ctx context.Context) ([]models.CacheEntry, error) {
	f.mu.Lock()
	f.n++
	n := f.n
	f.mu.Unlock()
	return f.respond(ctx, n)
}

func (f *fakeLister) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

// manualTicks replaces the ticker with a channel the test controls.
func manualTicks(t *testing.T) chan time.Time {
	t.Helper()
	ch := make(chan time.Time)
	prev := newTicker
	newTicker = func(time.Duration) (<-chan time.Time, func()) { return ch, func() {} }
	t.Cleanup(func() { newTicker = prev })
	return ch
}

func newSynchronizer(t *testing.T, l Lister) (*Synchronizer, *store.Store) {
	t.Helper()
	st := store.New(nil)
	s, err := New(l, st, Options{Interval: time.Hour, Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, st
}

func waitVersion(t *testing.T, st *store.Store, v uint64) {
	t.Helper()
	require.Eventually(t, func() bool { return st.Current().Version >= v }, 2*time.Second, time.Millisecond)
}

func TestNew_ValidatesArguments(t *testing.T) {
	_, err := New(nil, store.New(nil), Options{})
	require.Error(t, err)
	_, err = New(&fakeLister{}, nil, Options{})
	require.Error(t, err)
}

func TestNew_DefaultInterval(t *testing.T) {
	manualTicks(t)
	l := &fakeLister{respond: func(context.Context, int) ([]models.CacheEntry, error) { return nil, nil }}
	st := store.New(nil)
	s, err := New(l, st, Options{})
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, DefaultInterval, s.Interval())
}

func TestNew_PopulatesImmediately(t *testing.T) {
	manualTicks(t)
	l := &fakeLister{respond: func(context.Context, int) ([]models.CacheEntry, error) {
		return []models.CacheEntry{entryA}, nil
	}}
	_, st := newSynchronizer(t, l)
	waitVersion(t, st, 1)
	require.Equal(t, []models.CacheEntry{entryA}, st.Current().Entries)
}

func TestRefresh_CoalescesConcurrentRequests(t *testing.T) {
	manualTicks(t)
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	l := &fakeLister{respond: func(ctx context.Context, n int) ([]models.CacheEntry, error) {
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return []models.CacheEntry{entryA}, nil
	}}
	s, st := newSynchronizer(t, l)

	// The initial timer-driven refresh is now outstanding.
	<-started
	require.Equal(t, StateRefreshing, s.Stats().State)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := s.Refresh(context.Background())
			errs <- err
		}()
	}
	require.Eventually(t, func() bool { return s.Stats().Waiters == 3 }, 2*time.Second, time.Millisecond)

	close(release)
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	require.Equal(t, 1, l.count())
	require.Equal(t, uint64(1), s.Stats().ListCalls)
	require.Equal(t, uint64(1), st.Current().Version)
	require.Equal(t, StateIdle, s.Stats().State)
}

func TestRefresh_SequentialCallsEachList(t *testing.T) {
	manualTicks(t)
	l := &fakeLister{respond: func(context.Context, int) ([]models.CacheEntry, error) { return nil, nil }}
	s, st := newSynchronizer(t, l)
	waitVersion(t, st, 1)

	_, err := s.Refresh(context.Background())
	require.NoError(t, err)
	_, err = s.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, l.count())
	require.Equal(t, uint64(3), st.Current().Version)
}

func TestRefresh_ReplacesWithoutMerging(t *testing.T) {
	manualTicks(t)
	l := &fakeLister{respond: func(_ context.Context, n int) ([]models.CacheEntry, error) {
		if n == 1 {
			return []models.CacheEntry{entryA, entryB}, nil
		}
		return []models.CacheEntry{entryC}, nil
	}}
	s, st := newSynchronizer(t, l)
	waitVersion(t, st, 1)
	require.Equal(t, []models.CacheEntry{entryA, entryB}, st.Current().Entries)

	snap, err := s.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, []models.CacheEntry{entryC}, snap.Entries)
	require.Equal(t, []models.CacheEntry{entryC}, st.Current().Entries)
}

func TestRefresh_ErrorPreservesData(t *testing.T) {
	manualTicks(t)
	boom := errors.New("Error fetching cache data")
	l := &fakeLister{respond: func(_ context.Context, n int) ([]models.CacheEntry, error) {
		if n == 1 {
			return []models.CacheEntry{entryA, entryB}, nil
		}
		return nil, boom
	}}
	s, st := newSynchronizer(t, l)
	waitVersion(t, st, 1)

	_, err := s.Refresh(context.Background())
	require.ErrorIs(t, err, boom)

	snap := st.Current()
	require.Equal(t, []models.CacheEntry{entryA, entryB}, snap.Entries)
	require.Equal(t, uint64(1), snap.Version)
	require.ErrorIs(t, snap.Err, boom)
}

func TestRefresh_ErrorKeepsOperatorMessage(t *testing.T) {
	manualTicks(t)
	listErr := &cacheclient.Error{
		Kind:    cacheclient.KindTransport,
		Op:      "list",
		Message: "Error fetching cache data: connection refused",
	}
	l := &fakeLister{respond: func(context.Context, int) ([]models.CacheEntry, error) { return nil, listErr }}
	s, st := newSynchronizer(t, l)

	_, err := s.Refresh(context.Background())
	require.EqualError(t, err, "Error fetching cache data: connection refused")
	kind, ok := cacheclient.KindOf(err)
	require.True(t, ok)
	require.Equal(t, cacheclient.KindTransport, kind)
	require.Equal(t, "Error fetching cache data: connection refused", st.Current().ErrorMessage())
}

func TestRefresh_NilPayloadIsEmptySnapshot(t *testing.T) {
	manualTicks(t)
	l := &fakeLister{respond: func(context.Context, int) ([]models.CacheEntry, error) { return nil, nil }}
	s, st := newSynchronizer(t, l)
	waitVersion(t, st, 1)

	snap, err := s.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap.Entries)
	require.Empty(t, snap.Entries)
	require.NoError(t, snap.Err)
	require.Equal(t, uint64(2), snap.Version)
}

func TestRefresh_CallerContextOnlyBoundsItsWait(t *testing.T) {
	manualTicks(t)
	release := make(chan struct{})
	l := &fakeLister{respond: func(ctx context.Context, n int) ([]models.CacheEntry, error) {
		if n == 1 {
			return nil, nil
		}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return []models.CacheEntry{entryC}, nil
	}}
	s, st := newSynchronizer(t, l)
	waitVersion(t, st, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Refresh(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The abandoned call still lands.
	close(release)
	waitVersion(t, st, 2)
	require.Equal(t, []models.CacheEntry{entryC}, st.Current().Entries)
}

func TestTimer_TicksRefreshAndSelfHeal(t *testing.T) {
	ticks := manualTicks(t)
	l := &fakeLister{respond: func(_ context.Context, n int) ([]models.CacheEntry, error) {
		if n == 1 {
			return nil, errors.New("connection refused")
		}
		return []models.CacheEntry{entryA}, nil
	}}
	_, st := newSynchronizer(t, l)
	require.Eventually(t, func() bool { return st.Current().Err != nil }, 2*time.Second, time.Millisecond)
	require.Equal(t, uint64(0), st.Current().Version)

	ticks <- time.Now()
	waitVersion(t, st, 1)
	require.NoError(t, st.Current().Err)
	require.Equal(t, 2, l.count())
}

func TestClose_StopsPollingAndDropsLateResults(t *testing.T) {
	manualTicks(t)
	started := make(chan struct{}, 1)
	l := &fakeLister{respond: func(ctx context.Context, n int) ([]models.CacheEntry, error) {
		started <- struct{}{}
		<-ctx.Done()
		// A late answer arriving after teardown.
		return []models.CacheEntry{entryA}, nil
	}}
	s, st := newSynchronizer(t, l)
	<-started

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	require.Eventually(t, func() bool { return s.Stats().State == StateIdle }, 2*time.Second, time.Millisecond)
	require.Equal(t, uint64(0), st.Current().Version)
	require.Empty(t, st.Current().Entries)

	_, err := s.Refresh(context.Background())
	require.ErrorIs(t, err, ErrClosed)
	require.Equal(t, 1, l.count())
}

func TestStats_LastRefresh(t *testing.T) {
	manualTicks(t)
	l := &fakeLister{respond: func(context.Context, int) ([]models.CacheEntry, error) { return nil, nil }}
	s, st := newSynchronizer(t, l)
	waitVersion(t, st, 1)
	require.False(t, s.Stats().LastRefresh.IsZero())
	require.Equal(t, "idle", s.Stats().State.String())
}
