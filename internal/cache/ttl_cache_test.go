package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"cache-viewer/internal/models"
)

func freezeTime(t *testing.T) *time.Time {
	t.Helper()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })
	return &base
}

func TestTTLCache_SetGet_NoTTL(t *testing.T) {
	c := NewTTLCache(Options{ConcurrencySafe: false})
	c.Set("a", "1", 0)
	e, ok := c.Get("a")
	if !ok || e.Value != "1" || e.Expiry != 0 {
		t.Fatalf("expected hit with value 1 and no expiry, got ok=%v e=%+v", ok, e)
	}
	if c.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", c.Len())
	}
}

func TestTTLCache_RemainingSeconds(t *testing.T) {
	c := NewTTLCache(Options{ConcurrencySafe: true})
	base := freezeTime(t)

	c.Set("k", "v", 60*time.Second)
	*base = base.Add(1500 * time.Millisecond)

	e, ok := c.Get("k")
	if !ok {
		t.Fatalf("expected hit before expiry")
	}
	if e.Expiry != 59 {
		t.Fatalf("expected 59 remaining seconds (rounded up), got %d", e.Expiry)
	}
}

func TestTTLCache_TTL_Expiry(t *testing.T) {
	c := NewTTLCache(Options{ConcurrencySafe: true})
	base := freezeTime(t)

	c.Set("k", "v", time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("expected hit before expiry")
	}

	*base = base.Add(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss at expiry")
	}
	if len(c.Entries()) != 0 {
		t.Fatalf("expected expired entry to be hidden from Entries")
	}
	if c.Delete("k") {
		t.Fatalf("expected Delete of expired entry to report false")
	}

	c.Set("j", "v", time.Second)
	*base = base.Add(2 * time.Second)
	if n := c.PurgeExpired(); n != 1 {
		t.Fatalf("expected 1 purged, got %d", n)
	}
	if c.Len() != 0 {
		t.Fatalf("expected Len=0 after purge, got %d", c.Len())
	}
}

func TestTTLCache_EntriesSortedByKey(t *testing.T) {
	c := NewTTLCache(Options{ConcurrencySafe: true})
	freezeTime(t)

	c.Set("user:2", "bob", 30*time.Second)
	c.Set("session:42", "alice", 60*time.Second)
	c.Set("user:1", "carol", 0)

	want := []models.CacheEntry{
		{Key: "session:42", Value: "alice", Expiry: 60},
		{Key: "user:1", Value: "carol", Expiry: 0},
		{Key: "user:2", Value: "bob", Expiry: 30},
	}
	got := c.Entries()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTTLCache_Delete_Clear(t *testing.T) {
	c := NewTTLCache(Options{ConcurrencySafe: true})
	c.Set("a", "10", 0)
	c.Set("b", "20", 0)
	if !c.Delete("a") {
		t.Fatalf("expected Delete to report a removed entry")
	}
	if c.Delete("a") {
		t.Fatalf("expected second Delete to report false")
	}
	if c.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected Len=0 after Clear, got %d", c.Len())
	}
}

func TestTTLCache_Overwrite(t *testing.T) {
	c := NewTTLCache(Options{ConcurrencySafe: true})
	c.Set("a", "old", 0)
	c.Set("a", "new", 0)
	if e, _ := c.Get("a"); e.Value != "new" {
		t.Fatalf("expected overwrite, got %q", e.Value)
	}
	if c.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", c.Len())
	}
}

func TestTTLCache_ConcurrentWriters(t *testing.T) {
	keys := 50
	rounds := 100

	c := NewTTLCache(Options{ConcurrencySafe: true})
	var wg sync.WaitGroup
	for i := 0; i < keys; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			for r := 0; r < rounds; r++ {
				c.Set(key, fmt.Sprint(r), time.Minute)
				_, _ = c.Get(key)
				_ = c.Entries()
			}
		}()
	}
	wg.Wait()
	if c.Len() != keys {
		t.Fatalf("expected %d entries, got %d", keys, c.Len())
	}
}
