package cache

import (
	"sync"
	"testing"
	"time"
)

func TestBound_EvictsOldestInserted(t *testing.T) {
	t.Parallel()

	c := New[int64, string](3, time.Hour)
	c.Set(1, "a")
	c.Set(2, "b")
	c.Set(3, "c")

	// reads must not refresh eviction rank
	if _, ok := c.Get(1); !ok {
		t.Fatalf("key 1 should be present")
	}

	c.Set(4, "d")

	if _, ok := c.Get(1); ok {
		t.Fatalf("key 1 should have been evicted (oldest inserted)")
	}
	for _, k := range []int64{2, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("key %d should survive", k)
		}
	}
	if got := c.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}
}

func TestRefresh_KeepsEvictionRank(t *testing.T) {
	t.Parallel()

	c := New[int64, string](2, time.Hour)
	c.Set(1, "a")
	c.Set(2, "b")

	// refreshing 1 must not move it to the back of the eviction order
	c.Set(1, "a2")
	c.Set(3, "c")

	if _, ok := c.Get(1); ok {
		t.Fatalf("key 1 should still be the eviction candidate after refresh")
	}
	if v, ok := c.Get(2); !ok || v != "b" {
		t.Fatalf("key 2 = %q/%v", v, ok)
	}
}

func TestTTL_ExpiredReadsAsAbsent(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	c := New[int64, string](8, 10*time.Minute).WithClock(func() time.Time { return clock })

	c.Set(7, "doc")
	if _, ok := c.Get(7); !ok {
		t.Fatalf("fresh entry should be readable")
	}

	clock = clock.Add(10*time.Minute + time.Second)
	if _, ok := c.Get(7); ok {
		t.Fatalf("expired entry should read as absent without eviction running")
	}
	if got := c.Len(); got != 0 {
		t.Fatalf("Len after expiry = %d, want 0", got)
	}
}

func TestRefresh_ExtendsExpiry(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	c := New[int64, string](8, 10*time.Minute).WithClock(func() time.Time { return clock })

	c.Set(7, "doc")
	clock = clock.Add(9 * time.Minute)
	c.Set(7, "doc2")
	clock = clock.Add(9 * time.Minute)

	if v, ok := c.Get(7); !ok || v != "doc2" {
		t.Fatalf("refreshed entry should still be live, got %q/%v", v, ok)
	}
}

func TestExpiredHeadsSweptOnSet(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	c := New[int64, string](2, time.Minute).WithClock(func() time.Time { return clock })

	c.Set(1, "a")
	c.Set(2, "b")
	clock = clock.Add(2 * time.Minute)

	// both expired; inserting two new keys should not evict each other
	c.Set(3, "c")
	c.Set(4, "d")
	if _, ok := c.Get(3); !ok {
		t.Fatalf("key 3 should be live")
	}
	if _, ok := c.Get(4); !ok {
		t.Fatalf("key 4 should be live")
	}
}

func TestExpiredGetThenReSetGetsFreshRank(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	c := New[int64, string](3, 10*time.Minute).WithClock(func() time.Time { return clock })

	c.Set(1, "a")
	c.Set(2, "b")
	clock = clock.Add(5 * time.Minute)
	c.Set(3, "c")
	clock = clock.Add(6 * time.Minute) // 1 and 2 expired, 3 still live

	// lazy expiry via Get, then re-insert: key 2 is now the newest entry
	if _, ok := c.Get(2); ok {
		t.Fatalf("key 2 should have expired")
	}
	c.Set(2, "b2")

	// fill to capacity and force one eviction: the oldest live entry is 3,
	// not the freshly re-inserted 2
	c.Set(4, "d")
	c.Set(5, "e")

	if _, ok := c.Get(3); ok {
		t.Fatalf("key 3 should have been evicted as the oldest live entry")
	}
	if v, ok := c.Get(2); !ok || v != "b2" {
		t.Fatalf("re-inserted key 2 must survive with its new rank, got %q/%v", v, ok)
	}
	for _, k := range []int64{4, 5} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("key %d should be live", k)
		}
	}
}

func TestExpiredReSetWithoutGetGetsFreshRank(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	c := New[int64, string](3, 10*time.Minute).WithClock(func() time.Time { return clock })

	c.Set(1, "a")
	c.Set(2, "b")
	clock = clock.Add(5 * time.Minute)
	c.Set(3, "c")
	clock = clock.Add(6 * time.Minute) // 1 and 2 expired, 3 still live

	// re-Set of an expired key with no Get in between is a fresh insert,
	// not a rank-preserving refresh
	c.Set(2, "b2")
	c.Set(4, "d")
	c.Set(5, "e")

	if _, ok := c.Get(3); ok {
		t.Fatalf("key 3 should have been evicted as the oldest live entry")
	}
	if v, ok := c.Get(2); !ok || v != "b2" {
		t.Fatalf("re-inserted key 2 must survive with its new rank, got %q/%v", v, ok)
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New[int64, int](64, time.Hour)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := int64(i % 32)
				c.Set(k, g)
				c.Get(k)
			}
		}(g)
	}
	wg.Wait()

	if got := c.Len(); got != 32 {
		t.Fatalf("Len = %d, want 32", got)
	}
}
