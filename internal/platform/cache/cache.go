// Package cache provides a bounded in-memory key/value store with TTL expiry.
// Eviction is insertion-ordered: when the cache is full the oldest-inserted
// entry goes first, and refreshing a key's value does not refresh its rank.
// Reads never promote entries (this is not an LRU)
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	val V
	exp time.Time
}

// Bounded is a concurrency-safe bounded map with TTL semantics
// The zero value is not usable; construct with New
type Bounded[K comparable, V any] struct {
	mu    sync.Mutex
	max   int
	ttl   time.Duration
	now   func() time.Time
	items map[K]entry[V]
	order []K // insertion order, oldest first; may contain keys already expired away
}

// New constructs a Bounded cache holding at most maxSize entries for at most ttl
func New[K comparable, V any](maxSize int, ttl time.Duration) *Bounded[K, V] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Bounded[K, V]{
		max:   maxSize,
		ttl:   ttl,
		now:   time.Now,
		items: make(map[K]entry[V], maxSize),
	}
}

// WithClock swaps the time source; returns the cache for chaining in tests
func (c *Bounded[K, V]) WithClock(now func() time.Time) *Bounded[K, V] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

// Get returns the value for key if present and not expired
// Expired entries are treated as absent and dropped lazily
func (c *Bounded[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if c.now().After(e.exp) {
		// drop the order slot too: a later re-Set is a genuinely new insert
		// and must not inherit this entry's old eviction rank
		delete(c.items, key)
		c.dropOrderLocked(key)
		return zero, false
	}
	return e.val, true
}

// Set inserts or refreshes key. A refresh updates value and expiry but keeps
// the key's insertion-order eviction rank. New keys evict the oldest entry
// when the cache is at capacity
func (c *Bounded[K, V]) Set(key K, val V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if e, ok := c.items[key]; ok {
		if !now.After(e.exp) {
			c.items[key] = entry[V]{val: val, exp: now.Add(c.ttl)}
			return
		}
		// expired entries are semantically absent: fall through to a fresh
		// insert at the newest rank
		delete(c.items, key)
		c.dropOrderLocked(key)
	}

	c.sweepLocked(now)
	for len(c.items) >= c.max {
		c.evictOldestLocked()
	}
	c.items[key] = entry[V]{val: val, exp: now.Add(c.ttl)}
	c.order = append(c.order, key)
}

// Len reports the number of live (unexpired) entries
func (c *Bounded[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	n := 0
	for _, e := range c.items {
		if !now.After(e.exp) {
			n++
		}
	}
	return n
}

// sweepLocked opportunistically drops expired entries from the head of the
// insertion order. It stops at the first live entry so Set stays O(1) amortized
func (c *Bounded[K, V]) sweepLocked(now time.Time) {
	for len(c.order) > 0 {
		head := c.order[0]
		e, ok := c.items[head]
		if ok && !now.After(e.exp) {
			return
		}
		delete(c.items, head)
		c.order = c.order[1:]
	}
}

// dropOrderLocked removes key's slot from the insertion order
func (c *Bounded[K, V]) dropOrderLocked(key K) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// evictOldestLocked removes the oldest-inserted live entry
// Skips order heads whose entries were already dropped lazily
func (c *Bounded[K, V]) evictOldestLocked() {
	for len(c.order) > 0 {
		head := c.order[0]
		c.order = c.order[1:]
		if _, ok := c.items[head]; ok {
			delete(c.items, head)
			return
		}
	}
}
