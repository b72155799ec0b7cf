// Package cache provides the result cache of the scoring core: cost-bounded,
// least-recently-used eviction, per-entry TTL checked at read time.
//
// One mutex guards the recency list and cost accounting. Critical sections
// only touch in-memory structures; no scorer calls or I/O happen under the
// lock, so concurrent Get/Put contend only for nanoseconds. TTL expiry is
// authoritative at Get time; the optional background sweep merely bounds the
// memory held by entries nobody asks for again.
package cache

import (
	"container/list"
	"sync"
	"time"

	"vibecheck/internal/serving"
)

// Cache is a cost-bounded LRU with per-entry TTL
type Cache struct {
	mu      sync.Mutex
	byKey   map[serving.CacheKey]*list.Element
	recency *list.List // front = most recently used
	cap     int64
	total   int64
	ttl     time.Duration // 0 means entries never expire

	sweepStop chan struct{}
	sweepDone chan struct{}

	now func() time.Time // test seam
}

type entry struct {
	key        serving.CacheKey
	res        serving.Result
	cost       int64
	insertedAt time.Time
}

// Options configures the cache
type Options struct {
	// Capacity is the total cost budget; must be > 0 (capacity 0 means the
	// caller should not construct a cache at all)
	Capacity int64
	// TTL is the entry lifetime, 0 disables expiry
	TTL time.Duration
	// SweepEvery starts a background purge of expired entries when > 0.
	// Correctness never depends on it; Get-time checks are authoritative
	SweepEvery time.Duration
}

// New constructs a Cache. Panics on non-positive capacity: a disabled cache
// is represented by not having one, not by a zero-capacity instance
func New(opt Options) *Cache {
	if opt.Capacity <= 0 {
		panic("cache: capacity must be positive")
	}
	c := &Cache{
		byKey:   make(map[serving.CacheKey]*list.Element),
		recency: list.New(),
		cap:     opt.Capacity,
		ttl:     opt.TTL,
		now:     time.Now,
	}
	if opt.SweepEvery > 0 && opt.TTL > 0 {
		c.sweepStop = make(chan struct{})
		c.sweepDone = make(chan struct{})
		go c.sweep(opt.SweepEvery)
	}
	return c
}

// Get returns the cached result for key and refreshes its recency.
// A miss has no side effect. Entries past TTL are treated as misses and
// purged on the spot
func (c *Cache) Get(key serving.CacheKey) (serving.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.byKey[key]
	if !ok {
		return serving.Result{}, false
	}
	en := el.Value.(*entry)
	if c.expired(en, c.now()) {
		c.remove(el)
		return serving.Result{}, false
	}
	c.recency.MoveToFront(el)
	return en.res, true
}

// Put inserts or replaces the entry for key and evicts least-recently-used
// entries until total cost fits the capacity. An entry whose cost alone
// exceeds capacity is rejected (returns false) so one oversized item cannot
// starve the cache. Cost must be positive
func (c *Cache) Put(key serving.CacheKey, res serving.Result, cost int64) bool {
	if cost <= 0 {
		panic("cache: cost must be positive")
	}
	if cost > c.cap {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byKey[key]; ok {
		c.remove(el)
	}
	for c.total+cost > c.cap {
		// back of the recency list is the LRU; entries that were never
		// touched since insert sit in insertion order, oldest last
		c.remove(c.recency.Back())
	}
	en := &entry{key: key, res: res, cost: cost, insertedAt: c.now()}
	c.byKey[key] = c.recency.PushFront(en)
	c.total += cost
	return true
}

// Invalidate removes every entry the predicate matches and returns the count
// used for model-version rollover
func (c *Cache) Invalidate(match func(key serving.CacheKey, res serving.Result) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	var next *list.Element
	for el := c.recency.Front(); el != nil; el = next {
		next = el.Next()
		en := el.Value.(*entry)
		if match(en.key, en.res) {
			c.remove(el)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}

// Cost returns the current total cost
func (c *Cache) Cost() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Close stops the background sweep if one is running
func (c *Cache) Close() {
	if c.sweepStop != nil {
		close(c.sweepStop)
		<-c.sweepDone
		c.sweepStop = nil
	}
}

// remove must be called with the lock held
func (c *Cache) remove(el *list.Element) {
	en := el.Value.(*entry)
	c.recency.Remove(el)
	delete(c.byKey, en.key)
	c.total -= en.cost
	if c.total < 0 {
		panic("cache: negative total cost")
	}
}

func (c *Cache) expired(en *entry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(en.insertedAt) >= c.ttl
}

func (c *Cache) sweep(every time.Duration) {
	defer close(c.sweepDone)
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-c.sweepStop:
			return
		case <-tick.C:
			now := c.now()
			c.mu.Lock()
			var next *list.Element
			for el := c.recency.Front(); el != nil; el = next {
				next = el.Next()
				if c.expired(el.Value.(*entry), now) {
					c.remove(el)
				}
			}
			c.mu.Unlock()
		}
	}
}
