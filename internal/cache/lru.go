// internal/cache/lru.go
//
// Small LRU cache with per-entry expiry, used to memoize geo lookups
// per client IP.  No external deps; good for a few thousand entries.
//
// The external geo providers are rate-limited (ip-api.com free tier is
// 45 requests per minute), so repeated hits from the same address must
// not trigger repeated lookups.  Entries expire after a TTL because IP
// allocations move between regions over time.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a mutex-guarded least-recently-used cache with expiring
// entries.  Safe for concurrent use.
type LRU struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	ll   *list.List
	dict map[string]*list.Element

	now func() time.Time // injectable clock for tests
}

type entry struct {
	key string
	val any
	exp time.Time
}

// New returns an LRU holding at most capacity entries, each valid for
// ttl.  A ttl of zero means entries never expire.  Panics on cap < 1.
func New(capacity int, ttl time.Duration) *LRU {
	if capacity < 1 {
		panic("cache: capacity must be >= 1")
	}
	return &LRU{
		cap:  capacity,
		ttl:  ttl,
		ll:   list.New(),
		dict: make(map[string]*list.Element, capacity),
		now:  time.Now,
	}
}

// Get retrieves a live value and marks it MRU.  Expired entries are
// evicted on access and reported as a miss.
func (c *LRU) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, hit := c.dict[key]
	if !hit {
		return nil, false
	}
	ent := ele.Value.(entry)
	if !ent.exp.IsZero() && c.now().After(ent.exp) {
		c.ll.Remove(ele)
		delete(c.dict, key)
		return nil, false
	}
	c.ll.MoveToFront(ele)
	return ent.val, true
}

// Add inserts or refreshes a value, restarting its TTL.  The oldest
// entry is evicted when the cache is full.
func (c *LRU) Add(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var exp time.Time
	if c.ttl > 0 {
		exp = c.now().Add(c.ttl)
	}

	if ele, hit := c.dict[key]; hit {
		ele.Value = entry{key, val, exp}
		c.ll.MoveToFront(ele)
		return
	}
	ele := c.ll.PushFront(entry{key, val, exp})
	c.dict[key] = ele
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		delete(c.dict, last.Value.(entry).key)
	}
}

// Len reports current size, including not-yet-collected expired entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
