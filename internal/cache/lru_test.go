// internal/cache/lru_test.go
//
// Unit-tests for the expiring LRU: hit/miss, LRU eviction order, and
// TTL expiry via an injected clock.

package cache

import (
	"testing"
	"time"
)

func TestGetAdd(t *testing.T) {
	c := New(2, 0)

	if _, ok := c.Get("a"); ok {
		t.Fatalf("empty cache reported a hit")
	}

	c.Add("a", 1)
	v, ok := c.Get("a")
	if !ok || v.(int) != 1 {
		t.Fatalf("Get(a) = %v, %v, want 1, true", v, ok)
	}

	c.Add("a", 2)
	if v, _ := c.Get("a"); v.(int) != 2 {
		t.Fatalf("Add did not overwrite: got %v", v)
	}
}

func TestEvictLRU(t *testing.T) {
	c := New(2, 0)
	c.Add("a", 1)
	c.Add("b", 2)

	// Touch "a" so "b" becomes LRU, then push it out.
	c.Get("a")
	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("expected a retained")
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestExpiry(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(4, time.Minute)
	c.now = func() time.Time { return clock }

	c.Add("a", 1)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("fresh entry missed")
	}

	clock = clock.Add(61 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expired entry returned")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not evicted on access: Len = %d", c.Len())
	}
}
