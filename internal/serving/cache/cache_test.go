package cache

import (
	"testing"
	"time"

	"vibecheck/internal/serving"
)

func key(s string) serving.CacheKey {
	return serving.KeyFor(s, "en", "v1")
}

func res(label serving.Label) serving.Result {
	return serving.Result{Label: label, Confidence: 0.9, ModelVersion: "v1"}
}

func TestCache_RoundTrip(t *testing.T) {
	c := New(Options{Capacity: 100})
	if _, ok := c.Get(key("a")); ok {
		t.Fatalf("hit on empty cache")
	}
	if !c.Put(key("a"), res(serving.LabelPositive), 10) {
		t.Fatalf("put rejected")
	}
	got, ok := c.Get(key("a"))
	if !ok || got.Label != serving.LabelPositive {
		t.Fatalf("get: ok=%v label=%q", ok, got.Label)
	}
	if c.Len() != 1 || c.Cost() != 10 {
		t.Fatalf("len=%d cost=%d", c.Len(), c.Cost())
	}
}

func TestCache_EvictsLRUWithinBudget(t *testing.T) {
	c := New(Options{Capacity: 100})
	c.Put(key("a"), res(serving.LabelNeutral), 60)
	c.Put(key("b"), res(serving.LabelNeutral), 50)

	// 60+50 > 100, so "a" (least recently used) must be gone
	if _, ok := c.Get(key("a")); ok {
		t.Fatalf("expected a evicted")
	}
	if _, ok := c.Get(key("b")); !ok {
		t.Fatalf("expected b retained")
	}
	if c.Cost() != 50 {
		t.Fatalf("cost=%d want 50", c.Cost())
	}
}

func TestCache_GetRefreshesRecency(t *testing.T) {
	c := New(Options{Capacity: 100})
	c.Put(key("a"), res(serving.LabelNeutral), 40)
	c.Put(key("b"), res(serving.LabelNeutral), 40)

	// touch "a" so "b" becomes the eviction candidate
	if _, ok := c.Get(key("a")); !ok {
		t.Fatalf("expected a present")
	}
	c.Put(key("c"), res(serving.LabelNeutral), 40)

	if _, ok := c.Get(key("a")); !ok {
		t.Fatalf("a should survive, it was touched")
	}
	if _, ok := c.Get(key("b")); ok {
		t.Fatalf("b should be evicted")
	}
}

func TestCache_ReplaceSameKey(t *testing.T) {
	c := New(Options{Capacity: 100})
	c.Put(key("a"), res(serving.LabelNeutral), 30)
	c.Put(key("a"), res(serving.LabelNegative), 50)

	got, ok := c.Get(key("a"))
	if !ok || got.Label != serving.LabelNegative {
		t.Fatalf("replace lost: ok=%v label=%q", ok, got.Label)
	}
	if c.Len() != 1 || c.Cost() != 50 {
		t.Fatalf("len=%d cost=%d after replace", c.Len(), c.Cost())
	}
}

func TestCache_RejectsOversized(t *testing.T) {
	c := New(Options{Capacity: 100})
	c.Put(key("a"), res(serving.LabelNeutral), 10)
	if c.Put(key("big"), res(serving.LabelNeutral), 101) {
		t.Fatalf("oversized entry accepted")
	}
	// existing entries untouched
	if _, ok := c.Get(key("a")); !ok {
		t.Fatalf("oversized reject disturbed the cache")
	}
}

func TestCache_TTLExpiryAtGet(t *testing.T) {
	c := New(Options{Capacity: 100, TTL: time.Minute})
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	c.Put(key("a"), res(serving.LabelPositive), 10)
	now = now.Add(59 * time.Second)
	if _, ok := c.Get(key("a")); !ok {
		t.Fatalf("expired early")
	}
	now = now.Add(2 * time.Second)
	if _, ok := c.Get(key("a")); ok {
		t.Fatalf("served past TTL")
	}
	if c.Len() != 0 || c.Cost() != 0 {
		t.Fatalf("expired entry not purged: len=%d cost=%d", c.Len(), c.Cost())
	}
}

func TestCache_InvalidatePredicate(t *testing.T) {
	c := New(Options{Capacity: 100})
	old := serving.Result{Label: serving.LabelNeutral, ModelVersion: "v1"}
	cur := serving.Result{Label: serving.LabelNeutral, ModelVersion: "v2"}
	c.Put(serving.KeyFor("a", "en", "v1"), old, 10)
	c.Put(serving.KeyFor("b", "en", "v1"), old, 10)
	c.Put(serving.KeyFor("a", "en", "v2"), cur, 10)

	n := c.Invalidate(func(_ serving.CacheKey, r serving.Result) bool {
		return r.ModelVersion != "v2"
	})
	if n != 2 {
		t.Fatalf("invalidated %d want 2", n)
	}
	if c.Len() != 1 || c.Cost() != 10 {
		t.Fatalf("len=%d cost=%d after invalidate", c.Len(), c.Cost())
	}
}

func TestCache_PanicsOnBadConstruction(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for zero capacity")
		}
	}()
	New(Options{Capacity: 0})
}
