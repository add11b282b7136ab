package cachekit

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"rsmgr/internal/metrics"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[string, string](2, 0)
	c.Set("a", "1")
	c.Set("b", "2")

	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("got %q,%v want 1,true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss")
	}
}

func TestLRU_EvictsOldest(t *testing.T) {
	c := NewLRU[string, int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // touch a, making b the least-recently-used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestLRU_HitRate(t *testing.T) {
	c := NewLRU[string, int](10, 0)
	c.Set("a", 1)
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	rate := c.HitRate()
	if rate < 66 || rate > 67 {
		t.Errorf("hit rate = %v, want ~66.67", rate)
	}
}

func TestLRU_Invalidate(t *testing.T) {
	c := NewLRU[string, int](10, 0)
	c.Set("a", 1)
	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be invalidated")
	}
}

func TestLRU_WithName_ReportsMetrics(t *testing.T) {
	c := NewLRU[string, int](10, 0).WithName("test-cache")
	c.Set("a", 1)
	c.Get("a")       // hit
	c.Get("missing") // miss

	if got := testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues("test-cache", "hit")); got < 1 {
		t.Errorf("got %v hits reported, want at least 1", got)
	}
	if got := testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues("test-cache", "miss")); got < 1 {
		t.Errorf("got %v misses reported, want at least 1", got)
	}
}

func TestLRU_WithoutName_SkipsMetrics(t *testing.T) {
	c := NewLRU[string, int](10, 0)
	c.Set("a", 1)
	c.Get("a")
	// No assertion against the global registry here: an unnamed cache must
	// never touch it, so there is nothing to observe.
}
