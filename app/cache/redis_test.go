package cache

import (
	"context"
	"testing"
)

func TestRegionKey(t *testing.T) {
	key1 := RegionKey("AFRICA", 25)
	key2 := RegionKey("AFRICA", 25)
	key3 := RegionKey("EUROPE", 25)
	key4 := RegionKey("AFRICA", 50)

	if key1 != key2 {
		t.Errorf("Expected consistent keys, got %s != %s", key1, key2)
	}
	if key1 == key3 {
		t.Errorf("Expected different keys for different regions, got %s", key1)
	}
	if key1 == key4 {
		t.Errorf("Expected different keys for different limits, got %s", key1)
	}
	if key1 != "atlas:region:AFRICA:25" {
		t.Errorf("Unexpected key format: %s", key1)
	}
}

func TestStatsKey(t *testing.T) {
	if StatsKey() != "atlas:stats" {
		t.Errorf("Unexpected stats key: %s", StatsKey())
	}
}

func TestNilCacheIsNoOp(t *testing.T) {
	// A nil *Cache means caching is disabled; every operation must be safe.
	var c *Cache
	ctx := context.Background()

	var dest map[string]int
	hit, err := c.Get(ctx, StatsKey(), &dest)
	if err != nil {
		t.Errorf("Get on nil cache failed: %v", err)
	}
	if hit {
		t.Error("Expected miss on nil cache")
	}

	if err := c.Set(ctx, StatsKey(), map[string]int{"AFRICA": 1}); err != nil {
		t.Errorf("Set on nil cache failed: %v", err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Errorf("Invalidate on nil cache failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close on nil cache failed: %v", err)
	}
}
