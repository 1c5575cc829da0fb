package cache

import (
	"testing"
	"time"
)

func TestLRU_GetSet(t *testing.T) {
	c := NewLRU[string, int](4, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache should report absent")
	}

	c.Set("a", 1)
	got, ok := c.Get("a")
	if !ok || got != 1 {
		t.Errorf("Get(a) = %v, %v, want 1, true", got, ok)
	}

	c.Set("a", 2)
	got, _ = c.Get("a")
	if got != 2 {
		t.Errorf("Get(a) after overwrite = %v, want 2", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %v, want 1", c.Len())
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[string, int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a becomes most recent
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be present")
	}
}

func TestLRU_TTLExpiry(t *testing.T) {
	c := NewLRU[string, int](4, time.Millisecond)

	c.Set("a", 1)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expired entry should report absent")
	}
	if c.Len() != 0 {
		t.Errorf("Len() after expiry read = %v, want 0", c.Len())
	}
}

func TestLRU_DeleteFunc(t *testing.T) {
	type key struct {
		userID int64
		period string
	}
	c := NewLRU[key, string](8, time.Minute)

	c.Set(key{1, "2026-08"}, "aug")
	c.Set(key{1, "2026-09"}, "sep")
	c.Set(key{2, "2026-09"}, "other user")

	removed := c.DeleteFunc(func(k key) bool { return k.userID == 1 })
	if removed != 2 {
		t.Errorf("DeleteFunc removed %v entries, want 2", removed)
	}
	if _, ok := c.Get(key{1, "2026-09"}); ok {
		t.Error("user 1 entries should be gone")
	}
	if _, ok := c.Get(key{2, "2026-09"}); !ok {
		t.Error("user 2 entry should survive")
	}
}
