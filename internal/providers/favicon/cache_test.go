package favicon

import (
	"fmt"
	"testing"
	"time"
)

func TestCachePutGet(t *testing.T) {
	c := newCache(4)
	c.put("a.test", "https://a.test/fav.png")

	got, ok := c.get("a.test")
	if !ok || got != "https://a.test/fav.png" {
		t.Fatalf("get = %q, %v", got, ok)
	}
	if _, ok := c.get("b.test"); ok {
		t.Error("hit for never-inserted host")
	}
}

func TestCacheOverwriteDoesNotGrow(t *testing.T) {
	c := newCache(4)
	c.put("a.test", "one")
	c.put("a.test", "two")

	if c.len() != 1 {
		t.Errorf("len = %d, want 1", c.len())
	}
	got, _ := c.get("a.test")
	if got != "two" {
		t.Errorf("get = %q, want two", got)
	}
}

func TestCacheEvictsOldestWhenFull(t *testing.T) {
	c := newCache(4)
	for i := 0; i < 5; i++ {
		c.put(fmt.Sprintf("h%d.test", i), "icon")
		time.Sleep(2 * time.Millisecond)
	}

	if c.len() > 4 {
		t.Errorf("len = %d, want <= 4", c.len())
	}
	if _, ok := c.get("h0.test"); ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := c.get("h4.test"); !ok {
		t.Error("newest entry evicted")
	}
}
