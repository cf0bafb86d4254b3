package favicon

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// cacheEntry records a verified icon URL for a host
type cacheEntry struct {
	iconURL string
	at      time.Time
}

// cache is a bounded host → icon URL map. Eviction is LRU-ish: when the
// entry count passes the cap, the oldest quarter (by insert time) goes.
type cache struct {
	entries sync.Map // host → cacheEntry
	count   atomic.Int64
	cap     int64

	evictMu sync.Mutex
}

func newCache(capacity int) *cache {
	if capacity <= 0 {
		capacity = 512
	}
	return &cache{cap: int64(capacity)}
}

func (c *cache) get(host string) (string, bool) {
	v, ok := c.entries.Load(host)
	if !ok {
		return "", false
	}
	return v.(cacheEntry).iconURL, true
}

func (c *cache) put(host, iconURL string) {
	if _, loaded := c.entries.Swap(host, cacheEntry{iconURL: iconURL, at: time.Now()}); !loaded {
		if c.count.Add(1) > c.cap {
			c.evict()
		}
	}
}

func (c *cache) evict() {
	c.evictMu.Lock()
	defer c.evictMu.Unlock()

	if c.count.Load() <= c.cap {
		return
	}

	type aged struct {
		host string
		at   time.Time
	}
	var all []aged
	c.entries.Range(func(k, v interface{}) bool {
		all = append(all, aged{host: k.(string), at: v.(cacheEntry).at})
		return true
	})

	sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })

	drop := len(all) / 4
	if drop < 1 {
		drop = 1
	}
	for _, a := range all[:drop] {
		c.entries.Delete(a.host)
		c.count.Add(-1)
	}
}

func (c *cache) len() int {
	return int(c.count.Load())
}
