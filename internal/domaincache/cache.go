// internal/domaincache/cache.go
//
// Bounded TTL cache for hostname → tenant resolution.
//
// Context
// -------
// Routing middleware consults the cache on every request so that a custom
// domain does not cost one database round-trip per hit.  Entries are small
// immutable values; an overwrite replaces the whole value.
//
// Eviction rules:
//
//   - an entry older than ttl is treated as absent and removed on read,
//   - inserting a new key at capacity removes the oldest inserted key first
//     (FIFO by insertion, not by access).
//
// Notes
// -----
//   - The cache is single-process only.  The site table stays the source of
//     truth; a miss is always safe.
//   - Construct one Cache per process with New and pass it to callers.
package domaincache

import (
	"container/list"
	"sync"
	"time"

	"github.com/yanizio/cardforge/internal/metrics"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultTTL      = 5 * time.Minute
	DefaultCapacity = 1000
)

// Entry is one cached resolution.  Slug is empty when the domain is known
// but not mapped to any tenant.
type Entry struct {
	Domain      string
	Slug        string
	IsPublished bool
	CachedAt    time.Time
}

// Mapped reports whether the domain resolved to a tenant.
func (e Entry) Mapped() bool { return e.Slug != "" }

// Stats is a point-in-time view for observability.
type Stats struct {
	Size     int           `json:"size"`
	Capacity int           `json:"capacity"`
	TTL      time.Duration `json:"ttl"`
}

// Options tunes a Cache.  Now is injectable so tests control the clock.
type Options struct {
	TTL      time.Duration
	Capacity int
	Now      func() time.Time
}

// Cache is safe for concurrent use.  Zero value is unusable; use New.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	now      func() time.Time

	order *list.List               // insertion order, oldest at Front
	items map[string]*list.Element // domain → element holding Entry
}

// New returns an empty cache.  Non-positive TTL or Capacity fall back to
// the package defaults.
func New(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		ttl:      opts.TTL,
		capacity: opts.Capacity,
		now:      opts.Now,
		order:    list.New(),
		items:    make(map[string]*list.Element, opts.Capacity),
	}
}

// Get returns the entry for domain when present and younger than the TTL.
// An expired entry is dropped on the way out.
func (c *Cache) Get(domain string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, ok := c.items[domain]
	if !ok {
		metrics.DomainCacheMisses.Inc()
		return Entry{}, false
	}
	ent := ele.Value.(Entry)
	if c.now().Sub(ent.CachedAt) >= c.ttl {
		c.remove(ele)
		metrics.DomainCacheExpired.Inc()
		metrics.DomainCacheMisses.Inc()
		return Entry{}, false
	}
	metrics.DomainCacheHits.Inc()
	return ent, true
}

// Peek is Get without hit/miss accounting, for callers re-checking after
// a miss they already counted.
func (c *Cache) Peek(domain string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, ok := c.items[domain]
	if !ok {
		return Entry{}, false
	}
	ent := ele.Value.(Entry)
	if c.now().Sub(ent.CachedAt) >= c.ttl {
		c.remove(ele)
		metrics.DomainCacheExpired.Inc()
		return Entry{}, false
	}
	return ent, true
}

// Set inserts or overwrites domain.  An overwrite keeps the key's original
// insertion position.  A new key at capacity evicts the oldest insert.
func (c *Cache) Set(domain, slug string, isPublished bool) Entry {
	ent := Entry{
		Domain:      domain,
		Slug:        slug,
		IsPublished: isPublished,
		CachedAt:    c.now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.items[domain]; ok {
		ele.Value = ent
		return ent
	}

	if c.order.Len() >= c.capacity {
		if oldest := c.order.Front(); oldest != nil {
			c.remove(oldest)
			metrics.DomainCacheEvictions.Inc()
		}
	}
	c.items[domain] = c.order.PushBack(ent)
	metrics.DomainCacheEntries.Set(float64(c.order.Len()))
	return ent
}

// Invalidate drops domain.  Missing keys are a no-op.
func (c *Cache) Invalidate(domain string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.items[domain]; ok {
		c.remove(ele)
	}
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element, c.capacity)
	metrics.DomainCacheEntries.Set(0)
}

// Stats reports size, capacity, and TTL.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Size: c.order.Len(), Capacity: c.capacity, TTL: c.ttl}
}

// Len reports current size.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// remove unlinks ele.  Caller holds mu.
func (c *Cache) remove(ele *list.Element) {
	c.order.Remove(ele)
	delete(c.items, ele.Value.(Entry).Domain)
	metrics.DomainCacheEntries.Set(float64(c.order.Len()))
}
