package cache

import (
	"sync"
	"time"
)

// Cache is a small TTL map that keeps the catalog list endpoints off the
// database between mutations. Catalog writes clear it wholesale, so a
// single shared TTL is enough.
type Cache struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]entry
}

type entry struct {
	val       any
	expiresAt time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

// Get returns the cached value, dropping it lazily once the TTL passed.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]

	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		delete(c.m, key)
		return nil, false
	}

	return e.val, true
}

func (c *Cache) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.m[key] = entry{val: val, expiresAt: time.Now().Add(c.ttl)}
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.m, key)
}

// Clear drops every entry. Catalog mutations call this instead of chasing
// down the individual list keys.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.m = make(map[string]entry)
}
