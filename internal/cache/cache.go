// Package cache holds the process-wide response cache that sits in front
// of every model call, plus the deterministic key derivation for it.
package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/mohae/deepcopy"
)

// Defaults used when no configuration is supplied.
const (
	DefaultTTL        = 600 * time.Second
	DefaultMaxEntries = 128
)

// Config bounds a ResponseCache.
type Config struct {
	// TTL is the entry lifetime. Zero means entries never expire.
	TTL time.Duration
	// MaxEntries is the capacity. Values below 1 are raised to 1.
	MaxEntries int
}

// DefaultConfig returns the stock cache bounds.
func DefaultConfig() Config {
	return Config{TTL: DefaultTTL, MaxEntries: DefaultMaxEntries}
}

type entry struct {
	key       string
	createdAt time.Time
	payload   any
}

// ResponseCache is a TTL + LRU cache of JSON-like values. Values are
// deep-copied on Set and on Get so callers can mutate freely. Expiry is
// checked lazily on access only. All operations are serialized by a
// single mutex and none of them blocks on I/O.
type ResponseCache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	order      *list.List // front = least recently used
	items      map[string]*list.Element
	now        func() time.Time
}

// New creates a ResponseCache.
func New(cfg Config) *ResponseCache {
	if cfg.TTL < 0 {
		cfg.TTL = 0
	}
	if cfg.MaxEntries < 1 {
		cfg.MaxEntries = 1
	}
	return &ResponseCache{
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		order:      list.New(),
		items:      make(map[string]*list.Element),
		now:        time.Now,
	}
}

// WithClock replaces the time source. Intended for tests.
func (c *ResponseCache) WithClock(now func() time.Time) *ResponseCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get returns a copy of the value stored under key. An expired entry is
// evicted and reported as absent.
func (c *ResponseCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if c.ttl > 0 && c.now().Sub(e.createdAt) > c.ttl {
		c.order.Remove(el)
		delete(c.items, key)
		return nil, false
	}
	c.order.MoveToBack(el)
	return deepcopy.Copy(e.payload), true
}

// Set stores a copy of value under key, refreshing its timestamp and
// recency. Inserting a new key at capacity evicts the least recently
// used entry first.
func (c *ResponseCache) Set(key string, value any) {
	payload := deepcopy.Copy(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry)
		e.payload = payload
		e.createdAt = c.now()
		c.order.MoveToBack(el)
		return
	}

	if c.order.Len() >= c.maxEntries {
		if oldest := c.order.Front(); oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*entry).key)
		}
	}

	c.items[key] = c.order.PushBack(&entry{key: key, createdAt: c.now(), payload: payload})
}

// Clear drops every entry.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
}

// Len reports the number of stored entries, expired ones included.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
