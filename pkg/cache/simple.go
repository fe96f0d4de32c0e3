package cache

import (
	"sync"
)

// simpleCache keeps every entry until it is deleted or the cache is cleared.
type simpleCache[V any] struct {
	mu      sync.RWMutex
	items   map[string]V
	obs     observer
	evictFn EvictCallback[V]
}

func newSimpleCache[V any](opts *cacheOptions[V]) (*simpleCache[V], error) {
	obs, err := newObserver(opts, "newSimpleCache")
	if err != nil {
		return nil, err
	}
	return &simpleCache[V]{
		items:   make(map[string]V),
		obs:     obs,
		evictFn: opts.evictCallback,
	}, nil
}

// Get returns the value for key.
func (c *simpleCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	value, ok := c.items[key]
	c.mu.RUnlock()

	if ok {
		c.obs.hit()
	} else {
		c.obs.miss()
	}
	return value, ok
}

// Set stores value under key.
func (c *simpleCache[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, existed := c.items[key]
	c.items[key] = value
	c.obs.set(len(c.items))
	return !existed, nil
}

// Delete removes key.
func (c *simpleCache[V]) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	value, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return false, nil
	}
	delete(c.items, key)
	c.obs.deleted(len(c.items))
	c.mu.Unlock()

	if c.evictFn != nil {
		c.evictFn(key, value)
	}
	return true, nil
}

// Clear removes all entries.
func (c *simpleCache[V]) Clear() error {
	c.mu.Lock()
	old := c.items
	c.items = make(map[string]V)
	c.obs.size(0)
	c.mu.Unlock()

	if c.evictFn != nil {
		for k, v := range old {
			c.evictFn(k, v)
		}
	}
	return nil
}

// Size returns the number of entries.
func (c *simpleCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Keys returns the cached keys in no particular order.
func (c *simpleCache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

// Stats returns the cache statistics.
func (c *simpleCache[V]) Stats() *Statistics {
	return c.obs.stats
}
