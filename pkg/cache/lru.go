package cache

import (
	"container/list"
	"sync"
)

type lruEntry[V any] struct {
	key   string
	value V
}

// lruCache evicts the least recently used entry once maxSize is exceeded.
type lruCache[V any] struct {
	mu      sync.Mutex
	maxSize int
	items   map[string]*list.Element
	order   *list.List // front is most recently used
	obs     observer
	evictFn EvictCallback[V]
}

func newLRUCache[V any](maxSize int, opts *cacheOptions[V]) (*lruCache[V], error) {
	obs, err := newObserver(opts, "newLRUCache")
	if err != nil {
		return nil, err
	}
	return &lruCache[V]{
		maxSize: maxSize,
		items:   make(map[string]*list.Element),
		order:   list.New(),
		obs:     obs,
		evictFn: opts.evictCallback,
	}, nil
}

// Get returns the value for key and marks it as recently used.
func (c *lruCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.items[key]
	if !ok {
		c.obs.miss()
		var zero V
		return zero, false
	}

	c.order.MoveToFront(element)
	c.obs.hit()
	return element.Value.(*lruEntry[V]).value, true
}

// Set stores value under key, evicting the oldest entry when full.
func (c *lruCache[V]) Set(key string, value V) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	var evicted []lruEntry[V]

	c.mu.Lock()
	created := true
	if element, ok := c.items[key]; ok {
		element.Value.(*lruEntry[V]).value = value
		c.order.MoveToFront(element)
		created = false
	} else {
		c.items[key] = c.order.PushFront(&lruEntry[V]{key: key, value: value})
		for len(c.items) > c.maxSize {
			oldest := c.order.Back()
			entry := oldest.Value.(*lruEntry[V])
			c.remove(oldest)
			c.obs.evicted()
			evicted = append(evicted, *entry)
		}
	}
	c.obs.set(len(c.items))
	c.mu.Unlock()

	// callbacks run outside the lock
	if c.evictFn != nil {
		for _, e := range evicted {
			c.evictFn(e.key, e.value)
		}
	}
	return created, nil
}

// Delete removes key.
func (c *lruCache[V]) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	c.mu.Lock()
	element, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return false, nil
	}
	entry := *element.Value.(*lruEntry[V])
	c.remove(element)
	c.obs.deleted(len(c.items))
	c.mu.Unlock()

	if c.evictFn != nil {
		c.evictFn(entry.key, entry.value)
	}
	return true, nil
}

// Clear removes all entries.
func (c *lruCache[V]) Clear() error {
	var dropped []lruEntry[V]

	c.mu.Lock()
	if c.evictFn != nil {
		for element := c.order.Back(); element != nil; element = element.Prev() {
			dropped = append(dropped, *element.Value.(*lruEntry[V]))
		}
	}
	c.items = make(map[string]*list.Element)
	c.order.Init()
	c.obs.size(0)
	c.mu.Unlock()

	for _, e := range dropped {
		c.evictFn(e.key, e.value)
	}
	return nil
}

// Size returns the number of entries.
func (c *lruCache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Keys returns keys from most to least recently used.
func (c *lruCache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for element := c.order.Front(); element != nil; element = element.Next() {
		keys = append(keys, element.Value.(*lruEntry[V]).key)
	}
	return keys
}

// Stats returns the cache statistics.
func (c *lruCache[V]) Stats() *Statistics {
	return c.obs.stats
}

// remove must be called with the mutex held.
func (c *lruCache[V]) remove(element *list.Element) {
	delete(c.items, element.Value.(*lruEntry[V]).key)
	c.order.Remove(element)
}
