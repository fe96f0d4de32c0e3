// Package cache provides generic, thread-safe caches used to memoise lookups
// against slow backends such as remote sequence catalogs.
//
// Implementations:
//   - LRU: bounded, evicts the least recently used entry
//   - Simple: unbounded, keeps entries until deleted
//   - Noop: never stores anything, used when caching is disabled
//
// Every cache tracks Statistics. Prometheus export is optional via WithMetrics.
package cache

import (
	"github.com/c360/orthomerge/errors"
)

// Cache is the interface shared by all cache implementations.
type Cache[V any] interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (V, bool)

	// Set stores value under key. It reports whether a new entry was created.
	Set(key string, value V) (bool, error)

	// Delete removes key. It reports whether the key was present.
	Delete(key string) (bool, error)

	// Clear removes all entries.
	Clear() error

	// Size returns the number of entries.
	Size() int

	// Keys returns the cached keys.
	Keys() []string

	// Stats returns the cache statistics, nil for a noop cache.
	Stats() *Statistics
}

// EvictCallback is called with the key and value of each evicted entry.
type EvictCallback[V any] func(key string, value V)

func validateKey(key string) error {
	if key == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "cache", "validateKey", "key cannot be empty")
	}
	return nil
}

// observer pairs the always-on statistics with optional Prometheus metrics.
type observer struct {
	stats   *Statistics
	metrics *cacheMetrics
}

func newObserver[V any](opts *cacheOptions[V], method string) (observer, error) {
	o := observer{stats: NewStatistics()}
	if opts.metricsReg != nil && opts.metricsPrefix != "" {
		m, err := newCacheMetrics(opts.metricsReg, opts.metricsPrefix)
		if err != nil {
			return observer{}, errors.Wrap(err, "cache", method, "metrics registration")
		}
		o.metrics = m
	}
	return o, nil
}

func (o observer) hit() {
	o.stats.Hit()
	if o.metrics != nil {
		o.metrics.hits.Inc()
	}
}

func (o observer) miss() {
	o.stats.Miss()
	if o.metrics != nil {
		o.metrics.misses.Inc()
	}
}

func (o observer) set(size int) {
	o.stats.Set()
	o.size(size)
	if o.metrics != nil {
		o.metrics.sets.Inc()
	}
}

func (o observer) deleted(size int) {
	o.stats.Delete()
	o.size(size)
	if o.metrics != nil {
		o.metrics.deletes.Inc()
	}
}

func (o observer) evicted() {
	o.stats.Eviction()
	if o.metrics != nil {
		o.metrics.evictions.Inc()
	}
}

func (o observer) size(n int) {
	o.stats.UpdateSize(int64(n))
	if o.metrics != nil {
		o.metrics.size.Set(float64(n))
	}
}
