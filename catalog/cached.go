package catalog

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/c360/orthomerge/pkg/cache"
)

// Cached memoises successful lookups of an underlying catalog. Concurrent
// lookups of the same identifier share one call to the backend. Failed
// lookups are not cached.
type Cached struct {
	inner Catalog
	cache cache.Cache[string]
	group singleflight.Group
}

// NewCached wraps inner with c.
func NewCached(inner Catalog, c cache.Cache[string]) *Cached {
	return &Cached{inner: inner, cache: c}
}

// Lookup implements Catalog.
func (c *Cached) Lookup(ctx context.Context, id string) (string, error) {
	if seq, ok := c.cache.Get(id); ok {
		return seq, nil
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		if seq, ok := c.cache.Get(id); ok {
			return seq, nil
		}
		seq, err := c.inner.Lookup(ctx, id)
		if err != nil {
			return "", err
		}
		// Identifiers that fail key validation are served uncached.
		_, _ = c.cache.Set(id, seq)
		return seq, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Stats exposes the underlying cache statistics, nil when disabled.
func (c *Cached) Stats() *cache.Statistics {
	return c.cache.Stats()
}
