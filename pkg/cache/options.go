package cache

import (
	"github.com/c360/orthomerge/metric"
)

// Option configures a cache using the functional options pattern.
type Option[V any] func(*cacheOptions[V])

type cacheOptions[V any] struct {
	metricsReg    *metric.MetricsRegistry
	metricsPrefix string
	evictCallback EvictCallback[V]
}

// WithMetrics exports cache statistics as Prometheus metrics labelled with prefix.
// A nil registry or empty prefix is ignored.
func WithMetrics[V any](registry *metric.MetricsRegistry, prefix string) Option[V] {
	return func(opts *cacheOptions[V]) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// WithEvictionCallback sets a function called for each evicted or deleted entry.
func WithEvictionCallback[V any](callback EvictCallback[V]) Option[V] {
	return func(opts *cacheOptions[V]) {
		opts.evictCallback = callback
	}
}

func applyOptions[V any](options ...Option[V]) *cacheOptions[V] {
	opts := &cacheOptions[V]{}
	for _, opt := range options {
		if opt != nil {
			opt(opts)
		}
	}
	return opts
}
