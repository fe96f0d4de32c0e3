package cache

import (
	"fmt"

	"github.com/c360/orthomerge/errors"
)

// Strategy selects the cache implementation.
type Strategy string

const (
	// StrategySimple keeps every entry.
	StrategySimple Strategy = "simple"

	// StrategyLRU bounds the cache to MaxSize entries.
	StrategyLRU Strategy = "lru"
)

// Config describes a cache in stage configuration.
type Config struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	MaxSize  int      `json:"max_size" yaml:"max_size"`
}

// DefaultConfig returns an enabled LRU cache holding 4096 entries.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Strategy: StrategyLRU,
		MaxSize:  4096,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	switch c.Strategy {
	case StrategySimple:
	case StrategyLRU:
		if c.MaxSize <= 0 {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
				fmt.Sprintf("max_size must be positive for LRU cache, got %d", c.MaxSize))
		}
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "Validate",
			fmt.Sprintf("unknown cache strategy: %s", c.Strategy))
	}
	return nil
}

// NewFromConfig creates the cache described by config.
// A disabled config yields a noop cache.
func NewFromConfig[V any](config Config, options ...Option[V]) (Cache[V], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !config.Enabled {
		return NewNoop[V](), nil
	}

	switch config.Strategy {
	case StrategySimple:
		return NewSimple[V](options...)
	default:
		return NewLRU[V](config.MaxSize, options...)
	}
}

// NewLRU creates an LRU cache holding at most maxSize entries.
func NewLRU[V any](maxSize int, options ...Option[V]) (Cache[V], error) {
	if maxSize <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "cache", "NewLRU",
			fmt.Sprintf("max size must be positive, got %d", maxSize))
	}
	return newLRUCache[V](maxSize, applyOptions(options...))
}

// NewSimple creates an unbounded cache.
func NewSimple[V any](options ...Option[V]) (Cache[V], error) {
	return newSimpleCache[V](applyOptions(options...))
}

// NewNoop creates a cache that never stores anything.
func NewNoop[V any]() Cache[V] {
	return noopCache[V]{}
}

type noopCache[V any] struct{}

func (noopCache[V]) Get(string) (V, bool) {
	var zero V
	return zero, false
}

func (noopCache[V]) Set(string, V) (bool, error) { return false, nil }
func (noopCache[V]) Delete(string) (bool, error) { return false, nil }
func (noopCache[V]) Clear() error                { return nil }
func (noopCache[V]) Size() int                   { return 0 }
func (noopCache[V]) Keys() []string              { return nil }
func (noopCache[V]) Stats() *Statistics          { return nil }
