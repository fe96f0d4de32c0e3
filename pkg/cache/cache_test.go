package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/orthomerge/errors"
	"github.com/c360/orthomerge/metric"
)

// testBasicOperations exercises the contract shared by every storing cache.
func testBasicOperations(t *testing.T, cache Cache[string]) {
	_, ok := cache.Get("AB000001")
	assert.False(t, ok, "empty cache must miss")

	created, err := cache.Set("AB000001", "ACGT")
	require.NoError(t, err)
	assert.True(t, created)

	value, ok := cache.Get("AB000001")
	assert.True(t, ok)
	assert.Equal(t, "ACGT", value)

	created, err = cache.Set("AB000001", "ACGTT")
	require.NoError(t, err)
	assert.False(t, created, "second set updates in place")

	value, _ = cache.Get("AB000001")
	assert.Equal(t, "ACGTT", value)
	assert.Equal(t, 1, cache.Size())

	deleted, err := cache.Delete("AB000001")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = cache.Delete("AB000001")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = cache.Set("", "ACGT")
	assert.True(t, errors.IsInvalid(err), "empty key is invalid")

	for i := 0; i < 3; i++ {
		_, err := cache.Set(fmt.Sprintf("seq%d", i), "A")
		require.NoError(t, err)
	}
	require.NoError(t, cache.Clear())
	assert.Equal(t, 0, cache.Size())
	assert.Empty(t, cache.Keys())
}

func TestSimpleCache(t *testing.T) {
	cache, err := NewSimple[string]()
	require.NoError(t, err)
	testBasicOperations(t, cache)

	stats := cache.Stats()
	require.NotNil(t, stats)
	assert.Equal(t, int64(3), stats.Hits())
	assert.Equal(t, int64(1), stats.Misses())
}

func TestLRUCache(t *testing.T) {
	cache, err := NewLRU[string](10)
	require.NoError(t, err)
	testBasicOperations(t, cache)
}

func TestLRUCache_Eviction(t *testing.T) {
	var evicted []string
	cache, err := NewLRU[int](2, WithEvictionCallback(func(key string, _ int) {
		evicted = append(evicted, key)
	}))
	require.NoError(t, err)

	_, _ = cache.Set("1", 1)
	_, _ = cache.Set("2", 2)
	_, _ = cache.Get("1") // 2 is now least recently used
	_, _ = cache.Set("3", 3)

	assert.Equal(t, []string{"2"}, evicted)
	assert.Equal(t, []string{"3", "1"}, cache.Keys())
	assert.Equal(t, int64(1), cache.Stats().Evictions())
	assert.Equal(t, int64(2), cache.Stats().MaxSize())
}

func TestLRUCache_InvalidSize(t *testing.T) {
	_, err := NewLRU[string](0)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestNoopCache(t *testing.T) {
	cache := NewNoop[string]()

	created, err := cache.Set("1", "A")
	require.NoError(t, err)
	assert.False(t, created)

	_, ok := cache.Get("1")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Size())
	assert.Nil(t, cache.Stats())
}

func TestLRUCache_Concurrent(t *testing.T) {
	cache, err := NewLRU[int](64)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("%d", (g*200+i)%100)
				_, _ = cache.Set(key, i)
				_, _ = cache.Get(key)
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Size(), 64)
	assert.Equal(t, int64(1600), cache.Stats().Hits()+cache.Stats().Misses())
}

func TestCache_Metrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	cache, err := NewLRU[string](4, WithMetrics[string](registry, "catalog"))
	require.NoError(t, err)

	_, _ = cache.Set("1", "A")
	_, _ = cache.Get("1")
	_, _ = cache.Get("2")

	lru := cache.(*lruCache[string])
	require.NotNil(t, lru.obs.metrics)
	assert.Equal(t, 1.0, testutil.ToFloat64(lru.obs.metrics.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(lru.obs.metrics.misses))
	assert.Equal(t, 1.0, testutil.ToFloat64(lru.obs.metrics.size))

	// same prefix twice is a registration conflict
	_, err = NewLRU[string](4, WithMetrics[string](registry, "catalog"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"disabled ignores fields", Config{Enabled: false, Strategy: "bogus"}, false},
		{"simple", Config{Enabled: true, Strategy: StrategySimple}, false},
		{"lru without size", Config{Enabled: true, Strategy: StrategyLRU}, true},
		{"unknown strategy", Config{Enabled: true, Strategy: "ttl"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.IsInvalid(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewFromConfig(t *testing.T) {
	cache, err := NewFromConfig[string](Config{Enabled: false})
	require.NoError(t, err)
	assert.IsType(t, noopCache[string]{}, cache)

	cache, err = NewFromConfig[string](Config{Enabled: true, Strategy: StrategySimple})
	require.NoError(t, err)
	assert.IsType(t, &simpleCache[string]{}, cache)

	cache, err = NewFromConfig[string](DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &lruCache[string]{}, cache)
}
