package cache

import (
	"sync"
	"sync/atomic"
)

// Statistics tracks cache activity. Counters are updated atomically.
type Statistics struct {
	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64

	mu          sync.RWMutex
	currentSize int64
	maxSize     int64
}

// NewStatistics creates an empty statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{}
}

// Hit records a cache hit.
func (s *Statistics) Hit() { atomic.AddInt64(&s.hits, 1) }

// Miss records a cache miss.
func (s *Statistics) Miss() { atomic.AddInt64(&s.misses, 1) }

// Set records a set operation.
func (s *Statistics) Set() { atomic.AddInt64(&s.sets, 1) }

// Delete records a delete operation.
func (s *Statistics) Delete() { atomic.AddInt64(&s.deletes, 1) }

// Eviction records an eviction.
func (s *Statistics) Eviction() { atomic.AddInt64(&s.evictions, 1) }

// UpdateSize records the current entry count and tracks the high-water mark.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.maxSize {
		s.maxSize = size
	}
	s.mu.Unlock()
}

// Hits returns the total number of cache hits.
func (s *Statistics) Hits() int64 { return atomic.LoadInt64(&s.hits) }

// Misses returns the total number of cache misses.
func (s *Statistics) Misses() int64 { return atomic.LoadInt64(&s.misses) }

// Sets returns the total number of set operations.
func (s *Statistics) Sets() int64 { return atomic.LoadInt64(&s.sets) }

// Deletes returns the total number of delete operations.
func (s *Statistics) Deletes() int64 { return atomic.LoadInt64(&s.deletes) }

// Evictions returns the total number of evictions.
func (s *Statistics) Evictions() int64 { return atomic.LoadInt64(&s.evictions) }

// CurrentSize returns the last recorded entry count.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// MaxSize returns the largest entry count observed.
func (s *Statistics) MaxSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxSize
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (s *Statistics) HitRatio() float64 {
	hits := s.Hits()
	total := hits + s.Misses()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// StatsSummary is a point-in-time snapshot of Statistics.
type StatsSummary struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Sets        int64   `json:"sets"`
	Deletes     int64   `json:"deletes"`
	Evictions   int64   `json:"evictions"`
	CurrentSize int64   `json:"current_size"`
	MaxSize     int64   `json:"max_size"`
	HitRatio    float64 `json:"hit_ratio"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Hits:        s.Hits(),
		Misses:      s.Misses(),
		Sets:        s.Sets(),
		Deletes:     s.Deletes(),
		Evictions:   s.Evictions(),
		CurrentSize: s.CurrentSize(),
		MaxSize:     s.MaxSize(),
		HitRatio:    s.HitRatio(),
	}
}
