package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const (
	// DefaultShardCount is the number of shards. Must be a power of 2.
	DefaultShardCount = 16

	// DefaultCapacity is the default maximum entries per shard.
	DefaultCapacity = 256

	shardMask = DefaultShardCount - 1
)

// Hasher computes the hash used to pick a key's shard.
type Hasher[K any] func(K) uint64

// StringHasher computes the FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// Uint64Hasher mixes a uint64 key so sequential keys spread over shards.
func Uint64Hasher(u uint64) uint64 {
	u ^= u >> 33
	u *= 0xff51afd7ed558ccd
	u ^= u >> 33
	return u
}

// Stats contains cache statistics.
type Stats struct {
	Len           int     // current number of entries
	Capacity      int     // per-shard capacity
	TotalCapacity int     // capacity across all shards
	Hits          uint64  // lookups that found an entry
	Misses        uint64  // lookups that did not
	HitRate       float64 // Hits / (Hits + Misses), 0 when unused
	Evictions     uint64  // entries dropped to respect capacity
}

// ShardedCache is a thread-safe LRU cache split over DefaultShardCount
// shards. Each shard evicts its least recently used entry once it holds
// capacity entries.
type ShardedCache[K comparable, V any] struct {
	shards   [DefaultShardCount]*shard[K, V]
	hasher   Hasher[K]
	capacity int

	onEvict atomic.Pointer[func(K, V)]

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*entry[K, V]
	lru     *lruList[K]
}

type entry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

// evicted is a removed entry whose callback runs after the shard lock is
// released.
type evicted[K comparable, V any] struct {
	key   K
	value V
}

// NewSharded creates a cache holding up to capacity entries per shard.
// If capacity <= 0, DefaultCapacity is used.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *ShardedCache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &ShardedCache[K, V]{hasher: hasher, capacity: capacity}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{
			entries: make(map[K]*entry[K, V]),
			lru:     newLRUList[K](),
		}
	}
	return c
}

// SetOnEvict registers fn to run for every entry removed by capacity
// eviction, Delete or Clear. fn runs without any shard lock held.
func (c *ShardedCache[K, V]) SetOnEvict(fn func(K, V)) {
	if fn == nil {
		c.onEvict.Store(nil)
		return
	}
	c.onEvict.Store(&fn)
}

func (c *ShardedCache[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

func (c *ShardedCache[K, V]) notify(dropped []evicted[K, V]) {
	fn := c.onEvict.Load()
	if fn == nil {
		return
	}
	for _, d := range dropped {
		(*fn)(d.key, d.value)
	}
}

// Get returns the value for key and marks it recently used.
func (c *ShardedCache[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.lru.MoveToFront(e.node)
	value := e.value
	s.mu.Unlock()

	c.hits.Add(1)
	return value, true
}

// Set stores value for key, evicting the shard's oldest entries if needed.
// Replacing an existing value does not run the eviction callback.
func (c *ShardedCache[K, V]) Set(key K, value V) {
	s := c.shardFor(key)

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		e.value = value
		s.lru.MoveToFront(e.node)
		s.mu.Unlock()
		return
	}
	dropped := c.insertLocked(s, key, value)
	s.mu.Unlock()

	c.notify(dropped)
}

// GetOrCreate returns the cached value for key or stores the result of
// create. create runs with the shard lock held, so concurrent callers for
// the same key create the value once.
func (c *ShardedCache[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.shardFor(key)

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		s.lru.MoveToFront(e.node)
		value := e.value
		s.mu.Unlock()
		c.hits.Add(1)
		return value
	}
	c.misses.Add(1)
	value := create()
	dropped := c.insertLocked(s, key, value)
	s.mu.Unlock()

	c.notify(dropped)
	return value
}

func (c *ShardedCache[K, V]) insertLocked(s *shard[K, V], key K, value V) []evicted[K, V] {
	var dropped []evicted[K, V]
	for s.lru.Len() >= c.capacity {
		oldest, ok := s.lru.RemoveOldest()
		if !ok {
			break
		}
		dropped = append(dropped, evicted[K, V]{key: oldest, value: s.entries[oldest].value})
		delete(s.entries, oldest)
		c.evictions.Add(1)
	}
	s.entries[key] = &entry[K, V]{value: value, node: s.lru.PushFront(key)}
	return dropped
}

// Delete removes key. Returns true if it was present.
func (c *ShardedCache[K, V]) Delete(key K) bool {
	s := c.shardFor(key)

	s.mu.Lock()
	e, ok := s.entries[key]
	if ok {
		s.lru.Remove(e.node)
		delete(s.entries, key)
	}
	s.mu.Unlock()

	if ok {
		c.notify([]evicted[K, V]{{key: key, value: e.value}})
	}
	return ok
}

// Clear removes every entry.
func (c *ShardedCache[K, V]) Clear() {
	var dropped []evicted[K, V]
	for _, s := range c.shards {
		s.mu.Lock()
		for k, e := range s.entries {
			dropped = append(dropped, evicted[K, V]{key: k, value: e.value})
		}
		s.entries = make(map[K]*entry[K, V])
		s.lru.Clear()
		s.mu.Unlock()
	}
	c.notify(dropped)
}

// Range calls fn for every entry until fn returns false. Shards are visited
// one at a time under their read lock; fn must not call back into the cache.
func (c *ShardedCache[K, V]) Range(fn func(K, V) bool) {
	for _, s := range c.shards {
		s.mu.RLock()
		for k, e := range s.entries {
			if !fn(k, e.value) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Len returns the number of entries across all shards.
func (c *ShardedCache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// Capacity returns the per-shard capacity.
func (c *ShardedCache[K, V]) Capacity() int { return c.capacity }

// Stats returns current statistics.
func (c *ShardedCache[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{
		Len:           c.Len(),
		Capacity:      c.capacity,
		TotalCapacity: c.capacity * DefaultShardCount,
		Hits:          hits,
		Misses:        misses,
		HitRate:       hitRate,
		Evictions:     c.evictions.Load(),
	}
}

// ResetStats zeroes the hit, miss and eviction counters.
func (c *ShardedCache[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
}
