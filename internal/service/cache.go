// Package service wires the measurement, calculator and pricing packages to
// storage and exposes the operations the HTTP layer serves.
package service

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/guttosm/measure-pricing-service/internal/metrics"
	"github.com/guttosm/measure-pricing-service/internal/service/cache"
)

const (
	defaultCacheShards = 16
	sweepInterval      = time.Minute
)

// ShardedCache is a TTL cache of byte values spread across LRU shards by key
// hash. It implements cache.CacheWithMetrics.
type ShardedCache struct {
	shards    []*lruShard
	numShards int
	shardMask int

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewShardedCache creates a cache holding about capacity entries for ttl
// each. numShards is rounded up to a power of two; non-positive values get
// the default.
func NewShardedCache(capacity int, ttl time.Duration, numShards int) *ShardedCache {
	if numShards <= 0 {
		numShards = defaultCacheShards
	}
	n := 1
	for n < numShards {
		n *= 2
	}
	numShards = n

	perShard := capacity / numShards
	if perShard < 1 {
		perShard = 1
	}

	sc := &ShardedCache{
		shards:    make([]*lruShard, numShards),
		numShards: numShards,
		shardMask: numShards - 1,
		stopCh:    make(chan struct{}),
	}
	for i := range sc.shards {
		sc.shards[i] = newLRUShard(perShard, ttl)
	}
	go sc.sweepLoop()
	return sc
}

func (sc *ShardedCache) getShard(key string) *lruShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return sc.shards[int(h.Sum32())&sc.shardMask]
}

// Get returns the value stored under key. Callers must treat the slice as
// read-only.
func (sc *ShardedCache) Get(key string) ([]byte, bool) {
	return sc.getShard(key).Get(key)
}

// Set stores a copy of value under key.
func (sc *ShardedCache) Set(key string, value []byte) {
	sc.getShard(key).Set(key, value)
}

// Invalidate removes key.
func (sc *ShardedCache) Invalidate(key string) {
	sc.getShard(key).Invalidate(key)
}

// Clear removes every entry and resets the counters.
func (sc *ShardedCache) Clear() {
	for _, shard := range sc.shards {
		shard.Clear()
	}
	metrics.RecordCacheOperation("clear", "success")
}

// Stop ends the background sweep. It is safe to call more than once.
func (sc *ShardedCache) Stop() {
	sc.stopOnce.Do(func() { close(sc.stopCh) })
}

// Metrics returns counters summed over all shards and publishes the size
// gauges.
func (sc *ShardedCache) Metrics() cache.Metrics {
	var total cache.Metrics
	for _, shard := range sc.shards {
		m := shard.Metrics()
		total.Hits += m.Hits
		total.Misses += m.Misses
		total.Evictions += m.Evictions
		total.Size += m.Size
		total.Capacity += m.Capacity
	}
	metrics.UpdateCacheMetrics(total.Size, total.Capacity)
	return total
}

func (sc *ShardedCache) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sc.sweep()
		case <-sc.stopCh:
			return
		}
	}
}

// sweep drops expired entries that were never read again.
func (sc *ShardedCache) sweep() {
	for _, shard := range sc.shards {
		shard.sweep(time.Now())
	}
}

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// lruShard is one shard: a fixed-size LRU whose entries expire after ttl.
type lruShard struct {
	entries  *lru.Cache[string, cacheEntry]
	capacity int
	ttl      time.Duration

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

func newLRUShard(capacity int, ttl time.Duration) *lruShard {
	// lru.New only fails on a non-positive size.
	entries, _ := lru.New[string, cacheEntry](capacity)
	return &lruShard{entries: entries, capacity: capacity, ttl: ttl}
}

func (s *lruShard) Get(key string) ([]byte, bool) {
	entry, ok := s.entries.Get(key)
	if !ok {
		s.misses.Add(1)
		metrics.RecordCacheOperation("get", "miss")
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		s.entries.Remove(key)
		s.misses.Add(1)
		metrics.RecordCacheOperation("get", "expired")
		return nil, false
	}
	s.hits.Add(1)
	metrics.RecordCacheOperation("get", "hit")
	return entry.value, true
}

func (s *lruShard) Set(key string, value []byte) {
	entry := cacheEntry{
		value:     append([]byte(nil), value...),
		expiresAt: time.Now().Add(s.ttl),
	}
	if evicted := s.entries.Add(key, entry); evicted {
		s.evictions.Add(1)
		metrics.RecordCacheOperation("evict", "capacity")
	}
	metrics.RecordCacheOperation("set", "success")
}

func (s *lruShard) Invalidate(key string) {
	if s.entries.Remove(key) {
		metrics.RecordCacheOperation("invalidate", "success")
	}
}

func (s *lruShard) Clear() {
	s.entries.Purge()
	s.hits.Store(0)
	s.misses.Store(0)
	s.evictions.Store(0)
}

func (s *lruShard) Metrics() cache.Metrics {
	return cache.Metrics{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Evictions: s.evictions.Load(),
		Size:      s.entries.Len(),
		Capacity:  s.capacity,
	}
}

func (s *lruShard) sweep(now time.Time) {
	for _, key := range s.entries.Keys() {
		if entry, ok := s.entries.Peek(key); ok && now.After(entry.expiresAt) {
			s.entries.Remove(key)
		}
	}
}
