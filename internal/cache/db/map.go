// Package db implements the sharded associative store behind the cache.
// Hot paths (Get/Set/Remove) avoid allocations and keep critical sections
// short. Global counters are atomics so they can be read without locks.
package db

import (
	"sync/atomic"

	"github.com/IgorHrabrov/openiddict-core/config"
	"github.com/IgorHrabrov/openiddict-core/internal/cache/db/model"
)

// Tunables.
const (
	NumOfShards = 256
	shardMask   = NumOfShards - 1 // faster than division
)

// Map is a sharded concurrent map with precise global counters.
type Map[V any] struct {
	mode LRUMode // eviction strategy
	cfg  *config.Cache

	len    int64  // aggregated number of items (atomic)
	weight int64  // aggregated entry weight in units (atomic)
	iter   uint64 // round-robin cursor for NextShard()

	shards [NumOfShards]*Shard[V]
}

// NewMap creates the map and initializes shards.
func NewMap[V any](cfg *config.Cache) *Map[V] {
	m := &Map[V]{cfg: cfg}
	for id := uint64(0); id < NumOfShards; id++ {
		m.shards[id] = NewShard[V](id)
	}

	if cfg.Eviction.Enabled() && cfg.Eviction.IsListing {
		m.useListingMode()
	} else {
		m.mode = Sampling
	}
	return m
}

func (m *Map[V]) useListingMode() {
	m.mode = Listing
	for _, sh := range m.shards {
		sh.enableLRU()
	}
}

// Set inserts/updates a value and adjusts global counters via per-shard deltas.
func (m *Map[V]) Set(key uint64, value *model.Entry[V]) {
	weightDelta, lenDelta := m.Shard(key).Set(key, value)
	if weightDelta != 0 {
		atomic.AddInt64(&m.weight, weightDelta)
	}
	if lenDelta != 0 {
		atomic.AddInt64(&m.len, lenDelta)
	}
}

// Get reads a value.
func (m *Map[V]) Get(key uint64) (value *model.Entry[V], ok bool) {
	return m.Shard(key).Get(key)
}

// Remove deletes a key and adjusts global counters.
func (m *Map[V]) Remove(key uint64) (freedWeight int64, hit bool) {
	freedWeight, hit = m.Shard(key).Remove(key)
	if hit {
		atomic.AddInt64(&m.len, -1)
		atomic.AddInt64(&m.weight, -freedWeight)
	}
	return
}

// Touch moves the key to the LRU front of its shard (listing mode only).
func (m *Map[V]) Touch(key uint64) {
	m.Shard(key).touchLRU(key)
}

// Clear removes all entries across all shards.
func (m *Map[V]) Clear() {
	for _, sh := range m.shards {
		freed, items := sh.Clear()
		atomic.AddInt64(&m.weight, -freed)
		atomic.AddInt64(&m.len, -items)
	}
}

func (m *Map[V]) Len() int64    { return atomic.LoadInt64(&m.len) }
func (m *Map[V]) Weight() int64 { return atomic.LoadInt64(&m.weight) }

// Shard maps a key to its shard.
func (m *Map[V]) Shard(key uint64) *Shard[V] {
	return m.shards[key&shardMask]
}

// NextShard cycles shards round-robin; used by eviction scans.
func (m *Map[V]) NextShard() *Shard[V] {
	return m.shards[(atomic.AddUint64(&m.iter, 1)-1)&shardMask]
}
