package db

import (
	"container/list"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/IgorHrabrov/openiddict-core/internal/cache/db/model"
)

const (
	rLockSpins  = 64
	rwLockSpins = 64
)

// Shard is an independent segment of the sharded map.
// It keeps per-shard counters read with atomics so global readers can avoid locks.
type Shard[V any] struct {
	sync.RWMutex
	items map[uint64]*model.Entry[V]

	id     uint64
	weight int64 // total entry weight in units (atomic)
	len    int64 // number of items (atomic)

	// LRU (enabled in Listing mode)
	lruOn bool
	lru   *list.List
	lidx  map[uint64]*list.Element
}

func NewShard[V any](id uint64) *Shard[V] {
	return &Shard[V]{id: id, items: make(map[uint64]*model.Entry[V])}
}

func (sh *Shard[V]) ID() uint64    { return sh.id }
func (sh *Shard[V]) Weight() int64 { return atomic.LoadInt64(&sh.weight) }
func (sh *Shard[V]) Len() int64    { return atomic.LoadInt64(&sh.len) }

// Set inserts or updates a key. A replaced entry has its signal references
// released. Returns deltas for global aggregations.
func (sh *Shard[V]) Set(key uint64, new *model.Entry[V]) (weightDelta int64, lenDelta int64) {
	sh.Lock()
	if old, hit := sh.items[key]; hit {
		sh.items[key] = new
		sh.lruOnAccessUnlocked(key)
		old.Release()

		lenDelta = 0
		weightDelta = new.Weight() - old.Weight()
		atomic.AddInt64(&sh.weight, weightDelta)
	} else {
		sh.items[key] = new
		sh.lruOnInsertUnlocked(key)

		lenDelta = 1
		weightDelta = new.Weight()
		atomic.AddInt64(&sh.len, lenDelta)
		atomic.AddInt64(&sh.weight, weightDelta)
	}
	sh.Unlock()
	return
}

// Get reads a value under a shared lock.
func (sh *Shard[V]) Get(key uint64) (value *model.Entry[V], hit bool) {
	sh.RLock()
	value, hit = sh.items[key]
	sh.RUnlock()
	return
}

// Remove deletes a key under the write lock.
func (sh *Shard[V]) Remove(key uint64) (freedWeight int64, hit bool) {
	sh.Lock()
	freedWeight, hit = sh.RemoveUnlocked(key)
	sh.Unlock()
	return
}

// RemoveUnlocked deletes a key when the shard is already exclusively locked.
func (sh *Shard[V]) RemoveUnlocked(key uint64) (freedWeight int64, hit bool) {
	var old *model.Entry[V]
	if old, hit = sh.items[key]; hit {
		delete(sh.items, key)
		sh.lruOnDeleteUnlocked(key)
		old.Release()

		freedWeight = old.Weight()
		atomic.AddInt64(&sh.weight, -freedWeight)
		atomic.AddInt64(&sh.len, -1)
	}
	return
}

// Clear removes all entries, releasing their signal references, and returns
// (freedWeight, itemsRemoved).
func (sh *Shard[V]) Clear() (freedWeight int64, items int64) {
	sh.Lock()
	items = atomic.LoadInt64(&sh.len)
	freedWeight = atomic.LoadInt64(&sh.weight)

	for _, old := range sh.items {
		old.Release()
	}
	sh.items = make(map[uint64]*model.Entry[V], items)

	atomic.StoreInt64(&sh.len, 0)
	atomic.StoreInt64(&sh.weight, 0)
	if sh.lru != nil {
		sh.lru.Init()
	}
	if sh.lidx != nil {
		clear(sh.lidx)
	}
	sh.Unlock()
	return
}

func (sh *Shard[V]) tryRLock() bool {
	for i := 0; i < rLockSpins; i++ {
		if sh.TryRLock() {
			return true
		}
		runtime.Gosched()
	}
	return false
}

func (sh *Shard[V]) tryLock() bool {
	for i := 0; i < rwLockSpins; i++ {
		if sh.TryLock() {
			return true
		}
		runtime.Gosched()
	}
	return false
}
