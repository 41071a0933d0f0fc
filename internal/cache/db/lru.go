package db

import (
	"container/list"
	"sync/atomic"

	"github.com/IgorHrabrov/openiddict-core/internal/cache/db/model"
)

type LRUMode int

const (
	Listing LRUMode = iota
	Sampling
)

func (sh *Shard[V]) enableLRU() {
	sh.Lock()
	if sh.lru == nil {
		sh.lru = list.New()
		if sh.lidx == nil {
			sh.lidx = make(map[uint64]*list.Element, len(sh.items))
		}
		for k := range sh.items {
			sh.lidx[k] = sh.lru.PushFront(k)
		}
	}
	sh.lruOn = true
	sh.Unlock()
}

// lruOnInsertUnlocked - is unsafe without shard.Lock due to it mutates the list.
func (sh *Shard[V]) lruOnInsertUnlocked(key uint64) {
	if !sh.lruOn || sh.lru == nil {
		return
	}
	if el := sh.lidx[key]; el != nil {
		sh.lru.MoveToFront(el)
		return
	}
	sh.lidx[key] = sh.lru.PushFront(key)
}

// lruOnAccessUnlocked - is unsafe without shard.Lock due to it mutates the list otherwise use touchLRU.
func (sh *Shard[V]) lruOnAccessUnlocked(key uint64) {
	if !sh.lruOn || sh.lru == nil {
		return
	}
	if el := sh.lidx[key]; el != nil {
		sh.lru.MoveToFront(el)
	}
}

// lruOnDeleteUnlocked - is unsafe without shard.Lock due to it mutates the list.
func (sh *Shard[V]) lruOnDeleteUnlocked(key uint64) {
	if !sh.lruOn || sh.lru == nil {
		return
	}
	if el := sh.lidx[key]; el != nil {
		sh.lru.Remove(el)
		delete(sh.lidx, key)
	}
}

// touchLRU - threadsafe.
func (sh *Shard[V]) touchLRU(key uint64) {
	if !sh.lruOn || sh.lru == nil {
		return
	}
	if sh.TryLock() {
		if el := sh.lidx[key]; el != nil {
			sh.lru.MoveToFront(el)
		}
		sh.Unlock()
	}
}

// tail ops for eviction
func (sh *Shard[V]) lruPeekTail() (key uint64, val *model.Entry[V], ok bool) {
	if !sh.lruOn || sh.lru == nil {
		return 0, nil, false
	}
	sh.RLock()
	defer sh.RUnlock()
	el := sh.lru.Back()
	if el == nil {
		return 0, nil, false
	}
	k := el.Value.(uint64)
	v, ok := sh.items[k]
	if !ok {
		return 0, nil, false
	}
	return k, v, true
}

func (sh *Shard[V]) lruPopTail() (key uint64, val *model.Entry[V], ok bool) {
	if !sh.lruOn || sh.lru == nil {
		return 0, nil, false
	}
	sh.Lock()
	defer sh.Unlock()
	el := sh.lru.Back()
	if el == nil {
		return 0, nil, false
	}
	k := el.Value.(uint64)
	v, ok := sh.items[k]
	if !ok {
		sh.lru.Remove(el)
		delete(sh.lidx, k)
		return 0, nil, false
	}
	delete(sh.items, k)
	v.Release()
	atomic.AddInt64(&sh.len, -1)
	atomic.AddInt64(&sh.weight, -v.Weight())
	sh.lru.Remove(el)
	delete(sh.lidx, k)
	return k, v, true
}
