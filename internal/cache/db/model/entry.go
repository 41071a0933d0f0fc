package model

import (
	"sync/atomic"

	"github.com/IgorHrabrov/openiddict-core/internal/shared/cachedtime"
	"github.com/IgorHrabrov/openiddict-core/internal/signal"
)

// Entry is one materialized cache slot: a value, its weight in entry units,
// and the invalidation signals of every entity the value contains. Entries
// are immutable after construction except for the LRU touch stamp.
type Entry[V any] struct {
	key       *Key
	value     V
	weight    int64
	signals   []*signal.Signal
	touchedAt int64       // atomic: unix nano (used in LRU algo.)
	released  atomic.Bool // guards signal de-referencing on removal paths
}

// NewEntry builds an entry. Weight is clamped to the store's minimum unit of 1.
func NewEntry[V any](key *Key, value V, weight int64, signals []*signal.Signal) *Entry[V] {
	if weight < 1 {
		weight = 1
	}
	e := &Entry[V]{
		key:     key,
		value:   value,
		weight:  weight,
		signals: signals,
	}
	e.RenewTouchedAt()
	return e
}

func (e *Entry[V]) Key() *Key {
	if e == nil {
		return nil
	}
	return e.key
}

func (e *Entry[V]) Value() V      { return e.value }
func (e *Entry[V]) Weight() int64 { return e.weight }

func (e *Entry[V]) Signals() []*signal.Signal { return e.signals }

// Revoked reports whether any attached signal has been revoked, which makes
// the entry logically absent.
func (e *Entry[V]) Revoked() bool {
	for _, s := range e.signals {
		if s.Revoked() {
			return true
		}
	}
	return false
}

// Release drops the entry's signal references exactly once. It must be called
// on every path that removes the entry from the store.
func (e *Entry[V]) Release() {
	if !e.released.CompareAndSwap(false, true) {
		return
	}
	for _, s := range e.signals {
		s.Unref()
	}
}

func (e *Entry[V]) TouchedAt() int64 {
	return atomic.LoadInt64(&e.touchedAt)
}

func (e *Entry[V]) RenewTouchedAt() {
	atomic.StoreInt64(&e.touchedAt, cachedtime.UnixNano())
}
