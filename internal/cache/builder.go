package cache

import (
	"github.com/IgorHrabrov/openiddict-core/internal/cache/db/model"
	"github.com/IgorHrabrov/openiddict-core/internal/signal"
)

// EntryBuilder populates one cache entry under a scoped lifetime. Nothing is
// visible in the store, and no signal is referenced, until Commit. Release
// after Commit is a no-op; Release without Commit abandons the entry.
type EntryBuilder[V any] struct {
	store   *Store[V]
	key     *model.Key
	value   V
	weight  int64
	signals []*signal.Signal
	done    bool
}

// AddSignal attaches an invalidation signal; revoking any attached signal
// expires the committed entry.
func (b *EntryBuilder[V]) AddSignal(s *signal.Signal) {
	if b.done || s == nil {
		return
	}
	b.signals = append(b.signals, s)
}

// SetWeight sets the entry weight in entry units; values below 1 are clamped.
func (b *EntryBuilder[V]) SetWeight(weight int64) {
	if b.done {
		return
	}
	b.weight = weight
}

func (b *EntryBuilder[V]) SetValue(value V) {
	if b.done {
		return
	}
	b.value = value
}

// Commit materializes the entry in the store.
func (b *EntryBuilder[V]) Commit() {
	if b.done {
		return
	}
	b.done = true
	b.store.commit(model.NewEntry(b.key, b.value, b.weight, b.signals))
}

// Release abandons the builder if it was not committed. Safe to defer
// unconditionally.
func (b *EntryBuilder[V]) Release() {
	if b.done {
		return
	}
	b.done = true
	b.signals = nil
}
