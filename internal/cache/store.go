// Package cache wraps the sharded db with the entry-level semantics the
// facade relies on: collision-checked lookups, pull-based expiration of
// revoked entries, scoped entry population, and weight-bounded commits.
package cache

import (
	"context"
	"log/slog"

	"github.com/IgorHrabrov/openiddict-core/config"
	"github.com/IgorHrabrov/openiddict-core/internal/cache/db"
	"github.com/IgorHrabrov/openiddict-core/internal/cache/db/model"
)

const commitBackoffSpins = 1024

type Store[V any] struct {
	cfg      *config.Cache
	logger   *slog.Logger
	db       *db.Map[V]
	counters *counters
}

func New[V any](_ context.Context, cfg *config.Cache, logger *slog.Logger) *Store[V] {
	return &Store[V]{
		cfg:      cfg,
		logger:   logger,
		counters: newCounters(),
		db:       db.NewMap[V](cfg),
	}
}

// TryGet returns the value stored under k. A revoked entry is treated as
// absent: it is removed on the spot and its signal references are released.
func (s *Store[V]) TryGet(k *model.Key) (value V, ok bool) {
	var zero V

	entry, found := s.db.Get(k.Value())
	if !found {
		s.counters.misses.Add(1)
		return zero, false
	}
	if !entry.Key().IsTheSame(k) {
		// hash collision
		s.counters.misses.Add(1)
		return zero, false
	}
	if entry.Revoked() {
		s.db.Remove(k.Value())
		s.counters.revocations.Add(1)
		s.counters.misses.Add(1)
		return zero, false
	}

	entry.RenewTouchedAt()
	s.db.Touch(k.Value())
	s.counters.hits.Add(1)
	return entry.Value(), true
}

// CreateEntry opens a scoped builder for k. The entry becomes visible only on
// Commit; an abandoned builder leaves no trace. Callers must defer Release.
func (s *Store[V]) CreateEntry(k *model.Key) *EntryBuilder[V] {
	return &EntryBuilder[V]{store: s, key: k, weight: 1}
}

// Remove evicts the entry under k without revoking its signals.
func (s *Store[V]) Remove(k *model.Key) bool {
	_, hit := s.db.Remove(k.Value())
	return hit
}

// Clear evicts every entry. Signals are released, not revoked.
func (s *Store[V]) Clear() { s.db.Clear() }

func (s *Store[V]) Len() int64    { return s.db.Len() }
func (s *Store[V]) Weight() int64 { return s.db.Weight() }

func (s *Store[V]) Metrics() (hits, misses, revocations, hardEvictedItems, hardEvictedWeight int64) {
	return s.counters.snapshot()
}

// SoftEvictUntilWithinLimit is driven by the background evictor.
func (s *Store[V]) SoftEvictUntilWithinLimit(backoff int64) (freed, evicted int64) {
	if s.cfg.Eviction.Enabled() {
		freed, evicted = s.db.EvictUntilWithinLimit(s.cfg.Eviction.SoftWeightLimit, backoff)
	}
	return
}

func (s *Store[V]) SoftWeightLimitOvercome() bool {
	return s.cfg.Eviction.Enabled() && s.db.Len() > 0 && s.db.Weight() > s.cfg.Eviction.SoftWeightLimit
}

func (s *Store[V]) commit(entry *model.Entry[V]) {
	for _, sig := range entry.Signals() {
		sig.Ref()
	}

	if s.hardWeightLimitOvercome(entry.Weight()) {
		limit := s.cfg.DB.Size - entry.Weight()
		if limit < 0 {
			limit = 0
		}
		freed, items := s.db.EvictUntilWithinLimit(limit, commitBackoffSpins)
		if freed > 0 || items > 0 {
			s.counters.evictedHardLimitItems.Add(items)
			s.counters.evictedHardLimitWeight.Add(freed)
		}
	}

	s.db.Set(entry.Key().Value(), entry)
}

func (s *Store[V]) hardWeightLimitOvercome(incoming int64) bool {
	return s.cfg.Eviction.Enabled() && s.db.Len() > 0 && s.db.Weight()+incoming > s.cfg.DB.Size
}
