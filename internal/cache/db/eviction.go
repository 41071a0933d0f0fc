package db

import (
	"runtime"
	"sync/atomic"

	"github.com/IgorHrabrov/openiddict-core/internal/cache/db/model"
)

const shardsSample, keysSample = 4, 8

// EvictUntilWithinLimit removes least-recently-touched entries until aggregate
// weight drops to the limit or the spin budget runs out. Victim signals are
// released, never revoked, so sibling entries sharing a signal stay valid.
func (m *Map[V]) EvictUntilWithinLimit(limit, backoff int64) (freed, evicted int64) {
	if m.mode == Listing {
		return m.evictUntilWithinLimitByList(limit, backoff)
	}
	return m.evictUntilWithinLimitBySample(limit, backoff)
}

func (m *Map[V]) evictUntilWithinLimitByList(limit, backoff int64) (freed, evicted int64) {
	for backoff > 0 {
		if atomic.LoadInt64(&m.weight) <= limit || m.Len() == 0 {
			return freed, evicted
		}
		sh := m.NextShard()
		if sh.Len() == 0 {
			backoff--
			continue
		}
		if _, v, ok := sh.lruPopTail(); ok {
			w := v.Weight()
			atomic.AddInt64(&m.weight, -w)
			atomic.AddInt64(&m.len, -1)
			freed += w
			evicted++
		}
		backoff--
	}
	return
}

func (m *Map[V]) evictUntilWithinLimitBySample(limit, backoff int64) (freed, evicted int64) {
	for atomic.LoadInt64(&m.weight) > limit && m.Len() > 0 && backoff > 0 {
		sh, victim, found := m.pickVictimBySample(shardsSample, keysSample)
		if !found || !sh.tryLock() {
			backoff--
			continue
		}
		weightFreed, hit := sh.RemoveUnlocked(victim.Key().Value())
		sh.Unlock()
		if hit {
			atomic.AddInt64(&m.weight, -weightFreed)
			atomic.AddInt64(&m.len, -1)
			freed += weightFreed
			evicted++
		}
		backoff--
	}
	return freed, evicted
}

// pickVictimBySample probes a few shards and returns the least-recently
// touched entry among the scanned samples.
func (m *Map[V]) pickVictimBySample(shardsSample, keysSample int64) (bestShard *Shard[V], victim *model.Entry[V], ok bool) {
	var (
		bestV    *model.Entry[V]
		bestAt   int64
		bestSh   *Shard[V]
		haveBest bool
	)

	for i := int64(0); i < shardsSample; i++ {
		sh := m.NextShard()
		if sh.Len() == 0 {
			continue
		} else if !sh.tryRLock() {
			runtime.Gosched()
			continue
		}

		toScan := keysSample
		for _, reviewEntry := range sh.items {
			at := reviewEntry.TouchedAt()
			if !haveBest || at < bestAt {
				bestV, bestAt, bestSh, haveBest = reviewEntry, at, sh, true
			}

			if toScan--; toScan <= 0 {
				break
			}
		}
		sh.RUnlock()
	}

	if !haveBest {
		return nil, nil, false
	}
	return bestSh, bestV, true
}
