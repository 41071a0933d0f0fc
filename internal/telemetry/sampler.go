package telemetry

import (
	"github.com/IgorHrabrov/openiddict-core/internal/evictor"
	"github.com/IgorHrabrov/openiddict-core/internal/janitor"
)

type sampler struct {
	cache   Cacher
	evictor evictor.Evictor
	janitor janitor.Janitor
}

func newSampler(c Cacher, e evictor.Evictor, j janitor.Janitor) sampler {
	return sampler{cache: c, evictor: e, janitor: j}
}

// snapshot holds cumulative counters (monotonic).
type snapshot struct {
	hits        uint64
	misses      uint64
	revocations uint64

	softScans         uint64
	softHits          uint64
	softEvictedItems  uint64
	softEvictedWeight uint64
	hardEvictedItems  uint64
	hardEvictedWeight uint64

	janitorScans  uint64
	janitorReaped uint64
}

func (s sampler) snapshot() snapshot {
	hits, misses, revocations, hardItems, hardWeight := s.cache.Metrics()
	softScans, softHits, softItems, softWeight := s.evictor.Metrics()
	scans, reaped := s.janitor.Metrics()

	return snapshot{
		hits:        uint64(max(hits, 0)),
		misses:      uint64(max(misses, 0)),
		revocations: uint64(max(revocations, 0)),

		softScans:         uint64(max(softScans, 0)),
		softHits:          uint64(max(softHits, 0)),
		softEvictedItems:  uint64(max(softItems, 0)),
		softEvictedWeight: uint64(max(softWeight, 0)),
		hardEvictedItems:  uint64(max(hardItems, 0)),
		hardEvictedWeight: uint64(max(hardWeight, 0)),

		janitorScans:  uint64(max(scans, 0)),
		janitorReaped: uint64(max(reaped, 0)),
	}
}

// deltaSnapshot converts cumulative snapshots to per-interval deltas.
// If counters reset (cur < prev), it treats cur as the delta.
func deltaSnapshot(prev, cur snapshot) snapshot {
	return snapshot{
		hits:        delta(prev.hits, cur.hits),
		misses:      delta(prev.misses, cur.misses),
		revocations: delta(prev.revocations, cur.revocations),

		softScans:         delta(prev.softScans, cur.softScans),
		softHits:          delta(prev.softHits, cur.softHits),
		softEvictedItems:  delta(prev.softEvictedItems, cur.softEvictedItems),
		softEvictedWeight: delta(prev.softEvictedWeight, cur.softEvictedWeight),
		hardEvictedItems:  delta(prev.hardEvictedItems, cur.hardEvictedItems),
		hardEvictedWeight: delta(prev.hardEvictedWeight, cur.hardEvictedWeight),

		janitorScans:  delta(prev.janitorScans, cur.janitorScans),
		janitorReaped: delta(prev.janitorReaped, cur.janitorReaped),
	}
}

func delta(prev, cur uint64) uint64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
