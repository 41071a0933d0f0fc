package cache

import "sync/atomic"

type counters struct {
	hits                   atomic.Int64
	misses                 atomic.Int64
	revocations            atomic.Int64
	evictedHardLimitItems  atomic.Int64
	evictedHardLimitWeight atomic.Int64
}

func newCounters() *counters {
	return &counters{}
}

func (c *counters) snapshot() (hits, misses, revocations, hardEvictedItems, hardEvictedWeight int64) {
	return c.hits.Load(), c.misses.Load(), c.revocations.Load(), c.evictedHardLimitItems.Load(), c.evictedHardLimitWeight.Load()
}
