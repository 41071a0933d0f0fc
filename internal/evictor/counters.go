package evictor

import "sync/atomic"

type evictorCounters struct {
	scans         atomic.Int64
	scanHits      atomic.Int64
	evictedItems  atomic.Int64
	evictedWeight atomic.Int64
}

func newEvictorCounters() *evictorCounters {
	return &evictorCounters{}
}

func (c *evictorCounters) snapshot() (scans, hits, evictedItems, evictedWeight int64) {
	return c.scans.Load(), c.scanHits.Load(), c.evictedItems.Load(), c.evictedWeight.Load()
}
