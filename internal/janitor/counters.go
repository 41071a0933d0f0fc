package janitor

import "sync/atomic"

type janitorCounters struct {
	scans  atomic.Int64 // total sweep cycles
	reaped atomic.Int64 // signals removed from the registry
}

func newJanitorCounters() *janitorCounters {
	return &janitorCounters{}
}

func (c *janitorCounters) snapshot() (scans, reaped int64) {
	return c.scans.Load(), c.reaped.Load()
}
