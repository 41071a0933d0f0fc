// Package cachedtime serves a coarse wall clock refreshed on a fixed tick.
// LRU touch stamps and janitor idle checks do not need nanosecond precision,
// so hot paths read one atomic instead of calling time.Now.
package cachedtime

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/IgorHrabrov/openiddict-core/config"
)

const cacheTimeEach = 10 * time.Millisecond

var (
	nowUnix atomic.Int64
	running atomic.Bool
)

// RunIfEnabled starts the clock updater when cfg.DB.CacheTimeEnabled is set.
// The updater exits with ctx; afterwards Now/UnixNano fall back to time.Now.
// Repeated calls while a previous updater is alive are no-ops.
func RunIfEnabled(ctx context.Context, cfg *config.Cache) {
	if cfg == nil || !cfg.DB.CacheTimeEnabled {
		return
	}
	if !running.CompareAndSwap(false, true) {
		return
	}
	nowUnix.Store(time.Now().UnixNano())

	go func() {
		ticker := time.NewTicker(cacheTimeEach)
		defer ticker.Stop()
		defer running.Store(false)
		for {
			select {
			case <-ctx.Done():
				return
			case tt := <-ticker.C:
				nowUnix.Store(tt.UnixNano())
			}
		}
	}()
}

func Now() time.Time {
	if !running.Load() {
		return time.Now()
	}
	return time.Unix(0, nowUnix.Load())
}

func UnixNano() int64 {
	if !running.Load() {
		return time.Now().UnixNano()
	}
	return nowUnix.Load()
}

func Since(t time.Time) time.Duration {
	return Now().Sub(t)
}
