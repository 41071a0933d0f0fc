package evictor

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/IgorHrabrov/openiddict-core/config"
)

var ErrEvictorNotResponded = errors.New("evictor not responded")

// Target is the store surface the evictor drives.
type Target interface {
	Len() int64
	Weight() int64
	SoftWeightLimitOvercome() bool
	SoftEvictUntilWithinLimit(backoff int64) (freedWeight, evictedItems int64)
}

type Evictor interface {
	ForceCall(timeout time.Duration) error
	Metrics() (scans, hits, evictedItems, evictedWeight int64)
	Close() error
}

type EvictionWorker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.EvictionCfg
	logger   *slog.Logger
	target   Target
	counters *evictorCounters
	invokeCh chan struct{}
}

func New(
	ctx context.Context,
	cfg *config.EvictionCfg,
	logger *slog.Logger,
	target Target,
) Evictor {
	if !cfg.Enabled() {
		return &NoOpEvictor{}
	}

	ctx, cancel := context.WithCancel(ctx)
	return (&EvictionWorker{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		target:   target,
		counters: newEvictorCounters(),
		invokeCh: make(chan struct{}),
	}).run()
}

func (w *EvictionWorker) ForceCall(timeout time.Duration) error {
	after := time.NewTimer(timeout)
	defer after.Stop()

	select {
	case <-w.ctx.Done():
	case w.invokeCh <- struct{}{}:
	case <-after.C:
		return ErrEvictorNotResponded
	}
	return nil
}

func (w *EvictionWorker) Metrics() (scans, hits, evictedItems, evictedWeight int64) {
	return w.counters.snapshot()
}

func (w *EvictionWorker) Close() error {
	w.cancel()
	return nil
}

func (w *EvictionWorker) run() *EvictionWorker {
	w.logger.Info("evictor is running", "calls_per_sec", w.cfg.CallsPerSec, "backoff_spins", w.cfg.BackoffSpinsPerCall)

	go func() {
		defer w.logger.Info("evictor is stopped")
		var wg sync.WaitGroup
		for i := 0; i <= runtime.GOMAXPROCS(0); i++ {
			wg.Go(w.consumer)
		}
		wg.Go(w.provider)
		wg.Wait()
	}()

	return w
}

// provider - calls one of evictor workers when aggregate weight overcomes the soft limit.
func (w *EvictionWorker) provider() {
	var evictionCallsPerSec = w.cfg.CallsPerSec
	if w.cfg.CallsPerSec <= 0 {
		evictionCallsPerSec = 1
	}

	each := time.Second / time.Duration(evictionCallsPerSec)
	tick := time.NewTicker(each)
	defer tick.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-tick.C:
			if w.target.Len() > 0 && w.target.Weight() > 0 {
				w.counters.scans.Add(1)
				if w.target.SoftWeightLimitOvercome() {
					select {
					case <-w.ctx.Done():
						return
					case w.invokeCh <- struct{}{}:
						w.counters.scanHits.Add(1)
					}
				}
			}
		}
	}
}

// consumer - evicts entries from the store until within limit or backoff by spins.
func (w *EvictionWorker) consumer() {
	var evictionSpinsBackoff = w.cfg.BackoffSpinsPerCall
	if w.cfg.BackoffSpinsPerCall <= 0 {
		const defaultEvictionSpinsBackoff = 2048
		evictionSpinsBackoff = defaultEvictionSpinsBackoff
	}

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.invokeCh:
			if w.target.Len() > 0 && w.target.Weight() > 0 {
				freedWeight, items := w.target.SoftEvictUntilWithinLimit(evictionSpinsBackoff)
				if items > 0 || freedWeight > 0 {
					w.counters.evictedItems.Add(items)
					w.counters.evictedWeight.Add(freedWeight)
				}
			}
		}
	}
}
