// Package janitor sweeps the invalidation signal registry in the background.
// Passive eviction releases entry references but never removes registry
// mappings, so without the sweep the registry grows by one signal per entity
// identifier for the lifetime of the process.
package janitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/IgorHrabrov/openiddict-core/config"
	"github.com/IgorHrabrov/openiddict-core/internal/shared/rate"
)

// Registry is the signal registry surface the janitor drives.
type Registry interface {
	Len() int64
	Sweep(grace time.Duration) (reaped int64)
}

type Janitor interface {
	Metrics() (scans, reaped int64)
	Close() error
}

type SweepWorker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.RegistryCfg
	logger   *slog.Logger
	registry Registry
	jitter   *rate.Jitter
	counters *janitorCounters
}

func New(
	ctx context.Context,
	cfg *config.RegistryCfg,
	logger *slog.Logger,
	registry Registry,
) Janitor {
	if !cfg.Enabled() {
		return &NoOpJanitor{}
	}

	ctx, cancel := context.WithCancel(ctx)
	return (&SweepWorker{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		jitter:   rate.NewJitter(ctx, cfg.SweepsPerSec),
		counters: newJanitorCounters(),
	}).run()
}

func (w *SweepWorker) Metrics() (scans, reaped int64) {
	return w.counters.snapshot()
}

func (w *SweepWorker) Close() error {
	w.cancel()
	return nil
}

func (w *SweepWorker) run() *SweepWorker {
	w.logger.Info("janitor is running", "sweeps_per_sec", w.cfg.SweepsPerSec, "idle_grace", w.cfg.IdleGrace.String())

	go func() {
		defer w.logger.Info("janitor is stopped")
		var wg sync.WaitGroup
		wg.Go(w.provider)
		wg.Wait()
	}()

	return w
}

func (w *SweepWorker) provider() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.jitter.Chan():
			if w.registry.Len() > 0 {
				w.counters.scans.Add(1)
				if reaped := w.registry.Sweep(w.cfg.IdleGrace); reaped > 0 {
					w.counters.reaped.Add(reaped)
				}
			}
		}
	}
}
