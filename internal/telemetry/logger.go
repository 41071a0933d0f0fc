package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/IgorHrabrov/openiddict-core/config"
	"github.com/IgorHrabrov/openiddict-core/internal/evictor"
	"github.com/IgorHrabrov/openiddict-core/internal/janitor"
)

// Cacher is the store surface telemetry samples from.
type Cacher interface {
	Len() int64
	Weight() int64
	Metrics() (hits, misses, revocations, hardEvictedItems, hardEvictedWeight int64)
}

// RegistryStat exposes the signal registry size.
type RegistryStat interface {
	Len() int64
}

type Logger interface {
	Interval() time.Duration
	Prometheus() *Metrics
	Close() error
}

type Logs struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Cache
	logger   *slog.Logger
	cache    Cacher
	evictor  evictor.Evictor
	janitor  janitor.Janitor
	registry RegistryStat
	metrics  *Metrics
	interval time.Duration
}

func New(
	ctx context.Context,
	cfg *config.Cache,
	logger *slog.Logger,
	cache Cacher,
	evictor evictor.Evictor,
	janitor janitor.Janitor,
	registry RegistryStat,
) *Logs {
	ctx, cancel := context.WithCancel(ctx)
	return (&Logs{
		ctx:      ctx,
		cancel:   cancel,
		cfg:      cfg,
		logger:   logger,
		cache:    cache,
		evictor:  evictor,
		janitor:  janitor,
		registry: registry,
		metrics:  newMetrics(cache, evictor, janitor, registry),
		interval: cfg.DB.TelemetryLogsInterval,
	}).run()
}

func (l *Logs) Interval() time.Duration {
	return l.interval
}

// Prometheus returns the collector sampling the same counters the log loop
// reports. Registration is left to the embedding process.
func (l *Logs) Prometheus() *Metrics {
	return l.metrics
}

func (l *Logs) Close() error {
	l.cancel()
	return nil
}

func (l *Logs) run() *Logs {
	if l.cfg != nil && l.cfg.DB.IsTelemetryLogsEnabled {
		go l.loop()
	}
	return l
}

func (l *Logs) loop() {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	var softLimit int64 = -1
	if l.cfg.Eviction.Enabled() {
		softLimit = l.cfg.Eviction.SoftWeightLimit
	}
	hardLimit := l.cfg.DB.Size

	s := newSampler(l.cache, l.evictor, l.janitor)
	prev := s.snapshot()

	for {
		select {
		case <-l.ctx.Done():
			return

		case <-ticker.C:
			cur := s.snapshot()
			d := deltaSnapshot(prev, cur)
			prev = cur

			common := []any{"interval", l.interval.String()}

			l.logger.Info("cache",
				append(common,
					"hits", int64(d.hits),
					"misses", int64(d.misses),
					"revocations", int64(d.revocations),
				)...,
			)

			if l.cfg.Eviction.Enabled() {
				l.logger.Info("soft_evictor",
					append(common,
						"scans", int64(d.softScans),
						"hits", int64(d.softHits),
						"freed_items", int64(d.softEvictedItems),
						"freed_weight", int64(d.softEvictedWeight),
					)...,
				)
			}

			if d.hardEvictedItems > 0 || d.hardEvictedWeight > 0 {
				l.logger.Info("hard_evictor",
					append(common,
						"freed_items", int64(d.hardEvictedItems),
						"freed_weight", int64(d.hardEvictedWeight),
					)...,
				)
			}

			if l.cfg.Registry.Enabled() {
				l.logger.Info("janitor",
					append(common,
						"scans", int64(d.janitorScans),
						"reaped", int64(d.janitorReaped),
						"signals", l.registry.Len(),
					)...,
				)
			}

			l.logger.Info("storage",
				append(common,
					"weight", l.cache.Weight(),
					"entries", l.cache.Len(),
					"soft_limit", softLimit,
					"hard_limit", hardLimit,
				)...,
			)
		}
	}
}
