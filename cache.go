// Package openiddict implements an in-process, read-through cache for OAuth
// authorization records. Query results are memoized under per-shape cache
// keys; every entry carries the invalidation signals of the authorizations it
// contains, so removing one authorization expires every cached result that
// could include it, regardless of the query shape that produced the entry.
package openiddict

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/IgorHrabrov/openiddict-core/config"
	"github.com/IgorHrabrov/openiddict-core/internal/cache"
	"github.com/IgorHrabrov/openiddict-core/internal/evictor"
	"github.com/IgorHrabrov/openiddict-core/internal/janitor"
	"github.com/IgorHrabrov/openiddict-core/internal/shared/cachedtime"
	"github.com/IgorHrabrov/openiddict-core/internal/signal"
	"github.com/IgorHrabrov/openiddict-core/internal/telemetry"
)

// cached is the payload one cache entry materializes: either a single
// authorization (hit distinguishes a memoized "not found") or a collection.
type cached[T any] struct {
	one  T
	many []T
	hit  bool
}

// AuthorizationCache is the public facade. It performs no global locking:
// concurrency correctness comes from the per-key cache store and the
// per-identifier signal registry.
type AuthorizationCache[T any] struct {
	store   AuthorizationStore[T]
	db      *cache.Store[cached[T]]
	signals *signal.Registry
	evictor evictor.Evictor
	janitor janitor.Janitor
	logs    *telemetry.Logs
	cls     context.CancelFunc
}

// New constructs the cache and starts its background workers. The returned
// cache owns the signal registry and cache store for its lifetime; Close
// stops the workers and revokes every signal.
func New[T any](ctx context.Context, cfg *config.Cache, logger *slog.Logger, store AuthorizationStore[T]) (*AuthorizationCache[T], error) {
	if cfg == nil {
		return nil, errors.New("openiddict: config must not be nil")
	}
	if store == nil {
		return nil, errors.New("openiddict: authorization store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.AdjustConfig()

	ctx, cancel := context.WithCancel(ctx)
	cachedtime.RunIfEnabled(ctx, cfg)

	db := cache.New[cached[T]](ctx, cfg, logger)
	signals := signal.NewRegistry()
	eviction := evictor.New(ctx, cfg.Eviction, logger, db)
	sweeper := janitor.New(ctx, cfg.Registry, logger, signals)
	logs := telemetry.New(ctx, cfg, logger, db, eviction, sweeper, signals)

	return &AuthorizationCache[T]{
		store:   store,
		db:      db,
		signals: signals,
		evictor: eviction,
		janitor: sweeper,
		logs:    logs,
		cls:     cancel,
	}, nil
}

// Close stops the background workers and revokes every registered signal, so
// any entry still held by a stale reference reads as absent.
func (c *AuthorizationCache[T]) Close() error {
	c.cls()
	c.signals.Reset()
	return nil
}

// Clear evicts every cache entry. Signals stay registered and unrevoked, so
// repopulated entries keep sharing the same instances.
func (c *AuthorizationCache[T]) Clear() {
	c.db.Clear()
}

// ForceEvict synchronously asks the background evictor for one eviction pass.
func (c *AuthorizationCache[T]) ForceEvict(timeout time.Duration) error {
	return c.evictor.ForceCall(timeout)
}

// Len returns the number of cache entries.
func (c *AuthorizationCache[T]) Len() int64 { return c.db.Len() }

// Weight returns the aggregate entry weight in units.
func (c *AuthorizationCache[T]) Weight() int64 { return c.db.Weight() }

// Signals returns the number of registered invalidation signals.
func (c *AuthorizationCache[T]) Signals() int64 { return c.signals.Len() }

// Metrics returns cumulative cache counters.
func (c *AuthorizationCache[T]) Metrics() (hits, misses, revocations, hardEvictedItems, hardEvictedWeight int64) {
	return c.db.Metrics()
}

// MustRegister registers the cache's prometheus collector with the registry.
func (c *AuthorizationCache[T]) MustRegister(registry *prometheus.Registry) {
	c.logs.Prometheus().MustRegister(registry)
}
