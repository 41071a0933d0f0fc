package telemetry

import (
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/IgorHrabrov/openiddict-core/config"
	"github.com/IgorHrabrov/openiddict-core/internal/evictor"
	"github.com/IgorHrabrov/openiddict-core/internal/janitor"
)

type fakeCacher struct {
	hits, misses, revocations int64
	hardItems, hardWeight     int64
	entries, weight           int64
}

func (f *fakeCacher) Len() int64    { return f.entries }
func (f *fakeCacher) Weight() int64 { return f.weight }

func (f *fakeCacher) Metrics() (hits, misses, revocations, hardEvictedItems, hardEvictedWeight int64) {
	return f.hits, f.misses, f.revocations, f.hardItems, f.hardWeight
}

type fakeRegistryStat struct{ size int64 }

func (f *fakeRegistryStat) Len() int64 { return f.size }

func telemetryCfg() *config.Cache {
	cfg := &config.Cache{DB: config.DBCfg{Size: 1000}}
	cfg.AdjustConfig()
	return cfg
}

func TestPrometheusCollectorReadsLiveCounters(t *testing.T) {
	cache := &fakeCacher{hits: 7, misses: 3, revocations: 2, hardItems: 1, hardWeight: 4, entries: 5, weight: 9}
	logs := New(t.Context(), telemetryCfg(), slog.Default(), cache, evictor.NoOpEvictor{}, janitor.NoOpJanitor{}, &fakeRegistryStat{size: 6})
	t.Cleanup(func() { _ = logs.Close() })

	registry := prometheus.NewRegistry()
	logs.Prometheus().MustRegister(registry)

	families, err := registry.Gather()
	require.NoError(t, err)

	byName := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			name := f.GetName()
			if len(m.GetLabel()) > 0 {
				name += "{" + m.GetLabel()[0].GetValue() + "}"
			}
			switch {
			case m.GetCounter() != nil:
				byName[name] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				byName[name] = m.GetGauge().GetValue()
			}
		}
	}

	require.Equal(t, float64(7), byName["openiddict_authorization_cache_hits_total"])
	require.Equal(t, float64(3), byName["openiddict_authorization_cache_misses_total"])
	require.Equal(t, float64(2), byName["openiddict_authorization_cache_revocations_total"])
	require.Equal(t, float64(1), byName["openiddict_authorization_cache_evictions_total{hard}"])
	require.Equal(t, float64(0), byName["openiddict_authorization_cache_evictions_total{soft}"])
	require.Equal(t, float64(5), byName["openiddict_authorization_cache_entries"])
	require.Equal(t, float64(9), byName["openiddict_authorization_cache_weight"])
	require.Equal(t, float64(6), byName["openiddict_authorization_cache_signals"])

	// Counters move on the next scrape without any push step.
	cache.hits = 11
	families, err = registry.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "openiddict_authorization_cache_hits_total" {
			require.Equal(t, float64(11), f.GetMetric()[0].GetCounter().GetValue())
		}
	}
}

func TestLogsInterval(t *testing.T) {
	cfg := telemetryCfg()
	cfg.DB.TelemetryLogsInterval = time.Second * 7

	logs := New(t.Context(), cfg, slog.Default(), &fakeCacher{}, evictor.NoOpEvictor{}, janitor.NoOpJanitor{}, &fakeRegistryStat{})
	t.Cleanup(func() { _ = logs.Close() })

	require.Equal(t, time.Second*7, logs.Interval())
}
