package evictor

import (
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IgorHrabrov/openiddict-core/config"
)

// fakeTarget reports being permanently over the soft limit and counts how
// often the worker asks it to evict.
type fakeTarget struct {
	len, weight int64
	overLimit   bool
	evictCalls  atomic.Int64
}

func (f *fakeTarget) Len() int64                   { return f.len }
func (f *fakeTarget) Weight() int64                { return f.weight }
func (f *fakeTarget) SoftWeightLimitOvercome() bool { return f.overLimit }

func (f *fakeTarget) SoftEvictUntilWithinLimit(int64) (freedWeight, evictedItems int64) {
	f.evictCalls.Add(1)
	return 1, 1
}

func evictionCfg() *config.EvictionCfg {
	return &config.EvictionCfg{
		LRUMode:              config.LRUModeListing,
		SoftLimitCoefficient: 0.8,
		CallsPerSec:          50,
		BackoffSpinsPerCall:  64,
	}
}

func TestNewReturnsNoOpWhenDisabled(t *testing.T) {
	ev := New(t.Context(), nil, slog.Default(), &fakeTarget{})
	require.IsType(t, &NoOpEvictor{}, ev)

	require.NoError(t, ev.ForceCall(time.Millisecond))
	scans, hits, items, weight := ev.Metrics()
	require.Zero(t, scans)
	require.Zero(t, hits)
	require.Zero(t, items)
	require.Zero(t, weight)
	require.NoError(t, ev.Close())
}

func TestForceCallDrivesEviction(t *testing.T) {
	target := &fakeTarget{len: 10, weight: 10}
	ev := New(t.Context(), evictionCfg(), slog.Default(), target)
	t.Cleanup(func() { _ = ev.Close() })

	require.NoError(t, ev.ForceCall(time.Second))

	require.Eventually(t, func() bool {
		return target.evictCalls.Load() >= 1
	}, time.Second, time.Millisecond*10)
}

func TestProviderEvictsWhenOverSoftLimit(t *testing.T) {
	target := &fakeTarget{len: 10, weight: 10, overLimit: true}
	ev := New(t.Context(), evictionCfg(), slog.Default(), target)
	t.Cleanup(func() { _ = ev.Close() })

	require.Eventually(t, func() bool {
		scans, hits, items, weight := ev.Metrics()
		return scans >= 1 && hits >= 1 && items >= 1 && weight >= 1
	}, time.Second*5, time.Millisecond*10)
}

func TestProviderIdlesWhenWithinSoftLimit(t *testing.T) {
	target := &fakeTarget{len: 10, weight: 10, overLimit: false}
	ev := New(t.Context(), evictionCfg(), slog.Default(), target)
	t.Cleanup(func() { _ = ev.Close() })

	time.Sleep(time.Millisecond * 200)
	require.Zero(t, target.evictCalls.Load())
}

func TestForceCallTimesOutAfterClose(t *testing.T) {
	target := &fakeTarget{len: 10, weight: 10}
	ev := New(t.Context(), evictionCfg(), slog.Default(), target)
	require.NoError(t, ev.Close())

	// A closed worker either reports its cancelled context or times out;
	// it must not block forever.
	require.NoError(t, ev.ForceCall(time.Millisecond*50))
}
