package cache

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/IgorHrabrov/openiddict-core/config"
	"github.com/IgorHrabrov/openiddict-core/internal/cache/db/model"
	"github.com/IgorHrabrov/openiddict-core/internal/signal"
)

func testCfg(size int64) *config.Cache {
	cfg := &config.Cache{
		DB: config.DBCfg{Size: size},
		Eviction: &config.EvictionCfg{
			LRUMode:              config.LRUModeListing,
			SoftLimitCoefficient: 0.9,
			CallsPerSec:          1,
			BackoffSpinsPerCall:  64,
		},
	}
	cfg.AdjustConfig()
	return cfg
}

func newStore(t *testing.T, size int64) *Store[string] {
	t.Helper()
	return New[string](t.Context(), testCfg(size), slog.Default())
}

func TestStoreCommitMakesEntryVisible(t *testing.T) {
	store := newStore(t, 100)
	k := model.NewKey([]byte("auth-1"))

	_, ok := store.TryGet(k)
	require.False(t, ok)

	b := store.CreateEntry(k)
	defer b.Release()
	b.SetValue("payload")
	b.Commit()

	v, ok := store.TryGet(k)
	require.True(t, ok)
	require.Equal(t, "payload", v)
	require.Equal(t, int64(1), store.Len())

	hits, misses, _, _, _ := store.Metrics()
	require.Equal(t, int64(1), hits)
	require.Equal(t, int64(1), misses)
}

func TestStoreAbandonedBuilderLeavesNoTrace(t *testing.T) {
	store := newStore(t, 100)
	k := model.NewKey([]byte("auth-1"))

	registry := signal.NewRegistry()
	sig, err := registry.GetOrCreate("auth-1")
	require.NoError(t, err)

	b := store.CreateEntry(k)
	b.AddSignal(sig)
	b.SetValue("payload")
	b.Release()

	// Commit after Release is a no-op.
	b.Commit()

	_, ok := store.TryGet(k)
	require.False(t, ok)
	require.Zero(t, store.Len())
	require.Zero(t, sig.Refs())
}

func TestStoreRevokedEntryExpiresOnLookup(t *testing.T) {
	store := newStore(t, 100)
	k := model.NewKey([]byte("auth-1"))

	registry := signal.NewRegistry()
	sig, err := registry.GetOrCreate("auth-1")
	require.NoError(t, err)

	b := store.CreateEntry(k)
	defer b.Release()
	b.AddSignal(sig)
	b.SetValue("payload")
	b.Commit()
	require.Equal(t, int64(1), sig.Refs())

	_, ok := store.TryGet(k)
	require.True(t, ok)

	sig.Revoke()

	// The revoked entry reads as absent and is removed on the spot.
	_, ok = store.TryGet(k)
	require.False(t, ok)
	require.Zero(t, store.Len())
	require.Zero(t, sig.Refs())

	_, _, revocations, _, _ := store.Metrics()
	require.Equal(t, int64(1), revocations)
}

func TestStoreWeightIsClampedToOne(t *testing.T) {
	store := newStore(t, 100)
	k := model.NewKey([]byte("empty-collection"))

	b := store.CreateEntry(k)
	defer b.Release()
	b.SetWeight(0)
	b.Commit()

	require.Equal(t, int64(1), store.Weight())
}

func TestStoreRemoveReleasesWithoutRevoking(t *testing.T) {
	store := newStore(t, 100)
	k := model.NewKey([]byte("auth-1"))

	registry := signal.NewRegistry()
	sig, err := registry.GetOrCreate("auth-1")
	require.NoError(t, err)

	b := store.CreateEntry(k)
	defer b.Release()
	b.AddSignal(sig)
	b.SetValue("payload")
	b.Commit()

	require.True(t, store.Remove(k))
	require.False(t, store.Remove(k))

	require.Zero(t, sig.Refs())
	require.False(t, sig.Revoked())
	_, ok := store.TryGet(k)
	require.False(t, ok)
}

func TestStoreCollisionGuardRejectsForeignKey(t *testing.T) {
	store := newStore(t, 100)

	// Same 64-bit slot, different 128-bit digest.
	k1 := model.KeyForTests(7, 1, 1)
	k2 := model.KeyForTests(7, 2, 2)

	b := store.CreateEntry(k1)
	defer b.Release()
	b.SetValue("payload")
	b.Commit()

	_, ok := store.TryGet(k2)
	require.False(t, ok)

	v, ok := store.TryGet(k1)
	require.True(t, ok)
	require.Equal(t, "payload", v)
}

func TestStoreHardLimitBoundsCommits(t *testing.T) {
	store := newStore(t, 4)

	for i := 0; i < 32; i++ {
		b := store.CreateEntry(model.NewKey([]byte(fmt.Sprintf("auth-%d", i))))
		b.SetValue(fmt.Sprintf("payload-%d", i))
		b.Commit()
		b.Release()
	}

	require.LessOrEqual(t, store.Weight(), int64(4))
	require.LessOrEqual(t, store.Len(), int64(4))

	_, _, _, hardItems, hardWeight := store.Metrics()
	require.Positive(t, hardItems)
	require.Positive(t, hardWeight)
}

func TestStoreClearReleasesEverything(t *testing.T) {
	store := newStore(t, 100)

	registry := signal.NewRegistry()
	sig, err := registry.GetOrCreate("auth-1")
	require.NoError(t, err)

	b := store.CreateEntry(model.NewKey([]byte("auth-1")))
	defer b.Release()
	b.AddSignal(sig)
	b.SetValue("payload")
	b.Commit()

	store.Clear()
	require.Zero(t, store.Len())
	require.Zero(t, store.Weight())
	require.Zero(t, sig.Refs())
	require.False(t, sig.Revoked())
}

func TestStoreSoftEviction(t *testing.T) {
	// Soft limit is 9 (0.9 * 10); fill past it and drive one eviction pass.
	store := newStore(t, 1000)
	store.cfg.Eviction.SoftWeightLimit = 9

	for i := 0; i < 20; i++ {
		b := store.CreateEntry(model.NewKey([]byte(fmt.Sprintf("auth-%d", i))))
		b.SetValue(fmt.Sprintf("payload-%d", i))
		b.Commit()
		b.Release()
	}
	require.True(t, store.SoftWeightLimitOvercome())

	freed, evicted := store.SoftEvictUntilWithinLimit(10_000)
	require.Positive(t, freed)
	require.Positive(t, evicted)
	require.LessOrEqual(t, store.Weight(), int64(9))
	require.False(t, store.SoftWeightLimitOvercome())
}
