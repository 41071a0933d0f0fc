package signal

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetOrCreateIsSingleFlight(t *testing.T) {
	registry := NewRegistry()

	const goroutines = 50
	out := make(chan *Signal, goroutines)
	errs := make(chan error, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Go(func() {
			s, err := registry.GetOrCreate("auth-1")
			if err != nil {
				errs <- err
				return
			}
			out <- s
		})
	}
	wg.Wait()
	close(out)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	first := <-out
	require.NotNil(t, first)
	for s := range out {
		require.Same(t, first, s)
	}
	require.Equal(t, int64(1), registry.Len())
}

func TestGetOrCreateRejectsEmptyIdentifier(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.GetOrCreate("")
	require.ErrorIs(t, err, ErrEmptyIdentifier)
	require.Zero(t, registry.Len())
}

func TestCancelRevokesAndForgets(t *testing.T) {
	registry := NewRegistry()

	s, err := registry.GetOrCreate("auth-1")
	require.NoError(t, err)
	require.False(t, s.Revoked())

	registry.Cancel("auth-1")
	require.True(t, s.Revoked())
	require.Zero(t, registry.Len())

	select {
	case <-s.Done():
	default:
		t.Fatal("done channel must be closed after cancel")
	}

	// Idempotent for revoked and for unknown identifiers.
	registry.Cancel("auth-1")
	registry.Cancel("never-seen")

	// A later acquisition starts from a fresh, unrevoked signal.
	fresh, err := registry.GetOrCreate("auth-1")
	require.NoError(t, err)
	require.NotSame(t, s, fresh)
	require.False(t, fresh.Revoked())
}

func TestSweepSkipsReferencedAndRecentSignals(t *testing.T) {
	registry := NewRegistry()

	s, err := registry.GetOrCreate("auth-1")
	require.NoError(t, err)

	s.Ref()
	require.Zero(t, registry.Sweep(0))
	require.Equal(t, int64(1), registry.Len())

	s.Unref()
	require.Zero(t, registry.Sweep(time.Hour))
	require.Equal(t, int64(1), registry.Len())

	time.Sleep(time.Millisecond)
	require.Equal(t, int64(1), registry.Sweep(0))
	require.Zero(t, registry.Len())
}

func TestGetOrCreateRenewsAcquisitionStamp(t *testing.T) {
	registry := NewRegistry()

	s, err := registry.GetOrCreate("auth-1")
	require.NoError(t, err)
	first := s.AcquiredAt()

	time.Sleep(time.Millisecond)
	again, err := registry.GetOrCreate("auth-1")
	require.NoError(t, err)
	require.Same(t, s, again)
	require.Greater(t, s.AcquiredAt(), first)
}

func TestResetRevokesEverything(t *testing.T) {
	registry := NewRegistry()

	signals := make([]*Signal, 0, 10)
	for i := 0; i < 10; i++ {
		s, err := registry.GetOrCreate(fmt.Sprintf("auth-%d", i))
		require.NoError(t, err)
		signals = append(signals, s)
	}
	require.Equal(t, int64(10), registry.Len())

	registry.Reset()
	require.Zero(t, registry.Len())
	for _, s := range signals {
		require.True(t, s.Revoked())
	}
}
