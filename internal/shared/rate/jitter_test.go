package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewJitterCreatesLimiter(t *testing.T) {
	jitter := NewJitter(t.Context(), 10)
	require.NotNil(t, jitter)
	require.NotNil(t, jitter.Chan())
}

func TestJitterChanReceivesSignals(t *testing.T) {
	jitter := NewJitter(t.Context(), 10)

	select {
	case <-jitter.Chan():
	case <-time.After(time.Second):
		t.Fatal("jitter should emit signals")
	}
}

func TestJitterTakeBlocksUntilSignal(t *testing.T) {
	jitter := NewJitter(t.Context(), 10)

	done := make(chan struct{})
	go func() {
		jitter.Take()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Take should not block forever")
	}
}

func TestJitterStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	jitter := NewJitter(ctx, 100)

	time.Sleep(time.Millisecond * 10)
	cancel()

	// The provider exits and closes the channel; drain buffered signals.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-jitter.Chan():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel should be closed after context cancel")
		}
	}
}

func TestJitterClampsLowLimits(t *testing.T) {
	jitter := NewJitter(t.Context(), 0)

	select {
	case <-jitter.Chan():
	case <-time.After(time.Second * 2):
		t.Fatal("jitter should work even with a zero limit")
	}
}
