package refresh

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitRender(t *testing.T, renders <-chan struct{}) {
	t.Helper()
	select {
	case <-renders:
	case <-time.After(5 * time.Second):
		t.Fatal("render not called")
	}
}

func assertNoRender(t *testing.T, renders <-chan struct{}) {
	t.Helper()
	select {
	case <-renders:
		t.Fatal("unexpected render")
	default:
	}
}

func TestLoopRendersOnSchedule(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	renders := make(chan struct{}, 8)
	loop := New(clock, 50*time.Millisecond, func() { renders <- struct{}{} })

	loop.Start(ctx)
	defer loop.Stop()
	waitRender(t, renders)
	assert.True(t, loop.Running())

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(49 * time.Millisecond)
	assertNoRender(t, renders)

	loop.SetInterval(200 * time.Millisecond)
	clock.Advance(time.Millisecond)
	waitRender(t, renders)

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(199 * time.Millisecond)
	assertNoRender(t, renders)
	clock.Advance(time.Millisecond)
	waitRender(t, renders)
}

func TestLoopStopCancelsPendingRefresh(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	var count atomic.Int32
	renders := make(chan struct{}, 8)
	loop := New(clock, 50*time.Millisecond, func() {
		count.Add(1)
		renders <- struct{}{}
	})

	loop.Start(ctx)
	waitRender(t, renders)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	loop.Stop()
	assert.False(t, loop.Running())
	clock.Advance(time.Second)
	assert.Equal(t, int32(1), count.Load())

	loop.Stop()
}

func TestLoopRestartKeepsSingleTimer(t *testing.T) {
	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	renders := make(chan struct{}, 8)
	loop := New(clock, 50*time.Millisecond, func() { renders <- struct{}{} })

	loop.Start(ctx)
	waitRender(t, renders)
	loop.Start(ctx)
	waitRender(t, renders)
	defer loop.Stop()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(50 * time.Millisecond)
	waitRender(t, renders)
	assertNoRender(t, renders)
}

func TestNewAppliesDefaults(t *testing.T) {
	loop := New(nil, 0, func() {})
	assert.Equal(t, DefaultInterval, loop.Interval())

	loop.SetInterval(-time.Second)
	assert.Equal(t, DefaultInterval, loop.Interval())
	assert.False(t, loop.Running())
}
