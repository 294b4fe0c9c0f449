package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the refresh cadence when millisecond digits are shown.
const DefaultInterval = 50 * time.Millisecond

// CoarseInterval is enough when only whole seconds are displayed.
const CoarseInterval = 500 * time.Millisecond

// Loop calls render once immediately and then again every interval.
// Exactly one timer is pending while the loop runs; each render schedules the next.
type Loop struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	interval time.Duration
	render   func()
	cancel   context.CancelFunc
	done     chan struct{}
}

// New creates a stopped loop. A nil clock uses the real clock.
func New(clock clockwork.Clock, interval time.Duration, render func()) *Loop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		clock:    clock,
		interval: interval,
		render:   render,
	}
}

// Start begins rendering. Starting a running loop restarts it.
func (loop *Loop) Start(ctx context.Context) {
	loop.Stop()

	loop.mu.Lock()
	defer loop.mu.Unlock()
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	loop.cancel = cancel
	loop.done = done

	go loop.run(runCtx, done)
}

// Stop cancels the pending refresh and waits for an in-flight render to return.
func (loop *Loop) Stop() {
	loop.mu.Lock()
	cancel := loop.cancel
	done := loop.done
	loop.cancel = nil
	loop.done = nil
	loop.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a refresh is scheduled.
func (loop *Loop) Running() bool {
	loop.mu.Lock()
	defer loop.mu.Unlock()
	return loop.cancel != nil
}

// SetInterval changes the cadence starting with the next scheduled refresh.
func (loop *Loop) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	loop.mu.Lock()
	defer loop.mu.Unlock()
	loop.interval = interval
}

// Interval returns the current cadence.
func (loop *Loop) Interval() time.Duration {
	loop.mu.Lock()
	defer loop.mu.Unlock()
	return loop.interval
}

func (loop *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	loop.render()
	for {
		timer := loop.clock.NewTimer(loop.Interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}
		if ctx.Err() != nil {
			return
		}
		loop.render()
	}
}
