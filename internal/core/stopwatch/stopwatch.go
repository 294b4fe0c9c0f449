package stopwatch

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"lapwatch/internal/core/model"
	"lapwatch/internal/core/presence"
	"lapwatch/internal/logfields"
	"lapwatch/internal/metrics"

	"github.com/jonboulle/clockwork"
)

// Store persists and restores the stopwatch record.
// Load returns model.ErrStateNotFound when nothing has been saved and an error
// wrapping model.ErrStateCorrupt when the saved record is unusable.
type Store interface {
	Load() (model.State, error)
	Save(state model.State) error
}

// Options contains runtime collaborators for Stopwatch.
type Options struct {
	Clock      clockwork.Clock
	Recorder   metrics.Recorder
	Logger     *slog.Logger
	HidePolicy HidePolicy
}

// Stopwatch is the elapsed-time state machine. Elapsed time is always derived
// from wall-clock timestamps, so a delayed or suspended display loop never
// causes drift. Every mutation is saved before it returns.
type Stopwatch struct {
	mu         sync.Mutex
	store      Store
	clock      clockwork.Clock
	recorder   metrics.Recorder
	logger     *slog.Logger
	hidePolicy HidePolicy
	state      model.State
	events     []chan Event
	closed     bool
}

// New creates a Stopwatch and restores its state from store. A missing or
// corrupt record yields the default state.
func New(store Store, options Options) *Stopwatch {
	if options.Clock == nil {
		options.Clock = clockwork.NewRealClock()
	}
	if options.Recorder == nil {
		options.Recorder = metrics.NoopRecorder{}
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if options.HidePolicy == "" {
		options.HidePolicy = HideKeepRunning
	}

	watch := &Stopwatch{
		store:      store,
		clock:      options.Clock,
		recorder:   options.Recorder,
		logger:     options.Logger,
		hidePolicy: options.HidePolicy,
		state:      model.DefaultState(),
	}
	watch.restore()
	return watch
}

// Subscribe registers a new observer channel. Slow observers miss events
// rather than block the stopwatch.
func (watch *Stopwatch) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	watch.mu.Lock()
	if watch.closed {
		close(ch)
	} else {
		watch.events = append(watch.events, ch)
	}
	watch.mu.Unlock()
	return ch
}

// Close saves the current state and closes observers.
func (watch *Stopwatch) Close() {
	watch.mu.Lock()
	if watch.closed {
		watch.mu.Unlock()
		return
	}
	watch.persistLocked(metrics.OpFlush)
	watch.closed = true
	events := watch.events
	watch.events = nil
	watch.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Start opens a timing interval. It is a no-op while running.
func (watch *Stopwatch) Start() {
	watch.mu.Lock()
	defer watch.mu.Unlock()

	if watch.state.Running {
		return
	}
	now := watch.clock.Now()
	watch.state.Running = true
	watch.state.StartEpochMs = now.UnixMilli()
	watch.recorder.IncOperation(metrics.OpStart)
	watch.persistLocked(metrics.OpStart)

	watch.emitLocked(Event{
		Type:    EventStateChange,
		State:   StateRunning,
		Elapsed: watch.elapsedLocked(now),
		At:      now,
	})
}

// Pause closes the current interval. It is a no-op while paused.
func (watch *Stopwatch) Pause() {
	watch.mu.Lock()
	defer watch.mu.Unlock()

	if !watch.state.Running {
		return
	}
	now := watch.clock.Now()
	watch.pauseLocked(now)
	watch.recorder.IncOperation(metrics.OpPause)
	watch.persistLocked(metrics.OpPause)

	watch.emitLocked(Event{
		Type:    EventStateChange,
		State:   StatePaused,
		Elapsed: watch.elapsedLocked(now),
		At:      now,
	})
}

// Lap records the current elapsed time. It is accepted in any state and
// never changes the running status or the accumulated duration.
func (watch *Stopwatch) Lap() {
	watch.mu.Lock()
	defer watch.mu.Unlock()

	now := watch.clock.Now()
	elapsed := watch.elapsedLocked(now)
	lapMs := elapsed.Milliseconds()
	if lapMs < 0 {
		lapMs = 0
	}
	watch.state.LapsMs = append(watch.state.LapsMs, lapMs)
	watch.logger.Debug("Lap recorded", logfields.Lap(len(watch.state.LapsMs)), logfields.Elapsed(elapsed))
	watch.recorder.IncOperation(metrics.OpLap)
	watch.recorder.SetLaps(len(watch.state.LapsMs))
	watch.persistLocked(metrics.OpLap)

	watch.emitLocked(Event{
		Type:    EventLap,
		State:   watch.stateLocked(),
		Elapsed: elapsed,
		Lap:     len(watch.state.LapsMs),
		At:      now,
	})
}

// Reset stops the stopwatch and clears elapsed time and laps. The
// pause-on-lock preference survives a reset.
func (watch *Stopwatch) Reset() {
	watch.mu.Lock()
	defer watch.mu.Unlock()

	pauseOnLock := watch.state.PauseOnLock
	watch.state = model.DefaultState()
	watch.state.PauseOnLock = pauseOnLock
	watch.recorder.IncOperation(metrics.OpReset)
	watch.recorder.SetLaps(0)
	watch.persistLocked(metrics.OpReset)

	watch.emitLocked(Event{
		Type:  EventReset,
		State: StatePaused,
		At:    watch.clock.Now(),
	})
}

// ElapsedNow returns the accumulated duration plus the open interval, if any.
func (watch *Stopwatch) ElapsedNow() time.Duration {
	watch.mu.Lock()
	defer watch.mu.Unlock()
	return watch.elapsedLocked(watch.clock.Now())
}

// State reports whether the stopwatch is running.
func (watch *Stopwatch) State() State {
	watch.mu.Lock()
	defer watch.mu.Unlock()
	return watch.stateLocked()
}

// Laps returns the recorded laps in insertion order.
func (watch *Stopwatch) Laps() []time.Duration {
	watch.mu.Lock()
	defer watch.mu.Unlock()

	laps := make([]time.Duration, len(watch.state.LapsMs))
	for index, lapMs := range watch.state.LapsMs {
		laps[index] = time.Duration(lapMs) * time.Millisecond
	}
	return laps
}

// Snapshot returns a copy of the persisted record.
func (watch *Stopwatch) Snapshot() model.State {
	watch.mu.Lock()
	defer watch.mu.Unlock()
	return watch.state.Clone()
}

// PauseOnLock reports the pause-on-lock preference.
func (watch *Stopwatch) PauseOnLock() bool {
	watch.mu.Lock()
	defer watch.mu.Unlock()
	return watch.state.PauseOnLock
}

// SetPauseOnLock stores the pause-on-lock preference.
func (watch *Stopwatch) SetPauseOnLock(enabled bool) {
	watch.mu.Lock()
	defer watch.mu.Unlock()

	watch.state.PauseOnLock = enabled
	watch.recorder.IncOperation(metrics.OpPreference)
	watch.persistLocked(metrics.OpPreference)

	watch.emitLocked(Event{
		Type:  EventPreference,
		State: watch.stateLocked(),
		At:    watch.clock.Now(),
	})
}

// SetHidePolicy changes how HandleVisibility treats a hidden window.
func (watch *Stopwatch) SetHidePolicy(policy HidePolicy) {
	watch.mu.Lock()
	defer watch.mu.Unlock()
	if policy == "" {
		policy = HideKeepRunning
	}
	watch.hidePolicy = policy
}

// HandleUserState pauses a running stopwatch when the session locks and
// pause-on-lock is enabled. Other states are ignored.
func (watch *Stopwatch) HandleUserState(userState presence.UserState) {
	watch.mu.Lock()
	defer watch.mu.Unlock()

	watch.logger.Debug("User state changed", logfields.UserState(string(userState)))
	if userState != presence.UserLocked || !watch.state.PauseOnLock || !watch.state.Running {
		return
	}

	now := watch.clock.Now()
	watch.pauseLocked(now)
	watch.recorder.IncOperation(metrics.OpPause)
	watch.recorder.IncLockPause()
	watch.persistLocked(metrics.OpPause)
	watch.logger.Info("Paused on session lock", logfields.Elapsed(watch.elapsedLocked(now)))

	watch.emitLocked(Event{
		Type:    EventLockPause,
		State:   StatePaused,
		Elapsed: watch.elapsedLocked(now),
		Message: MessageLockPause,
		At:      now,
	})
}

// HandleVisibility reacts to the window being shown or hidden. The state is
// saved on every change; a hidden window also pauses under HidePause.
func (watch *Stopwatch) HandleVisibility(visible bool) {
	watch.mu.Lock()
	policy := watch.hidePolicy
	watch.mu.Unlock()

	if !visible && policy == HidePause {
		watch.Pause()
	}
	watch.Flush()
}

// Flush saves the current state without changing it.
func (watch *Stopwatch) Flush() {
	watch.mu.Lock()
	defer watch.mu.Unlock()
	watch.persistLocked(metrics.OpFlush)
}

func (watch *Stopwatch) restore() {
	state, err := watch.store.Load()
	if err == nil {
		err = state.Validate()
	}

	switch {
	case err == nil:
		watch.state = state.Clone()
		watch.recorder.IncRestore(metrics.RestoreLoaded)
		watch.recorder.SetLaps(len(watch.state.LapsMs))
		watch.logger.Debug("Restored stopwatch state",
			slog.Bool("running", watch.state.Running),
			slog.Int("laps", len(watch.state.LapsMs)))
	case errors.Is(err, model.ErrStateNotFound):
		watch.recorder.IncRestore(metrics.RestoreAbsent)
	case errors.Is(err, model.ErrStateCorrupt):
		watch.recorder.IncRestore(metrics.RestoreCorrupt)
		watch.logger.Warn("Discarding corrupt stopwatch state", logfields.Error(err))
	default:
		watch.recorder.IncRestore(metrics.RestoreFailed)
		watch.logger.Warn("Failed to load stopwatch state", logfields.Error(err))
	}
}

func (watch *Stopwatch) pauseLocked(now time.Time) {
	interval := now.UnixMilli() - watch.state.StartEpochMs
	if interval < 0 {
		interval = 0
	}
	watch.state.AccumulatedMs += interval
	watch.state.Running = false
	watch.state.StartEpochMs = 0
}

func (watch *Stopwatch) elapsedLocked(now time.Time) time.Duration {
	elapsedMs := watch.state.AccumulatedMs
	if watch.state.Running {
		elapsedMs += now.UnixMilli() - watch.state.StartEpochMs
	}
	return time.Duration(elapsedMs) * time.Millisecond
}

func (watch *Stopwatch) stateLocked() State {
	if watch.state.Running {
		return StateRunning
	}
	return StatePaused
}

// persistLocked saves the current state. Failures are logged and reported to
// observers but never returned: the in-memory state stays authoritative.
func (watch *Stopwatch) persistLocked(op string) {
	if err := watch.store.Save(watch.state.Clone()); err != nil {
		watch.recorder.IncPersistFailure(op)
		watch.logger.Warn("Failed to persist stopwatch state",
			logfields.Operation(op),
			logfields.Error(err))
		watch.emitLocked(Event{
			Type:    EventPersistError,
			State:   watch.stateLocked(),
			Message: err.Error(),
			At:      watch.clock.Now(),
		})
	}
}

func (watch *Stopwatch) emitLocked(event Event) {
	for _, ch := range watch.events {
		select {
		case ch <- event:
		default:
		}
	}
}
