package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"lapwatch/internal/core/model"
	"lapwatch/internal/core/presence"
	"lapwatch/internal/logfields"

	"github.com/go-co-op/gocron/v2"
)

// lockSource reports session lock transitions.
type lockSource interface {
	Probe(ctx context.Context) error
	Watch(ctx context.Context, onChange func(locked bool)) error
}

// PresenceDetector combines the session lock signal with polled idle time.
// A locked session outranks idleness, which outranks activity.
type PresenceDetector struct {
	mu            sync.Mutex
	config        model.PresenceConfig
	idle          IdleProvider
	lock          lockSource
	idleSupported bool
	lockSupported bool
	scheduler     gocron.Scheduler
	cancel        context.CancelFunc
	onChange      func(presence.UserState)
	current       presence.UserState
	locked        bool
	inactive      bool
}

// NewPresenceDetector returns a detector backed by this platform's sources.
func NewPresenceDetector(config model.PresenceConfig) *PresenceDetector {
	return newPresenceDetector(config, NewIdleProvider(), newLockSource())
}

func newPresenceDetector(config model.PresenceConfig, idle IdleProvider, lock lockSource) *PresenceDetector {
	return &PresenceDetector{
		config:  config.Normalized(),
		idle:    idle,
		lock:    lock,
		current: presence.UserActive,
	}
}

// UpdateConfig changes the idle threshold and poll interval. A running poll
// job picks up the threshold on its next run; the interval applies on restart.
func (detector *PresenceDetector) UpdateConfig(config model.PresenceConfig) {
	detector.mu.Lock()
	defer detector.mu.Unlock()
	detector.config = config.Normalized()
}

// RequestPermission probes both sources. It succeeds when either works.
func (detector *PresenceDetector) RequestPermission(ctx context.Context) error {
	lockErr := error(presence.ErrUnsupported)
	if detector.lock != nil {
		lockErr = detector.lock.Probe(ctx)
	}
	idleErr := error(presence.ErrUnsupported)
	if detector.idle != nil {
		_, idleErr = detector.idle.IdleDuration()
	}

	detector.mu.Lock()
	detector.lockSupported = lockErr == nil
	detector.idleSupported = idleErr == nil
	detector.mu.Unlock()

	if lockErr == nil || idleErr == nil {
		if lockErr != nil {
			slog.Debug("Session lock signal unavailable", logfields.Error(lockErr))
		}
		if idleErr != nil {
			slog.Debug("Idle time unavailable", logfields.Error(idleErr))
		}
		return nil
	}
	if errors.Is(lockErr, presence.ErrPermissionDenied) {
		return lockErr
	}
	if errors.Is(lockErr, presence.ErrUnsupported) && errors.Is(idleErr, presence.ErrUnsupported) {
		return presence.ErrUnsupported
	}
	return errors.Join(lockErr, idleErr)
}

// Start begins watching the sources found by RequestPermission.
func (detector *PresenceDetector) Start(ctx context.Context, onChange func(presence.UserState)) error {
	detector.mu.Lock()
	defer detector.mu.Unlock()

	if detector.cancel != nil {
		return nil
	}
	if !detector.lockSupported && !detector.idleSupported {
		return presence.ErrUnsupported
	}

	runCtx, cancel := context.WithCancel(ctx)
	detector.onChange = onChange
	detector.current = presence.UserActive
	detector.locked = false
	detector.inactive = false

	if detector.lockSupported {
		if err := detector.lock.Watch(runCtx, detector.handleLock); err != nil {
			cancel()
			return fmt.Errorf("watch lock signal: %w", err)
		}
	}

	if detector.idleSupported {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			cancel()
			return fmt.Errorf("create idle scheduler: %w", err)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(detector.config.CheckInterval),
			gocron.NewTask(detector.pollIdle),
			gocron.WithName("presence-idle-poll"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			cancel()
			_ = scheduler.Shutdown()
			return fmt.Errorf("schedule idle poll: %w", err)
		}
		scheduler.Start()
		detector.scheduler = scheduler
	}

	detector.cancel = cancel
	return nil
}

// Stop ends watching and polling.
func (detector *PresenceDetector) Stop() error {
	detector.mu.Lock()
	if detector.cancel == nil {
		detector.mu.Unlock()
		return nil
	}
	detector.cancel()
	detector.cancel = nil
	detector.onChange = nil
	scheduler := detector.scheduler
	detector.scheduler = nil
	detector.mu.Unlock()

	// A poll waiting on the mutex must be able to finish before Shutdown returns.
	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			return fmt.Errorf("stop idle scheduler: %w", err)
		}
	}
	return nil
}

func (detector *PresenceDetector) handleLock(locked bool) {
	detector.mu.Lock()
	detector.locked = locked
	notify, state := detector.reclassifyLocked()
	detector.mu.Unlock()

	if notify != nil {
		notify(state)
	}
}

func (detector *PresenceDetector) pollIdle() {
	idleFor, err := detector.idle.IdleDuration()
	if err != nil {
		slog.Debug("Idle poll failed", logfields.Error(err))
		return
	}

	detector.mu.Lock()
	detector.inactive = idleFor >= detector.config.IdleThreshold
	notify, state := detector.reclassifyLocked()
	detector.mu.Unlock()

	if notify != nil {
		notify(state)
	}
}

// reclassifyLocked returns the callback to invoke when the state changed.
func (detector *PresenceDetector) reclassifyLocked() (func(presence.UserState), presence.UserState) {
	state := presence.UserActive
	switch {
	case detector.locked:
		state = presence.UserLocked
	case detector.inactive:
		state = presence.UserIdle
	}
	if state == detector.current {
		return nil, state
	}
	detector.current = state
	return detector.onChange, state
}
