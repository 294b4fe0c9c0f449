package presence

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Status messages shown to the user.
const (
	StatusEnabled     = "Pause-on-lock enabled."
	StatusDisabled    = "Pause-on-lock disabled."
	StatusUnsupported = "Pause-on-lock unsupported on this system."
	StatusFailed      = "Pause-on-lock failed or not permitted."
)

// Guard switches a detector on and off and routes its signals to a handler.
type Guard struct {
	mu       sync.Mutex
	detector Detector
	handler  func(UserState)
	cancel   context.CancelFunc
	active   bool
}

// NewGuard creates a guard. A nil detector is replaced by NopDetector.
func NewGuard(detector Detector, handler func(UserState)) *Guard {
	if detector == nil {
		detector = NopDetector{}
	}
	return &Guard{
		detector: detector,
		handler:  handler,
	}
}

// Enable requests permission and starts the detector. The returned status
// message is suitable for display; the error tells callers why it failed.
func (guard *Guard) Enable(ctx context.Context) (string, error) {
	guard.mu.Lock()
	defer guard.mu.Unlock()

	if guard.active {
		return StatusEnabled, nil
	}

	if err := guard.detector.RequestPermission(ctx); err != nil {
		return statusFor(err), fmt.Errorf("request presence permission: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := guard.detector.Start(runCtx, guard.dispatch); err != nil {
		cancel()
		return statusFor(err), fmt.Errorf("start presence detector: %w", err)
	}

	guard.cancel = cancel
	guard.active = true
	return StatusEnabled, nil
}

// Disable stops the detector if it is running.
func (guard *Guard) Disable() (string, error) {
	guard.mu.Lock()
	defer guard.mu.Unlock()

	if !guard.active {
		return StatusDisabled, nil
	}
	guard.active = false
	if guard.cancel != nil {
		guard.cancel()
		guard.cancel = nil
	}
	if err := guard.detector.Stop(); err != nil {
		return StatusDisabled, fmt.Errorf("stop presence detector: %w", err)
	}
	return StatusDisabled, nil
}

// Active reports whether the detector is running.
func (guard *Guard) Active() bool {
	guard.mu.Lock()
	defer guard.mu.Unlock()
	return guard.active
}

func (guard *Guard) dispatch(state UserState) {
	if guard.handler != nil {
		guard.handler(state)
	}
}

func statusFor(err error) string {
	if errors.Is(err, ErrUnsupported) {
		return StatusUnsupported
	}
	return StatusFailed
}
