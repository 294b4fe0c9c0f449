package presence

import (
	"context"
	"errors"
)

var (
	// ErrUnsupported indicates presence detection is not available on this system.
	ErrUnsupported = errors.New("presence detection unsupported")
	// ErrPermissionDenied indicates the system refused access to presence signals.
	ErrPermissionDenied = errors.New("presence detection not permitted")
)

// UserState classifies user activity.
type UserState string

const (
	UserActive UserState = "active"
	UserIdle   UserState = "idle"
	UserLocked UserState = "locked"
)

// Detector reports user activity changes.
type Detector interface {
	// RequestPermission checks that the detector can run. It returns
	// ErrUnsupported or ErrPermissionDenied when it cannot.
	RequestPermission(ctx context.Context) error
	// Start begins delivering state changes to onChange until ctx is done or
	// Stop is called. onChange is invoked only when the state changes.
	Start(ctx context.Context, onChange func(UserState)) error
	Stop() error
}

// NopDetector is the detector used when the host offers no presence signal.
type NopDetector struct{}

func (NopDetector) RequestPermission(context.Context) error {
	return ErrUnsupported
}

func (NopDetector) Start(context.Context, func(UserState)) error {
	return ErrUnsupported
}

func (NopDetector) Stop() error {
	return nil
}
