package platform

import "time"

// IdleProvider returns the duration since last user input.
// Implementations return presence.ErrUnsupported when the host cannot tell.
type IdleProvider interface {
	IdleDuration() (time.Duration, error)
}

// NewIdleProvider returns a platform-specific idle provider.
func NewIdleProvider() IdleProvider {
	return newIdleProvider()
}
