package platform

import (
	"time"

	"lapwatch/internal/core/presence"
)

type idleProvider struct{}

func newIdleProvider() IdleProvider {
	return &idleProvider{}
}

// IdleDuration is unsupported until an IOKit HIDIdleTime reader exists.
func (provider *idleProvider) IdleDuration() (time.Duration, error) {
	return 0, presence.ErrUnsupported
}
