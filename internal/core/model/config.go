package model

import "time"

// PresenceConfig contains runtime settings for idle and lock detection.
type PresenceConfig struct {
	IdleThreshold time.Duration
	CheckInterval time.Duration
}

// DefaultPresenceConfig returns the detector defaults: one minute of
// inactivity counts as idle, polled every five seconds.
func DefaultPresenceConfig() PresenceConfig {
	return PresenceConfig{
		IdleThreshold: time.Minute,
		CheckInterval: 5 * time.Second,
	}
}

// Normalized fills zero values with defaults.
func (config PresenceConfig) Normalized() PresenceConfig {
	defaults := DefaultPresenceConfig()
	if config.IdleThreshold <= 0 {
		config.IdleThreshold = defaults.IdleThreshold
	}
	if config.CheckInterval <= 0 {
		config.CheckInterval = defaults.CheckInterval
	}
	return config
}
