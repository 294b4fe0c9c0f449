package preferences

import (
	"fmt"
	"time"

	"lapwatch/internal/core/model"
	"lapwatch/internal/core/stopwatch"
)

// Refresh cadence bounds.
const (
	MinRefreshInterval = 16 * time.Millisecond
	MaxRefreshInterval = 5 * time.Second
)

// Settings defines editable user preferences.
type Settings struct {
	RefreshInterval time.Duration
	ShowMillis      bool
	PauseOnHide     bool
	IdleThreshold   time.Duration
	Autostart       bool
}

// DefaultSettings returns default settings for Lapwatch.
func DefaultSettings() Settings {
	presence := model.DefaultPresenceConfig()
	return Settings{
		RefreshInterval: 50 * time.Millisecond,
		ShowMillis:      true,
		PauseOnHide:     false,
		IdleThreshold:   presence.IdleThreshold,
		Autostart:       false,
	}
}

// PresenceConfig converts settings to the detector configuration.
func (settings Settings) PresenceConfig() model.PresenceConfig {
	return model.PresenceConfig{
		IdleThreshold: settings.IdleThreshold,
	}.Normalized()
}

// HidePolicy converts settings to the stopwatch hide policy.
func (settings Settings) HidePolicy() stopwatch.HidePolicy {
	if settings.PauseOnHide {
		return stopwatch.HidePause
	}
	return stopwatch.HideKeepRunning
}

// ClampRefresh bounds an interval to the supported refresh cadence.
func ClampRefresh(interval time.Duration) time.Duration {
	if interval < MinRefreshInterval {
		return MinRefreshInterval
	}
	if interval > MaxRefreshInterval {
		return MaxRefreshInterval
	}
	return interval
}

// Describe summarises settings for log lines.
func (settings Settings) Describe() string {
	hide := "keep running when hidden"
	if settings.PauseOnHide {
		hide = "pause when hidden"
	}
	return fmt.Sprintf("refresh %s, %s", settings.RefreshInterval, hide)
}
