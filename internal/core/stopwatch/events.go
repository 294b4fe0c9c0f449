package stopwatch

import "time"

// State represents the current Stopwatch mode.
type State string

const (
	StatePaused  State = "paused"
	StateRunning State = "running"
)

// HidePolicy decides what happens to a running stopwatch when its window is hidden.
type HidePolicy string

const (
	HideKeepRunning HidePolicy = "keep_running"
	HidePause       HidePolicy = "pause"
)

// EventType defines the type of Stopwatch event.
type EventType string

const (
	EventStateChange  EventType = "state_change"
	EventLap          EventType = "lap"
	EventReset        EventType = "reset"
	EventLockPause    EventType = "lock_pause"
	EventPreference   EventType = "preference"
	EventPersistError EventType = "persist_error"
)

// MessageLockPause is reported when the lock signal pauses the stopwatch.
const MessageLockPause = "Paused (device locked)"

// Event announces a Stopwatch mutation to observers.
type Event struct {
	Type    EventType
	State   State
	Elapsed time.Duration
	Lap     int
	Message string
	At      time.Time
}
