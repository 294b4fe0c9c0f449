package display

import (
	"time"

	"lapwatch/internal/core/stopwatch"
)

// Controls says which actions are currently available.
type Controls struct {
	Start bool
	Pause bool
	Lap   bool
	Reset bool
}

// ControlsFor derives button availability from the stopwatch mode and elapsed time.
// Reset is only unavailable when there is nothing to clear.
func ControlsFor(state stopwatch.State, elapsed time.Duration) Controls {
	running := state == stopwatch.StateRunning
	return Controls{
		Start: !running,
		Pause: running,
		Lap:   running,
		Reset: running || elapsed != 0,
	}
}

// StatusText is the label shown when no transient message is pending.
func StatusText(state stopwatch.State) string {
	if state == stopwatch.StateRunning {
		return "Running"
	}
	return "Paused"
}
