package stopwatch

import (
	"fmt"
	"time"
)

// Format renders d as HH:MM:SS.mmm, or HH:MM:SS when millis is false.
// Negative durations get a leading minus sign. Hours widen past two digits
// instead of wrapping.
func Format(d time.Duration, millis bool) string {
	sign := ""
	ms := d.Milliseconds()
	if ms < 0 {
		sign = "-"
		ms = -ms
	}

	hours := ms / 3_600_000
	ms %= 3_600_000
	minutes := ms / 60_000
	ms %= 60_000
	seconds := ms / 1_000
	ms %= 1_000

	if !millis {
		return fmt.Sprintf("%s%02d:%02d:%02d", sign, hours, minutes, seconds)
	}
	return fmt.Sprintf("%s%02d:%02d:%02d.%03d", sign, hours, minutes, seconds, ms)
}
