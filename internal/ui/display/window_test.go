package display

import (
	"testing"
	"time"

	"lapwatch/internal/core/presence"
	"lapwatch/internal/core/stopwatch"
	"lapwatch/internal/storage"

	"fyne.io/fyne/v2/test"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWindow(t *testing.T, callbacks Callbacks) (*Window, *stopwatch.Stopwatch, *clockwork.FakeClock) {
	t.Helper()
	app := test.NewTempApp(t)
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000))
	watch := stopwatch.New(storage.NewMemoryStore(), stopwatch.Options{Clock: clock})
	t.Cleanup(watch.Close)
	return New(app, watch, callbacks), watch, clock
}

func TestWindowButtonsFollowState(t *testing.T) {
	display, _, clock := newTestWindow(t, Callbacks{})

	assert.Equal(t, "00:00:00.000", display.timeLabel.Text)
	assert.Equal(t, "Paused", display.statusLabel.Text)
	assert.False(t, display.startButton.Disabled())
	assert.True(t, display.pauseButton.Disabled())
	assert.True(t, display.lapButton.Disabled())
	assert.True(t, display.resetButton.Disabled())

	test.Tap(display.startButton)
	assert.Equal(t, "Running", display.statusLabel.Text)
	assert.True(t, display.startButton.Disabled())
	assert.False(t, display.lapButton.Disabled())

	clock.Advance(1500 * time.Millisecond)
	test.Tap(display.pauseButton)
	assert.Equal(t, "00:00:01.500", display.timeLabel.Text)
	assert.False(t, display.resetButton.Disabled())

	test.Tap(display.resetButton)
	assert.Equal(t, "00:00:00.000", display.timeLabel.Text)
	assert.True(t, display.resetButton.Disabled())
}

func TestWindowListsLaps(t *testing.T) {
	display, watch, clock := newTestWindow(t, Callbacks{})

	watch.Start()
	clock.Advance(time.Second)
	test.Tap(display.lapButton)
	clock.Advance(2 * time.Second)
	test.Tap(display.lapButton)

	require.Equal(t, []time.Duration{time.Second, 3 * time.Second}, display.laps)
	assert.Equal(t, 2, display.lapList.Length())

	watch.Reset()
	display.Render()
	assert.Empty(t, display.laps)
}

func TestWindowRendersWithoutMillis(t *testing.T) {
	display, watch, clock := newTestWindow(t, Callbacks{})

	watch.Start()
	clock.Advance(3661001 * time.Millisecond)
	display.SetShowMillis(false)
	assert.Equal(t, "01:01:01", display.timeLabel.Text)
}

func TestWindowStatusMessageUntilNextAction(t *testing.T) {
	display, watch, _ := newTestWindow(t, Callbacks{})

	watch.SetPauseOnLock(true)
	watch.Start()
	watch.HandleUserState(presence.UserLocked)
	display.SetStatus(stopwatch.MessageLockPause)
	display.Render()
	assert.Equal(t, stopwatch.MessageLockPause, display.statusLabel.Text)

	test.Tap(display.startButton)
	assert.Equal(t, "Running", display.statusLabel.Text)
}

func TestWindowPauseOnLockCallback(t *testing.T) {
	var toggles []bool
	display, _, _ := newTestWindow(t, Callbacks{
		OnPauseOnLock: func(enabled bool) { toggles = append(toggles, enabled) },
	})

	display.SetPauseOnLock(true)
	assert.Empty(t, toggles)

	test.Tap(display.lockCheck)
	assert.Equal(t, []bool{false}, toggles)
}

func TestWindowVisibilityCallbacks(t *testing.T) {
	var events []string
	display, _, _ := newTestWindow(t, Callbacks{
		OnShown:  func() { events = append(events, "shown") },
		OnHidden: func() { events = append(events, "hidden") },
	})

	display.Show()
	display.Hide()
	assert.Equal(t, []string{"shown", "hidden"}, events)
}
