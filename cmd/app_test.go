package main

import (
	"testing"
	"time"

	"lapwatch/internal/core/presence"
	"lapwatch/internal/core/stopwatch"
	"lapwatch/internal/storage"
	"lapwatch/internal/ui/display"
	"lapwatch/internal/ui/tray"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTrayApp struct{}

func (stubTrayApp) SetSystemTrayMenu(*fyne.Menu) {}
func (stubTrayApp) SetSystemTrayIcon(fyne.Resource) {}

func TestHandleEventKeepsLockPauseMessageInTray(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000))
	watch := stopwatch.New(storage.NewMemoryStore(), stopwatch.Options{Clock: clock})
	t.Cleanup(watch.Close)

	a := &application{appConfig: appConfig{watch: watch}}
	a.display = display.New(test.NewTempApp(t), watch, display.Callbacks{})
	a.tray = tray.New(stubTrayApp{}, tray.Icons{}, tray.Callbacks{})

	events := watch.Subscribe(8)
	watch.SetPauseOnLock(true)
	watch.Start()
	clock.Advance(5 * time.Second)
	a.render()
	require.Equal(t, "Running · 00:00:05", a.tray.StatusLabel())

	watch.HandleUserState(presence.UserLocked)
	var lockPause stopwatch.Event
	for event := range events {
		if event.Type == stopwatch.EventLockPause {
			lockPause = event
			break
		}
	}

	a.handleEvent(lockPause)
	assert.Equal(t, stopwatch.MessageLockPause, a.tray.StatusLabel())

	a.render()
	assert.Equal(t, stopwatch.MessageLockPause, a.tray.StatusLabel())
}
