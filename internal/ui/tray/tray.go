package tray

import (
	"fmt"
	"time"

	"lapwatch/internal/core/stopwatch"

	"fyne.io/fyne/v2"
)

// TrayApp is the part of desktop.App the manager needs.
type TrayApp interface {
	SetSystemTrayMenu(menu *fyne.Menu)
	SetSystemTrayIcon(icon fyne.Resource)
}

// Icons are the tray images for each stopwatch mode.
type Icons struct {
	Running fyne.Resource
	Paused  fyne.Resource
}

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnToggle      func()
	OnLap         func()
	OnReset       func()
	OnPauseOnLock func(enabled bool)
	OnShow        func()
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app        TrayApp
	icons      Icons
	menu       *fyne.Menu
	statusItem *fyne.MenuItem
	toggleItem *fyne.MenuItem
	lapItem    *fyne.MenuItem
	resetItem  *fyne.MenuItem
	lockItem   *fyne.MenuItem
	callbacks  Callbacks
	state      stopwatch.State
	elapsed    time.Duration
	resettable bool
	message    string
	iconState  stopwatch.State
}

// New creates a tray manager with the provided callbacks.
func New(app TrayApp, icons Icons, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		icons:     icons,
		callbacks: callbacks,
		state:     stopwatch.StatePaused,
	}

	manager.statusItem = fyne.NewMenuItem("Paused", nil)
	manager.statusItem.Disabled = true

	manager.toggleItem = fyne.NewMenuItem("Start", invoke(&manager.callbacks.OnToggle))
	manager.lapItem = fyne.NewMenuItem("Lap", invoke(&manager.callbacks.OnLap))
	manager.resetItem = fyne.NewMenuItem("Reset", invoke(&manager.callbacks.OnReset))
	manager.lockItem = fyne.NewMenuItem("Pause on lock", func() {
		if manager.callbacks.OnPauseOnLock != nil {
			manager.callbacks.OnPauseOnLock(!manager.lockItem.Checked)
		}
	})

	manager.menu = fyne.NewMenu("Lapwatch",
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.toggleItem,
		manager.lapItem,
		manager.resetItem,
		manager.lockItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Show", invoke(&manager.callbacks.OnShow)),
		fyne.NewMenuItem("Preferences", invoke(&manager.callbacks.OnPreferences)),
		fyne.NewMenuItem("Quit", invoke(&manager.callbacks.OnQuit)),
	)
	manager.menu.Items[len(manager.menu.Items)-1].IsQuit = true

	manager.applyItems()
	app.SetSystemTrayMenu(manager.menu)
	manager.applyIcon(true)
	return manager
}

// Update reflects the stopwatch mode, its elapsed time, and the pause-on-lock preference.
// Calls that change nothing visible are ignored, so it is cheap to call on every display refresh.
func (manager *Manager) Update(state stopwatch.State, elapsed time.Duration, pauseOnLock bool) {
	resettable := state == stopwatch.StateRunning || elapsed != 0
	elapsed = elapsed.Truncate(time.Second)
	if state == manager.state && elapsed == manager.elapsed &&
		resettable == manager.resettable && pauseOnLock == manager.lockItem.Checked {
		return
	}
	if state != manager.state {
		manager.message = ""
	}
	manager.state = state
	manager.elapsed = elapsed
	manager.resettable = resettable
	manager.lockItem.Checked = pauseOnLock
	manager.applyItems()
	manager.app.SetSystemTrayMenu(manager.menu)
	manager.applyIcon(false)
}

// SetStatus shows message in the status item until the mode changes.
func (manager *Manager) SetStatus(message string) {
	manager.message = message
	manager.applyItems()
	manager.app.SetSystemTrayMenu(manager.menu)
}

// StatusLabel returns the current status item text.
func (manager *Manager) StatusLabel() string {
	return manager.statusItem.Label
}

func (manager *Manager) applyItems() {
	running := manager.state == stopwatch.StateRunning

	status := "Paused"
	if running {
		status = "Running"
	}
	status = fmt.Sprintf("%s · %s", status, stopwatch.Format(manager.elapsed, false))
	if manager.message != "" {
		status = manager.message
	}
	manager.statusItem.Label = status

	if running {
		manager.toggleItem.Label = "Pause"
	} else {
		manager.toggleItem.Label = "Start"
	}
	manager.lapItem.Disabled = !running
	manager.resetItem.Disabled = !manager.resettable
}

func (manager *Manager) applyIcon(force bool) {
	if !force && manager.iconState == manager.state {
		return
	}
	manager.iconState = manager.state
	icon := manager.icons.Paused
	if manager.state == stopwatch.StateRunning {
		icon = manager.icons.Running
	}
	if icon != nil {
		manager.app.SetSystemTrayIcon(icon)
	}
}

func invoke(handler *func()) func() {
	return func() {
		if *handler != nil {
			(*handler)()
		}
	}
}
