package display

import (
	"fmt"
	"slices"
	"time"

	"lapwatch/internal/core/stopwatch"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Controller is the part of the stopwatch the window drives and reads.
type Controller interface {
	Start()
	Pause()
	Lap()
	Reset()
	ElapsedNow() time.Duration
	State() stopwatch.State
	Laps() []time.Duration
	PauseOnLock() bool
}

// Callbacks defines window action handlers that need more than the controller.
type Callbacks struct {
	OnPauseOnLock func(enabled bool)
	OnHidden      func()
	OnShown       func()
}

// Window is the main stopwatch window.
type Window struct {
	window     fyne.Window
	controller Controller
	callbacks  Callbacks

	timeLabel   *widget.Label
	statusLabel *widget.Label
	startButton *widget.Button
	pauseButton *widget.Button
	lapButton   *widget.Button
	resetButton *widget.Button
	lockCheck   *widget.Check
	lapList     *widget.List

	laps       []time.Duration
	showMillis bool
	message    string
	syncing    bool
}

// New builds the window. It is not shown until Show is called.
func New(app fyne.App, controller Controller, callbacks Callbacks) *Window {
	display := &Window{
		window:     app.NewWindow("Lapwatch"),
		controller: controller,
		callbacks:  callbacks,
		showMillis: true,
	}

	display.timeLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Monospace: true, Bold: true})
	display.timeLabel.SizeName = theme.SizeNameHeadingText
	display.statusLabel = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	display.startButton = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), display.act(controller.Start))
	display.pauseButton = widget.NewButtonWithIcon("Pause", theme.MediaPauseIcon(), display.act(controller.Pause))
	display.lapButton = widget.NewButtonWithIcon("Lap", theme.ContentAddIcon(), display.act(controller.Lap))
	display.resetButton = widget.NewButtonWithIcon("Reset", theme.MediaReplayIcon(), display.act(controller.Reset))

	display.lockCheck = widget.NewCheck("Pause on lock", display.handlePauseOnLock)

	display.lapList = widget.NewList(
		func() int { return len(display.laps) },
		func() fyne.CanvasObject {
			return container.NewBorder(nil, nil, widget.NewLabel("Lap 000"), widget.NewLabelWithStyle("00:00:00.000", fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true}))
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			row := item.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(fmt.Sprintf("Lap %d", id+1))
			row.Objects[1].(*widget.Label).SetText(stopwatch.Format(display.laps[id], display.showMillis))
		},
	)

	buttons := container.NewGridWithColumns(4, display.startButton, display.pauseButton, display.lapButton, display.resetButton)
	header := container.NewVBox(display.timeLabel, display.statusLabel, buttons, display.lockCheck)
	display.window.SetContent(container.NewBorder(header, nil, nil, nil, display.lapList))
	display.window.Resize(fyne.NewSize(380, 420))
	display.window.SetCloseIntercept(display.Hide)

	display.SetPauseOnLock(controller.PauseOnLock())
	display.Render()
	return display
}

// Show brings the window to the front.
func (display *Window) Show() {
	display.window.Show()
	display.window.RequestFocus()
	display.Render()
	if display.callbacks.OnShown != nil {
		display.callbacks.OnShown()
	}
}

// Hide hides the window without quitting.
func (display *Window) Hide() {
	display.window.Hide()
	if display.callbacks.OnHidden != nil {
		display.callbacks.OnHidden()
	}
}

// SetShowMillis toggles millisecond digits.
func (display *Window) SetShowMillis(show bool) {
	display.showMillis = show
	display.lapList.Refresh()
	display.Render()
}

// SetStatus shows message in place of Running/Paused until the next user action.
func (display *Window) SetStatus(message string) {
	display.message = message
	display.statusLabel.SetText(display.statusText())
}

// SetPauseOnLock updates the check box without invoking OnPauseOnLock.
func (display *Window) SetPauseOnLock(enabled bool) {
	display.syncing = true
	display.lockCheck.SetChecked(enabled)
	display.syncing = false
}

// Render recomputes every derived label from the controller.
func (display *Window) Render() {
	state := display.controller.State()
	elapsed := display.controller.ElapsedNow()
	controls := ControlsFor(state, elapsed)

	display.timeLabel.SetText(stopwatch.Format(elapsed, display.showMillis))
	display.statusLabel.SetText(display.statusTextFor(state))
	setEnabled(display.startButton, controls.Start)
	setEnabled(display.pauseButton, controls.Pause)
	setEnabled(display.lapButton, controls.Lap)
	setEnabled(display.resetButton, controls.Reset)

	laps := display.controller.Laps()
	if !slices.Equal(laps, display.laps) {
		display.laps = laps
		display.lapList.Refresh()
		if len(laps) > 0 {
			display.lapList.ScrollToBottom()
		}
	}
}

func (display *Window) act(action func()) func() {
	return func() {
		display.message = ""
		action()
		display.Render()
	}
}

func (display *Window) handlePauseOnLock(enabled bool) {
	if display.syncing {
		return
	}
	display.message = ""
	if display.callbacks.OnPauseOnLock != nil {
		display.callbacks.OnPauseOnLock(enabled)
	}
}

func (display *Window) statusText() string {
	return display.statusTextFor(display.controller.State())
}

func (display *Window) statusTextFor(state stopwatch.State) string {
	if display.message != "" {
		return display.message
	}
	return StatusText(state)
}

func setEnabled(button *widget.Button, enabled bool) {
	if enabled == !button.Disabled() {
		return
	}
	if enabled {
		button.Enable()
	} else {
		button.Disable()
	}
}
