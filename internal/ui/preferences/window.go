package preferences

import (
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window    fyne.Window
	settings  Settings
	onSave    func(Settings)
	refresh   *widget.Entry
	idle      *widget.Entry
	millis    *widget.Check
	hidePause *widget.Check
	autostart *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Lapwatch Settings")

	prefs := &Window{
		window:    window,
		onSave:    onSave,
		refresh:   widget.NewEntry(),
		idle:      widget.NewEntry(),
		millis:    widget.NewCheck("Show milliseconds", nil),
		hidePause: widget.NewCheck("Pause when the window is hidden", nil),
		autostart: widget.NewCheck("Start at login", nil),
	}
	prefs.UpdateSettings(settings)

	form := container.NewVBox(
		widget.NewLabelWithStyle("Display", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Refresh every"), prefs.refresh, widget.NewLabel("ms")),
		prefs.millis,
		widget.NewLabelWithStyle("Behaviour", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		prefs.hidePause,
		container.NewHBox(widget.NewLabel("Idle after"), prefs.idle, widget.NewLabel("sec")),
		prefs.autostart,
	)

	saveButton := widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", func() {
		prefs.UpdateSettings(prefs.settings)
		window.Hide()
	})
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(360, 320))
	window.SetCloseIntercept(window.Hide)

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// Settings returns the last saved values.
func (prefs *Window) Settings() Settings {
	return prefs.settings
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.refresh.SetText(strconv.FormatInt(settings.RefreshInterval.Milliseconds(), 10))
	prefs.idle.SetText(strconv.Itoa(int(settings.IdleThreshold.Seconds())))
	prefs.millis.SetChecked(settings.ShowMillis)
	prefs.hidePause.SetChecked(settings.PauseOnHide)
	prefs.autostart.SetChecked(settings.Autostart)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if millis, ok := parsePositiveInt(prefs.refresh.Text); ok {
		settings.RefreshInterval = ClampRefresh(time.Duration(millis) * time.Millisecond)
	}
	if seconds, ok := parsePositiveInt(prefs.idle.Text); ok {
		settings.IdleThreshold = time.Duration(seconds) * time.Second
	}
	settings.ShowMillis = prefs.millis.Checked
	settings.PauseOnHide = prefs.hidePause.Checked
	settings.Autostart = prefs.autostart.Checked

	prefs.UpdateSettings(settings)
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
