package main

import (
	"context"
	"log/slog"
	"time"

	"lapwatch/internal/core/presence"
	"lapwatch/internal/core/stopwatch"
	"lapwatch/internal/logfields"
	"lapwatch/internal/platform"
	"lapwatch/internal/storage"
	"lapwatch/internal/ui/display"
	"lapwatch/internal/ui/preferences"
	"lapwatch/internal/ui/refresh"
	"lapwatch/internal/ui/tray"
	"lapwatch/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
)

type appConfig struct {
	watch        *stopwatch.Stopwatch
	service      platform.Service
	settings     preferences.Settings
	settingsPath string
	assetsDir    string
	loginItem    platform.LoginItem
}

// application wires the stopwatch to its windows, tray, and presence guard.
// Methods without a goroutine note run on the fyne main goroutine.
type application struct {
	appConfig
	ctx      context.Context
	fyneApp  fyne.App
	detector *platform.PresenceDetector
	guard    *presence.Guard
	display  *display.Window
	tray     *tray.Manager
	prefs    *preferences.Window
	loop     *refresh.Loop
}

func runApp(config appConfig) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &application{
		appConfig: config,
		ctx:       ctx,
		fyneApp:   app.NewWithID(appID),
	}

	assets := resources.NewDefaultCache(config.assetsDir)
	if err := assets.Install(); err != nil {
		slog.Warn("Failed to precache icons", logfields.Error(err))
	}
	assets.Activate()
	a.fyneApp.SetIcon(assets.Resource(resources.IconApp))

	a.detector = platform.NewPresenceDetector(config.settings.PresenceConfig())
	a.guard = presence.NewGuard(a.detector, a.watch.HandleUserState)

	a.display = display.New(a.fyneApp, a.watch, display.Callbacks{
		OnPauseOnLock: a.setPauseOnLock,
		OnShown:       func() { a.setVisible(true) },
		OnHidden:      func() { a.setVisible(false) },
	})
	a.loop = refresh.New(nil, refreshInterval(config.settings), func() {
		fyne.Do(a.render)
	})
	a.prefs = preferences.New(a.fyneApp, config.settings, a.saveSettings)

	if desktopApp, ok := a.fyneApp.(desktop.App); ok {
		a.tray = tray.New(desktopApp, tray.Icons{
			Running: assets.Resource(resources.IconRunning),
			Paused:  assets.Resource(resources.IconPaused),
		}, tray.Callbacks{
			OnToggle:      a.toggle,
			OnLap:         a.action(a.watch.Lap),
			OnReset:       a.action(a.watch.Reset),
			OnPauseOnLock: a.setPauseOnLock,
			OnShow:        a.display.Show,
			OnPreferences: a.prefs.Show,
			OnQuit:        a.fyneApp.Quit,
		})
	} else {
		slog.Info("System tray unsupported; closing the window quits")
	}

	watcher, err := storage.NewSettingsWatcher(config.settingsPath, func(settings preferences.Settings) {
		fyne.Do(func() {
			a.prefs.UpdateSettings(settings)
			a.applySettings(settings)
		})
	})
	if err != nil {
		slog.Warn("Preferences hot reload unavailable", logfields.Error(err))
	} else if err := watcher.Start(ctx); err != nil {
		slog.Warn("Preferences hot reload unavailable", logfields.Error(err))
		watcher = nil
	}

	events := a.watch.Subscribe(16)
	go a.forwardEvents(events)

	lifecycle := a.fyneApp.Lifecycle()
	lifecycle.SetOnStarted(func() {
		a.applySettings(a.settings)
		if a.watch.PauseOnLock() {
			a.setPauseOnLock(true)
		}
	})
	lifecycle.SetOnEnteredForeground(a.render)
	lifecycle.SetOnExitedForeground(a.watch.Flush)
	lifecycle.SetOnStopped(func() {
		a.loop.Stop()
		a.watch.Flush()
	})

	a.display.Show()
	a.fyneApp.Run()

	a.loop.Stop()
	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			slog.Warn("Failed to stop preferences watcher", logfields.Error(err))
		}
	}
	if _, err := a.guard.Disable(); err != nil {
		slog.Warn("Failed to stop presence detector", logfields.Error(err))
	}
	a.watch.Close()
	return nil
}

// forwardEvents runs on its own goroutine until the stopwatch closes.
func (a *application) forwardEvents(events <-chan stopwatch.Event) {
	for event := range events {
		fyne.Do(func() { a.handleEvent(event) })
	}
}

func (a *application) handleEvent(event stopwatch.Event) {
	// The tray drops its message on a mode change, so render the new mode first.
	a.render()
	if event.Type == stopwatch.EventLockPause {
		a.setStatus(event.Message)
	}
}

func (a *application) render() {
	a.display.Render()
	if a.tray != nil {
		a.tray.Update(a.watch.State(), a.watch.ElapsedNow(), a.watch.PauseOnLock())
	}
}

func (a *application) action(do func()) func() {
	return func() {
		do()
		a.render()
	}
}

func (a *application) toggle() {
	if a.watch.State() == stopwatch.StateRunning {
		a.watch.Pause()
	} else {
		a.watch.Start()
	}
	a.render()
}

func (a *application) setStatus(message string) {
	a.display.SetStatus(message)
	if a.tray != nil {
		a.tray.SetStatus(message)
	}
}

// setPauseOnLock stores the preference and switches the detector. The
// preference is kept even when detection is unavailable.
func (a *application) setPauseOnLock(enabled bool) {
	if a.watch.PauseOnLock() != enabled {
		a.watch.SetPauseOnLock(enabled)
	}
	a.display.SetPauseOnLock(enabled)

	var status string
	var err error
	if enabled {
		status, err = a.guard.Enable(a.ctx)
	} else {
		status, err = a.guard.Disable()
	}
	if err != nil {
		slog.Warn("Pause-on-lock unavailable", logfields.Error(err))
	}
	a.setStatus(status)
	a.render()
}

func (a *application) setVisible(visible bool) {
	a.watch.HandleVisibility(visible)
	if visible {
		a.loop.Start(a.ctx)
		return
	}
	a.loop.Stop()
	a.render()
	if a.tray == nil {
		a.fyneApp.Quit()
	}
}

func (a *application) saveSettings(settings preferences.Settings) {
	if err := storage.SaveSettings(a.settingsPath, settings); err != nil {
		slog.Warn("Failed to save preferences", logfields.Path(a.settingsPath), logfields.Error(err))
	}
	a.applySettings(settings)
}

func (a *application) applySettings(settings preferences.Settings) {
	a.settings = settings
	a.watch.SetHidePolicy(settings.HidePolicy())
	a.loop.SetInterval(refreshInterval(settings))
	a.display.SetShowMillis(settings.ShowMillis)
	a.detector.UpdateConfig(settings.PresenceConfig())

	if err := platform.SyncAutostart(a.service, a.loginItem, settings.Autostart); err != nil {
		slog.Warn("Failed to update autostart", logfields.Error(err))
	}
	slog.Debug("Preferences applied", "summary", settings.Describe())
}

// refreshInterval slows the display down when only whole seconds are shown.
func refreshInterval(settings preferences.Settings) time.Duration {
	interval := preferences.ClampRefresh(settings.RefreshInterval)
	if !settings.ShowMillis && interval < refresh.CoarseInterval {
		return refresh.CoarseInterval
	}
	return interval
}
