package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"intervaltimer/internal/core/intervals"
	"intervaltimer/internal/core/model"
	"intervaltimer/internal/cues"
	"intervaltimer/internal/library"
	"intervaltimer/internal/logging"
	"intervaltimer/internal/platform"
	"intervaltimer/internal/share"
	"intervaltimer/internal/storage"
	"intervaltimer/internal/ui/preferences"
	"intervaltimer/internal/ui/presets"
	"intervaltimer/internal/ui/runner"
	"intervaltimer/internal/ui/tray"
	"intervaltimer/resources"
)

// application wires the engine, the library and the windows together.
type application struct {
	fyneApp   fyne.App
	desktop   desktop.App
	platform  platform.Service
	library   *library.Service
	logger    *logging.Logger
	configDir string
	settings  preferences.Settings

	engine        *intervals.Engine
	continuation  intervals.Continuation
	director      *cues.Director
	notifications *cues.Gate

	tray        *tray.Manager
	runner      *runner.Window
	presets     *presets.Window
	preferences *preferences.Window

	activeIcon fyne.Resource
	pausedIcon fyne.Resource
	alertIcon  fyne.Resource

	presetName string
}

func newApplication(
	fyneApp fyne.App,
	desktopApp desktop.App,
	service platform.Service,
	presetLibrary *library.Service,
	logger *logging.Logger,
	configDir string,
	settings preferences.Settings,
) *application {
	timer := &application{
		fyneApp:      fyneApp,
		desktop:      desktopApp,
		platform:     service,
		library:      presetLibrary,
		logger:       logger,
		configDir:    configDir,
		settings:     settings,
		continuation: platform.NewContinuation(appName),
		activeIcon:   resources.MustIcon(resources.TrayActive),
		pausedIcon:   resources.MustIcon(resources.TrayPaused),
		alertIcon:    resources.MustIcon(resources.TrayAlert),
	}

	timer.engine = intervals.New(intervals.Config{TickInterval: settings.TickInterval})
	if settings.KeepAwake {
		timer.engine.SetContinuation(timer.continuation)
	}

	timer.notifications = cues.NewGate(runner.NewNotificationSink(fyneApp, appName), settings.Notifications)
	timer.director = cues.NewDirector(timer.notifications, settings.CountdownSeconds, logger)

	trayWindow := fyneApp.NewWindow(appName)
	trayWindow.SetContent(widget.NewLabel("IntervalTimer is running in the system tray."))
	trayWindow.SetCloseIntercept(trayWindow.Hide)
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	timer.runner = runner.New(fyneApp, timer.engine, runner.Icons{Rest: timer.activeIcon, Flash: timer.alertIcon})
	timer.presets = presets.New(fyneApp, presetLibrary, presets.Callbacks{
		OnPlay: timer.play,
		OnChanged: func(all []model.Preset) {
			timer.tray.SetPresets(all)
		},
	})
	timer.preferences = preferences.New(fyneApp, settings, timer.applySettings)

	timer.tray = tray.New(desktopApp, tray.Callbacks{
		OnOpenRunner:   func() { timer.runner.Show(timer.presetName) },
		OnPresets:      timer.presets.Show,
		OnQuickStart:   timer.quickStart,
		OnStartPreset:  timer.startPreset,
		OnTogglePause:  timer.togglePause,
		OnSkipBackward: timer.engine.SkipBackward,
		OnSkipForward:  timer.engine.SkipForward,
		OnStop:         timer.engine.Stop,
		OnPreferences:  timer.preferences.Show,
		OnQuit:         fyneApp.Quit,
	})
	desktopApp.SetSystemTrayIcon(timer.activeIcon)

	if err := timer.presets.Reload(); err != nil {
		logger.Errorf("load presets: %v", err)
	}

	timer.engine.SetCallbacks(intervals.Callbacks{OnEvent: timer.handleEvent})

	return timer
}

// handleEvent runs on whichever goroutine drove the engine; UI updates are
// handed to fyne.Do.
func (timer *application) handleEvent(event intervals.Event) {
	if event.Type == intervals.EventContinuationError {
		timer.logger.Errorf("%s", event.Message)
	}
	timer.director.Handle(event)
	timer.runner.Apply(event)
	fyne.Do(func() {
		timer.updateTray(event)
	})
}

func (timer *application) updateTray(event intervals.Event) {
	timer.tray.SetState(event.State)
	switch event.State {
	case intervals.StateRunning:
		timer.desktop.SetSystemTrayIcon(timer.activeIcon)
		timer.tray.SetStatus(fmt.Sprintf("%s %s", phaseName(event.Phase), model.FormatClock(event.RemainingSeconds())))
	case intervals.StatePaused:
		timer.desktop.SetSystemTrayIcon(timer.pausedIcon)
		timer.tray.SetStatus(fmt.Sprintf("%s %s", phaseName(event.Phase), model.FormatClock(event.RemainingSeconds())))
	case intervals.StateComplete:
		timer.desktop.SetSystemTrayIcon(timer.alertIcon)
		timer.tray.SetStatus("workout complete")
	default:
		timer.desktop.SetSystemTrayIcon(timer.activeIcon)
		timer.tray.SetStatus("ready")
	}
}

func (timer *application) play(preset model.Preset) {
	timer.presetName = preset.DisplayName()
	timer.engine.Load(preset.Phases)
	timer.runner.Show(timer.presetName)
	timer.engine.Start()
	timer.logger.Infof("started %s (%d phases, %s)", timer.presetName, len(preset.Phases), model.FormatClock(preset.TotalDurationSeconds))
}

func (timer *application) quickStart() {
	timer.play(timer.settings.QuickStartPreset())
}

func (timer *application) startPreset(id string) {
	preset, err := timer.library.Get(id)
	if err != nil {
		timer.logger.Errorf("start preset: %v", err)
		return
	}
	timer.play(preset)
}

func (timer *application) togglePause() {
	switch timer.engine.Status().State {
	case intervals.StateRunning:
		timer.engine.Pause()
	case intervals.StatePaused:
		timer.engine.Resume()
	}
}

// handleLink imports a share link forwarded by the OS or a second launch.
func (timer *application) handleLink(link string) {
	if !share.Handles(link) {
		timer.logger.Debugf("ignoring forwarded message %q", link)
		return
	}
	fyne.Do(func() {
		timer.presets.Show()
		timer.presets.ImportLink(link)
	})
}

func (timer *application) applySettings(updated preferences.Settings) {
	previous := timer.settings
	timer.settings = updated

	if err := storage.SaveSettings(timer.configDir, updated); err != nil {
		timer.logger.Errorf("save settings: %v", err)
	}
	if level, err := logging.ParseLevel(updated.LogLevel); err == nil {
		timer.logger.SetLevel(level)
	}
	timer.director.SetCountdown(updated.CountdownSeconds)
	timer.notifications.Enable(updated.Notifications)

	if updated.KeepAwake {
		timer.engine.SetContinuation(timer.continuation)
	} else {
		timer.engine.SetContinuation(nil)
	}
	if updated.RegisterLinks != previous.RegisterLinks {
		timer.registerLinks(updated.RegisterLinks)
	}
	if updated.StoreBackend != previous.StoreBackend || updated.TickInterval != previous.TickInterval {
		timer.logger.Infof("storage and tick changes apply after restart")
	}
}

func (timer *application) registerLinks(enabled bool) {
	if !enabled {
		if err := timer.platform.UnregisterLinkHandler(share.Scheme); err != nil {
			timer.logger.Errorf("unregister link handler: %v", err)
		}
		return
	}
	execPath, err := os.Executable()
	if err != nil {
		timer.logger.Errorf("resolve executable: %v", err)
		return
	}
	if err := timer.platform.RegisterLinkHandler(share.Scheme, execPath); err != nil {
		timer.logger.Errorf("register link handler: %v", err)
	}
}

func (timer *application) close() {
	timer.engine.Close()
	timer.runner.Close()
}

func phaseName(phase model.Phase) string {
	if phase.Name == "" {
		return "Phase"
	}
	return phase.Name
}
