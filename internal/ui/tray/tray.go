package tray

import (
	"fmt"

	"fyne.io/fyne/v2"

	"intervaltimer/internal/core/intervals"
	"intervaltimer/internal/core/model"
)

const menuTitle = "IntervalTimer"

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnOpenRunner   func()
	OnPresets      func()
	OnQuickStart   func()
	OnStartPreset  func(id string)
	OnTogglePause  func()
	OnSkipBackward func()
	OnSkipForward  func()
	OnStop         func()
	OnPreferences  func()
	OnQuit         func()
}

// Host is the part of desktop.App the tray needs.
type Host interface {
	SetSystemTrayMenu(menu *fyne.Menu)
}

// Manager handles system tray state.
type Manager struct {
	host      Host
	callbacks Callbacks
	status    string
	state     intervals.State
	presets   []model.Preset
	menu      *fyne.Menu
}

// New creates a tray manager with the provided callbacks.
func New(host Host, callbacks Callbacks) *Manager {
	manager := &Manager{
		host:      host,
		callbacks: callbacks,
		status:    "ready",
		state:     intervals.StateIdle,
	}
	manager.refreshMenu()
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.status = status
	manager.refreshMenu()
}

// SetState enables the run controls that apply to state.
func (manager *Manager) SetState(state intervals.State) {
	manager.state = state
	manager.refreshMenu()
}

// SetPresets replaces the presets submenu.
func (manager *Manager) SetPresets(presets []model.Preset) {
	manager.presets = append([]model.Preset(nil), presets...)
	manager.refreshMenu()
}

// Menu returns the menu currently installed.
func (manager *Manager) Menu() *fyne.Menu {
	return manager.menu
}

func (manager *Manager) refreshMenu() {
	manager.menu = manager.buildMenu()
	if manager.host != nil {
		manager.host.SetSystemTrayMenu(manager.menu)
	}
}

func (manager *Manager) buildMenu() *fyne.Menu {
	status := fyne.NewMenuItem(fmt.Sprintf("Status: %s", manager.statusLabel()), nil)
	status.Disabled = true

	active := manager.state == intervals.StateRunning || manager.state == intervals.StatePaused

	pauseLabel := "Pause"
	if manager.state == intervals.StatePaused {
		pauseLabel = "Resume"
	}
	pause := fyne.NewMenuItem(pauseLabel, call(manager.callbacks.OnTogglePause))
	pause.Disabled = !active

	back := fyne.NewMenuItem("Previous phase", call(manager.callbacks.OnSkipBackward))
	back.Disabled = !active
	forward := fyne.NewMenuItem("Next phase", call(manager.callbacks.OnSkipForward))
	forward.Disabled = !active
	stop := fyne.NewMenuItem("Stop", call(manager.callbacks.OnStop))
	stop.Disabled = manager.state == intervals.StateIdle

	presets := fyne.NewMenuItem("Start preset", nil)
	presetItems := make([]*fyne.MenuItem, 0, len(manager.presets))
	for _, preset := range manager.presets {
		id := preset.ID
		label := fmt.Sprintf("%s (%s)", preset.DisplayName(), model.FormatClock(preset.TotalDurationSeconds))
		presetItems = append(presetItems, fyne.NewMenuItem(label, func() {
			if manager.callbacks.OnStartPreset != nil {
				manager.callbacks.OnStartPreset(id)
			}
		}))
	}
	if len(presetItems) == 0 {
		empty := fyne.NewMenuItem("No saved presets", nil)
		empty.Disabled = true
		presetItems = append(presetItems, empty)
	}
	presets.ChildMenu = fyne.NewMenu("", presetItems...)

	return fyne.NewMenu(menuTitle,
		status,
		fyne.NewMenuItem("Show timer", call(manager.callbacks.OnOpenRunner)),
		fyne.NewMenuItem("Quick start", call(manager.callbacks.OnQuickStart)),
		presets,
		fyne.NewMenuItemSeparator(),
		pause,
		back,
		forward,
		stop,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Presets...", call(manager.callbacks.OnPresets)),
		fyne.NewMenuItem("Preferences", call(manager.callbacks.OnPreferences)),
		fyne.NewMenuItem("Quit", call(manager.callbacks.OnQuit)),
	)
}

func (manager *Manager) statusLabel() string {
	if manager.state == intervals.StatePaused {
		return fmt.Sprintf("%s (paused)", manager.status)
	}
	return manager.status
}

func call(handler func()) func() {
	return func() {
		if handler != nil {
			handler()
		}
	}
}
