package preferences

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"intervaltimer/internal/core/model"
)

var logLevels = []string{"silent", "error", "info", "debug"}

// Window handles the preferences UI.
type Window struct {
	window        fyne.Window
	settings      Settings
	onSave        func(Settings)
	sets          *widget.Entry
	work          *widget.Entry
	rest          *widget.Entry
	countdown     *widget.Select
	keepAwake     *widget.Check
	notifications *widget.Check
	registerLinks *widget.Check
	backend       *widget.Select
	logLevel      *widget.Select
	saveButton    *widget.Button
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("IntervalTimer Settings")

	countdownOptions := make([]string, 0, MaxCountdownSeconds+1)
	for seconds := 0; seconds <= MaxCountdownSeconds; seconds++ {
		countdownOptions = append(countdownOptions, strconv.Itoa(seconds))
	}

	prefs := &Window{
		window:        window,
		onSave:        onSave,
		sets:          widget.NewEntry(),
		work:          widget.NewEntry(),
		rest:          widget.NewEntry(),
		countdown:     widget.NewSelect(countdownOptions, nil),
		keepAwake:     widget.NewCheck("Keep the computer awake during a run", nil),
		notifications: widget.NewCheck("Desktop notifications", nil),
		registerLinks: widget.NewCheck("Open intervaltimer:// share links with this app", nil),
		backend:       widget.NewSelect([]string{BackendYAML, BackendSQLite}, nil),
		logLevel:      widget.NewSelect(logLevels, nil),
	}
	prefs.work.SetPlaceHolder("MM:SS")
	prefs.rest.SetPlaceHolder("MM:SS")

	form := container.NewVBox(
		widget.NewLabelWithStyle("Quick start", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(2,
			widget.NewLabel("Sets"), prefs.sets,
			widget.NewLabel("Work"), prefs.work,
			widget.NewLabel("Rest"), prefs.rest,
		),
		widget.NewLabelWithStyle("Run", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Countdown cue (seconds)"), prefs.countdown),
		prefs.keepAwake,
		prefs.notifications,
		prefs.registerLinks,
		widget.NewLabelWithStyle("Advanced", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(2,
			widget.NewLabel("Preset storage"), prefs.backend,
			widget.NewLabel("Log level"), prefs.logLevel,
		),
	)

	prefs.saveButton = widget.NewButton("Save", prefs.handleSave)
	cancelButton := widget.NewButton("Cancel", window.Hide)
	buttons := container.NewHBox(prefs.saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(440, 460))
	window.SetCloseIntercept(window.Hide)

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.sets.SetText(strconv.Itoa(settings.QuickSets))
	prefs.work.SetText(model.FormatClock(int(settings.QuickWork / time.Second)))
	prefs.rest.SetText(model.FormatClock(int(settings.QuickRest / time.Second)))
	prefs.countdown.SetSelected(strconv.Itoa(settings.CountdownSeconds))
	prefs.keepAwake.SetChecked(settings.KeepAwake)
	prefs.notifications.SetChecked(settings.Notifications)
	prefs.registerLinks.SetChecked(settings.RegisterLinks)
	prefs.backend.SetSelected(settings.StoreBackend)
	prefs.logLevel.SetSelected(settings.LogLevel)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	if sets, ok := parsePositiveInt(prefs.sets.Text); ok && sets <= MaxQuickSets {
		settings.QuickSets = sets
	}
	if seconds, err := ParseClock(prefs.work.Text); err == nil && seconds > 0 {
		settings.QuickWork = time.Duration(seconds) * time.Second
	}
	if seconds, err := ParseClock(prefs.rest.Text); err == nil {
		settings.QuickRest = time.Duration(seconds) * time.Second
	}
	if seconds, err := strconv.Atoi(prefs.countdown.Selected); err == nil {
		settings.CountdownSeconds = seconds
	}
	settings.KeepAwake = prefs.keepAwake.Checked
	settings.Notifications = prefs.notifications.Checked
	settings.RegisterLinks = prefs.registerLinks.Checked
	if prefs.backend.Selected != "" {
		settings.StoreBackend = prefs.backend.Selected
	}
	if prefs.logLevel.Selected != "" {
		settings.LogLevel = prefs.logLevel.Selected
	}

	prefs.UpdateSettings(settings)
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

// ParseClock reads "MM:SS" or a plain second count and clamps it to 99:59.
func ParseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty duration")
	}
	minutesText, secondsText, found := strings.Cut(value, ":")
	if !found {
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds < 0 {
			return 0, fmt.Errorf("invalid duration %q", value)
		}
		return model.ClampSeconds(seconds), nil
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(minutesText))
	if err != nil || minutes < 0 {
		return 0, fmt.Errorf("invalid minutes in %q", value)
	}
	seconds, err := strconv.Atoi(strings.TrimSpace(secondsText))
	if err != nil || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("invalid seconds in %q", value)
	}
	return model.ClampDuration(minutes, seconds), nil
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}
