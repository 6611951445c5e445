package runner

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"intervaltimer/internal/core/intervals"
	"intervaltimer/internal/core/model"
	"intervaltimer/internal/ui/animation"
)

// Controls is the engine surface the window drives.
type Controls interface {
	Start()
	Pause()
	Resume()
	SkipForward()
	SkipBackward()
	Restart()
	Stop()
	Status() intervals.Status
	Phases() []model.Phase
}

// Icons used by the phase indicator.
type Icons struct {
	Rest  fyne.Resource
	Flash fyne.Resource
}

var (
	runningColor  = color.NRGBA{R: 245, G: 158, B: 11, A: 255}
	pausedColor   = color.NRGBA{R: 156, G: 163, B: 175, A: 255}
	completeColor = color.NRGBA{R: 34, G: 197, B: 94, A: 255}
	idleColor     = color.NRGBA{R: 75, G: 85, B: 99, A: 255}
)

// Window shows the active run and its controls.
type Window struct {
	window   fyne.Window
	controls Controls
	icons    Icons

	title      *canvas.Text
	phaseLabel *canvas.Text
	clock      *canvas.Text
	counter    *widget.Label
	upNext     *widget.Label
	progress   *widget.ProgressBar
	accent     *canvas.Rectangle
	indicator  *canvas.Image

	backButton    *widget.Button
	playButton    *widget.Button
	forwardButton *widget.Button
	stopButton    *widget.Button
	restartButton *widget.Button

	engine *animation.Engine
	state  intervals.State
}

// New creates the run window. It starts hidden.
func New(app fyne.App, controls Controls, icons Icons) *Window {
	window := app.NewWindow("IntervalTimer")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	title := canvas.NewText("", theme.Color(theme.ColorNameForeground))
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.TextSize = 18
	title.Alignment = fyne.TextAlignCenter

	phaseLabel := canvas.NewText("Ready", theme.Color(theme.ColorNameForeground))
	phaseLabel.TextStyle = fyne.TextStyle{Bold: true}
	phaseLabel.TextSize = 28
	phaseLabel.Alignment = fyne.TextAlignCenter

	clock := canvas.NewText("00:00", runningColor)
	clock.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	clock.TextSize = 72
	clock.Alignment = fyne.TextAlignCenter

	indicator := canvas.NewImageFromResource(icons.Rest)
	indicator.FillMode = canvas.ImageFillContain
	indicator.SetMinSize(fyne.NewSize(48, 48))

	accent := canvas.NewRectangle(idleColor)
	accent.SetMinSize(fyne.NewSize(0, 6))

	runner := &Window{
		window:     window,
		controls:   controls,
		icons:      icons,
		title:      title,
		phaseLabel: phaseLabel,
		clock:      clock,
		counter:    widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{}),
		upNext:     widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		progress:   widget.NewProgressBar(),
		accent:     accent,
		indicator:  indicator,
		state:      intervals.StateIdle,
	}
	runner.engine = animation.New(runner.setIndicator)

	runner.backButton = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), controls.SkipBackward)
	runner.playButton = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), runner.togglePlay)
	runner.forwardButton = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), controls.SkipForward)
	runner.stopButton = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), controls.Stop)
	runner.restartButton = widget.NewButtonWithIcon("Restart", theme.MediaReplayIcon(), controls.Restart)

	buttons := container.NewHBox(
		layout.NewSpacer(),
		runner.backButton,
		runner.playButton,
		runner.forwardButton,
		runner.stopButton,
		runner.restartButton,
		layout.NewSpacer(),
	)
	content := container.NewVBox(
		accent,
		container.NewHBox(layout.NewSpacer(), indicator, title, layout.NewSpacer()),
		phaseLabel,
		clock,
		runner.counter,
		runner.upNext,
		runner.progress,
		buttons,
	)

	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(420, 360))
	window.SetCloseIntercept(window.Hide)

	runner.render(controls.Status(), controls.Phases())
	return runner
}

// Show brings the window up for the preset called name.
func (runner *Window) Show(name string) {
	runner.title.Text = name
	runner.title.Refresh()
	runner.render(runner.controls.Status(), runner.controls.Phases())
	runner.window.Show()
	runner.window.RequestFocus()
}

// Hide closes the window without stopping the run.
func (runner *Window) Hide() {
	runner.window.Hide()
}

// Apply renders an engine event. Safe to call from any goroutine.
func (runner *Window) Apply(event intervals.Event) {
	status := runner.controls.Status()
	phases := runner.controls.Phases()
	fyne.Do(func() {
		runner.render(status, phases)
		switch event.Type {
		case intervals.EventPhaseChanged:
			runner.flash(2)
		case intervals.EventCompleted:
			runner.flash(4)
		}
	})
}

// Close stops any running animation.
func (runner *Window) Close() {
	runner.engine.Stop()
}

func (runner *Window) togglePlay() {
	switch runner.controls.Status().State {
	case intervals.StateRunning:
		runner.controls.Pause()
	case intervals.StatePaused:
		runner.controls.Resume()
	case intervals.StateComplete:
		runner.controls.Restart()
	default:
		runner.controls.Start()
	}
}

func (runner *Window) render(status intervals.Status, phases []model.Phase) {
	runner.state = status.State

	switch status.State {
	case intervals.StateIdle:
		runner.phaseLabel.Text = "Ready"
		if len(phases) > 0 {
			runner.clock.Text = model.FormatClock(phases[0].DurationSeconds)
		} else {
			runner.clock.Text = model.FormatClock(0)
		}
		runner.counter.SetText(fmt.Sprintf("%d phases, %s total", len(phases), model.FormatClock(model.SumDurations(phases))))
		runner.upNext.SetText(upNextText(phases, -1))
	case intervals.StateComplete:
		runner.phaseLabel.Text = "Complete"
		runner.clock.Text = model.FormatClock(0)
		runner.counter.SetText(fmt.Sprintf("%d of %d phases done", len(phases), len(phases)))
		runner.upNext.SetText("")
	default:
		runner.phaseLabel.Text = phaseTitle(status.Phase)
		runner.clock.Text = model.FormatClock(status.RemainingSeconds())
		runner.counter.SetText(fmt.Sprintf("Phase %d of %d", status.PhaseIndex+1, len(phases)))
		runner.upNext.SetText(upNextText(phases, status.PhaseIndex))
	}

	runner.clock.Color = stateColor(status.State)
	runner.accent.FillColor = stateColor(status.State)
	runner.progress.SetValue(Progress(phases, status))
	runner.updateButtons(status, len(phases))

	runner.phaseLabel.Refresh()
	runner.clock.Refresh()
	runner.accent.Refresh()
}

func (runner *Window) updateButtons(status intervals.Status, count int) {
	active := status.State == intervals.StateRunning || status.State == intervals.StatePaused

	switch status.State {
	case intervals.StateRunning:
		runner.playButton.SetText("Pause")
		runner.playButton.SetIcon(theme.MediaPauseIcon())
	case intervals.StatePaused:
		runner.playButton.SetText("Resume")
		runner.playButton.SetIcon(theme.MediaPlayIcon())
	case intervals.StateComplete:
		runner.playButton.SetText("Again")
		runner.playButton.SetIcon(theme.MediaReplayIcon())
	default:
		runner.playButton.SetText("Start")
		runner.playButton.SetIcon(theme.MediaPlayIcon())
	}

	setEnabled(runner.playButton, count > 0)
	setEnabled(runner.backButton, active && status.PhaseIndex > 0)
	setEnabled(runner.forwardButton, active && status.PhaseIndex < count-1)
	setEnabled(runner.stopButton, status.State != intervals.StateIdle)
	setEnabled(runner.restartButton, count > 0 && status.State != intervals.StateIdle)
}

func (runner *Window) flash(count int) {
	if runner.icons.Flash == nil || runner.icons.Rest == nil {
		return
	}
	runner.engine.Play(context.Background(), animation.Pulse(runner.icons.Rest, runner.icons.Flash, count, 250*time.Millisecond))
}

func (runner *Window) setIndicator(resource fyne.Resource) {
	fyne.Do(func() {
		runner.indicator.Resource = resource
		runner.indicator.Refresh()
	})
}

// Progress returns the fraction of the total run time already elapsed.
func Progress(phases []model.Phase, status intervals.Status) float64 {
	total := model.SumDurations(phases)
	switch {
	case status.State == intervals.StateComplete:
		return 1
	case status.State == intervals.StateIdle || total <= 0:
		return 0
	}

	elapsed := time.Duration(0)
	for index := 0; index < status.PhaseIndex && index < len(phases); index++ {
		elapsed += time.Duration(phases[index].DurationSeconds) * time.Second
	}
	if status.PhaseIndex < len(phases) {
		current := time.Duration(phases[status.PhaseIndex].DurationSeconds) * time.Second
		if done := current - status.Remaining; done > 0 {
			elapsed += done
		}
	}

	fraction := elapsed.Seconds() / float64(total)
	if fraction > 1 {
		return 1
	}
	return fraction
}

func upNextText(phases []model.Phase, index int) string {
	next := index + 1
	if next >= len(phases) {
		if index >= 0 {
			return "Last phase"
		}
		return ""
	}
	return fmt.Sprintf("Next: %s %s", phaseTitle(phases[next]), model.FormatClock(phases[next].DurationSeconds))
}

func phaseTitle(phase model.Phase) string {
	if phase.Name == "" {
		return "Phase"
	}
	return phase.Name
}

func stateColor(state intervals.State) color.Color {
	switch state {
	case intervals.StateRunning:
		return runningColor
	case intervals.StatePaused:
		return pausedColor
	case intervals.StateComplete:
		return completeColor
	default:
		return idleColor
	}
}

func setEnabled(button *widget.Button, enabled bool) {
	if enabled {
		button.Enable()
		return
	}
	button.Disable()
}
