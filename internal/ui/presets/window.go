package presets

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/library"
	"intervaltimer/internal/share"
)

// Callbacks connect the presets window to the rest of the app.
type Callbacks struct {
	OnPlay    func(preset model.Preset)
	OnChanged func(presets []model.Preset)
}

// Window lists saved presets and offers the library actions on them.
type Window struct {
	app       fyne.App
	window    fyne.Window
	library   *library.Service
	callbacks Callbacks

	presets  []model.Preset
	selected int

	list        *widget.List
	status      *widget.Label
	importEntry *widget.Entry

	playButton      *widget.Button
	editButton      *widget.Button
	duplicateButton *widget.Button
	shareButton     *widget.Button
	deleteButton    *widget.Button
}

// New creates the presets window. It starts hidden.
func New(app fyne.App, service *library.Service, callbacks Callbacks) *Window {
	window := app.NewWindow("IntervalTimer Presets")
	presets := &Window{
		app:       app,
		window:    window,
		library:   service,
		callbacks: callbacks,
		selected:  -1,
		status:    widget.NewLabel(""),
	}
	presets.status.Wrapping = fyne.TextWrapWord

	presets.list = widget.NewList(
		func() int { return len(presets.presets) },
		func() fyne.CanvasObject { return widget.NewLabel("preset") },
		func(id widget.ListItemID, item fyne.CanvasObject) {
			if id < len(presets.presets) {
				item.(*widget.Label).SetText(rowText(presets.presets[id]))
			}
		},
	)
	presets.list.OnSelected = func(id widget.ListItemID) {
		presets.selected = id
		presets.updateButtons()
	}
	presets.list.OnUnselected = func(widget.ListItemID) {
		presets.selected = -1
		presets.updateButtons()
	}

	presets.playButton = widget.NewButtonWithIcon("Play", theme.MediaPlayIcon(), presets.playSelected)
	presets.editButton = widget.NewButtonWithIcon("Edit", theme.DocumentCreateIcon(), presets.editSelected)
	presets.duplicateButton = widget.NewButtonWithIcon("Duplicate", theme.ContentCopyIcon(), presets.duplicateSelected)
	presets.shareButton = widget.NewButtonWithIcon("Share", theme.MailSendIcon(), presets.shareSelected)
	presets.deleteButton = widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), presets.confirmDelete)
	newButton := widget.NewButtonWithIcon("New", theme.ContentAddIcon(), func() {
		presets.openEditor(nil)
	})

	presets.importEntry = widget.NewEntry()
	presets.importEntry.SetPlaceHolder("Paste an intervaltimer:// link")
	presets.importEntry.OnSubmitted = func(string) { presets.importLink() }
	importButton := widget.NewButtonWithIcon("Import", theme.DownloadIcon(), presets.importLink)

	actions := container.NewHBox(
		newButton,
		layout.NewSpacer(),
		presets.playButton,
		presets.editButton,
		presets.duplicateButton,
		presets.shareButton,
		presets.deleteButton,
	)
	importRow := container.NewBorder(nil, nil, nil, importButton, presets.importEntry)
	bottom := container.NewVBox(actions, importRow, presets.status)

	window.SetContent(container.NewBorder(nil, bottom, nil, nil, presets.list))
	window.Resize(fyne.NewSize(560, 420))
	window.SetCloseIntercept(window.Hide)

	presets.updateButtons()
	return presets
}

// Show reloads the list and displays the window.
func (presets *Window) Show() {
	if err := presets.Reload(); err != nil {
		presets.setStatus(fmt.Sprintf("Could not load presets: %v", err))
	}
	presets.window.Show()
	presets.window.RequestFocus()
}

// Reload reads the presets from the library.
func (presets *Window) Reload() error {
	all, err := presets.library.List()
	if err != nil {
		return err
	}
	presets.presets = all
	presets.selected = -1
	presets.list.UnselectAll()
	presets.list.Refresh()
	presets.updateButtons()
	if presets.callbacks.OnChanged != nil {
		presets.callbacks.OnChanged(all)
	}
	return nil
}

// ImportLink imports uri and reports the outcome in the window.
func (presets *Window) ImportLink(uri string) {
	presets.importEntry.SetText(uri)
	presets.importLink()
}

func (presets *Window) importLink() {
	uri := presets.importEntry.Text
	result, err := presets.library.ImportLink(uri)
	switch {
	case err != nil && errors.Is(err, share.ErrMalformedPayload):
		presets.setStatus("That link is damaged or incomplete.")
		return
	case err != nil:
		presets.setStatus(fmt.Sprintf("Import failed: %v", err))
		return
	case result.Outcome == library.ImportIgnored:
		presets.setStatus("Not an IntervalTimer share link.")
		return
	}

	presets.importEntry.SetText("")
	presets.reloadOrReport()
	presets.setStatus(fmt.Sprintf("Preset %q %s.", result.Preset.DisplayName(), result.Outcome))
}

func (presets *Window) selectedPreset() (model.Preset, bool) {
	if presets.selected < 0 || presets.selected >= len(presets.presets) {
		return model.Preset{}, false
	}
	return presets.presets[presets.selected], true
}

func (presets *Window) playSelected() {
	preset, ok := presets.selectedPreset()
	if ok && presets.callbacks.OnPlay != nil {
		presets.callbacks.OnPlay(preset)
	}
}

func (presets *Window) editSelected() {
	if preset, ok := presets.selectedPreset(); ok {
		presets.openEditor(&preset)
	}
}

func (presets *Window) duplicateSelected() {
	preset, ok := presets.selectedPreset()
	if !ok {
		return
	}
	duplicate, err := presets.library.Duplicate(preset.ID)
	if err != nil {
		presets.setStatus(fmt.Sprintf("Duplicate failed: %v", err))
		return
	}
	presets.reloadOrReport()
	presets.setStatus(fmt.Sprintf("Created %q.", duplicate.Name))
}

func (presets *Window) shareSelected() {
	preset, ok := presets.selectedPreset()
	if !ok {
		return
	}
	link, err := presets.library.ShareLink(preset.ID)
	if err != nil {
		presets.setStatus(fmt.Sprintf("Share failed: %v", err))
		return
	}
	presets.app.Clipboard().SetContent(link)
	presets.setStatus("Share link copied to the clipboard: " + link)
}

func (presets *Window) confirmDelete() {
	preset, ok := presets.selectedPreset()
	if !ok {
		return
	}
	dialog.ShowConfirm("Delete preset",
		fmt.Sprintf("Delete %q?", preset.DisplayName()),
		func(confirmed bool) {
			if confirmed {
				presets.delete(preset.ID)
			}
		},
		presets.window,
	)
}

func (presets *Window) delete(id string) {
	if err := presets.library.Delete(id); err != nil {
		presets.setStatus(fmt.Sprintf("Delete failed: %v", err))
		return
	}
	presets.reloadOrReport()
	presets.setStatus("Preset deleted.")
}

func (presets *Window) reloadOrReport() {
	if err := presets.Reload(); err != nil {
		presets.setStatus(fmt.Sprintf("Could not load presets: %v", err))
	}
}

func (presets *Window) updateButtons() {
	_, ok := presets.selectedPreset()
	for _, button := range []*widget.Button{
		presets.playButton,
		presets.editButton,
		presets.duplicateButton,
		presets.shareButton,
		presets.deleteButton,
	} {
		if ok {
			button.Enable()
		} else {
			button.Disable()
		}
	}
}

func (presets *Window) setStatus(text string) {
	presets.status.SetText(text)
}

func rowText(preset model.Preset) string {
	return fmt.Sprintf("%s  %s  (%d phases)", preset.DisplayName(), model.FormatClock(preset.TotalDurationSeconds), len(preset.Phases))
}
