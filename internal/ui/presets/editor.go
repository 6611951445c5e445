package presets

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/ui/preferences"
)

type phaseRow struct {
	id       string
	name     *widget.Entry
	duration *widget.Entry
}

// editor creates or edits one preset in its own window.
type editor struct {
	owner    *Window
	window   fyne.Window
	presetID string
	name     *widget.Entry
	rows     []*phaseRow
	rowsBox  *fyne.Container
	total    *widget.Label
	errors   *widget.Label
	save     *widget.Button
}

func (presets *Window) openEditor(preset *model.Preset) *editor {
	title := "New preset"
	if preset != nil {
		title = "Edit " + preset.DisplayName()
	}
	window := presets.app.NewWindow(title)

	edit := &editor{
		owner:   presets,
		window:  window,
		name:    widget.NewEntry(),
		rowsBox: container.NewVBox(),
		total:   widget.NewLabel(""),
		errors:  widget.NewLabel(""),
	}
	edit.name.SetPlaceHolder(model.UntitledName)
	if preset != nil {
		edit.presetID = preset.ID
		edit.name.SetText(preset.Name)
		for _, phase := range preset.Phases {
			edit.addRow(phase)
		}
	} else {
		edit.addRow(model.Phase{Name: "Work", DurationSeconds: 30})
	}

	addButton := widget.NewButtonWithIcon("Add phase", theme.ContentAddIcon(), func() {
		edit.addRow(model.Phase{Name: "Rest", DurationSeconds: 10})
	})
	edit.save = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), edit.submit)
	cancel := widget.NewButton("Cancel", window.Close)

	top := container.NewBorder(nil, nil, widget.NewLabel("Name"), nil, edit.name)
	bottom := container.NewVBox(
		edit.errors,
		container.NewHBox(addButton, edit.total, layout.NewSpacer(), cancel, edit.save),
	)
	window.SetContent(container.NewBorder(top, bottom, nil, nil, container.NewVScroll(edit.rowsBox)))
	window.Resize(fyne.NewSize(480, 420))
	edit.refreshTotal()
	window.Show()
	return edit
}

func (edit *editor) addRow(phase model.Phase) {
	row := &phaseRow{id: phase.ID, name: widget.NewEntry(), duration: widget.NewEntry()}
	row.name.SetText(phase.Name)
	row.duration.SetText(model.FormatClock(phase.DurationSeconds))
	row.duration.OnChanged = func(string) { edit.refreshTotal() }
	edit.rows = append(edit.rows, row)
	edit.rebuild()
}

func (edit *editor) removeRow(target *phaseRow) {
	for index, row := range edit.rows {
		if row == target {
			edit.rows = append(edit.rows[:index], edit.rows[index+1:]...)
			break
		}
	}
	edit.rebuild()
}

func (edit *editor) moveUp(target *phaseRow) {
	for index, row := range edit.rows {
		if row == target && index > 0 {
			edit.rows[index-1], edit.rows[index] = edit.rows[index], edit.rows[index-1]
			break
		}
	}
	edit.rebuild()
}

func (edit *editor) rebuild() {
	objects := make([]fyne.CanvasObject, 0, len(edit.rows))
	for _, row := range edit.rows {
		row := row
		up := widget.NewButtonWithIcon("", theme.MoveUpIcon(), func() { edit.moveUp(row) })
		remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() { edit.removeRow(row) })
		controls := container.NewHBox(row.duration, up, remove)
		objects = append(objects, container.NewBorder(nil, nil, nil, controls, row.name))
	}
	edit.rowsBox.Objects = objects
	edit.rowsBox.Refresh()
	edit.refreshTotal()
}

func (edit *editor) phases() ([]model.Phase, error) {
	phases := make([]model.Phase, 0, len(edit.rows))
	for index, row := range edit.rows {
		seconds, err := preferences.ParseClock(row.duration.Text)
		if err != nil {
			return nil, fmt.Errorf("phase %d: %v", index+1, err)
		}
		phase := model.Phase{ID: row.id, Name: row.name.Text, DurationSeconds: seconds}
		if phase.ID == "" {
			phase = model.NewPhase(phase.Name, seconds)
			row.id = phase.ID
		}
		phases = append(phases, phase)
	}
	if len(phases) == 0 {
		return nil, model.ErrNoPhases
	}
	return phases, nil
}

func (edit *editor) refreshTotal() {
	total := 0
	for _, row := range edit.rows {
		if seconds, err := preferences.ParseClock(row.duration.Text); err == nil {
			total += seconds
		}
	}
	edit.total.SetText("Total " + model.FormatClock(total))
}

func (edit *editor) submit() {
	phases, err := edit.phases()
	if err != nil {
		edit.errors.SetText(err.Error())
		return
	}

	var saved model.Preset
	if edit.presetID == "" {
		saved, err = edit.owner.library.Create(edit.name.Text, phases)
	} else {
		saved, err = edit.owner.library.Update(edit.presetID, edit.name.Text, phases)
	}
	if err != nil {
		edit.errors.SetText(err.Error())
		return
	}

	edit.presetID = saved.ID
	edit.owner.reloadOrReport()
	edit.owner.setStatus(fmt.Sprintf("Saved %q.", saved.Name))
	edit.window.Close()
}
