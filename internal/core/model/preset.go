package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// UntitledName is shown for presets saved without a name.
const UntitledName = "Untitled"

// ErrNoPhases indicates a preset without any phases.
var ErrNoPhases = errors.New("preset has no phases")

// Preset is a named, ordered workout.
// TotalDurationSeconds is derived from Phases and is kept in sync by every mutator.
type Preset struct {
	ID                   string
	Name                 string
	Phases               []Phase
	TotalDurationSeconds int
}

// NewPreset creates a preset with a fresh identifier.
func NewPreset(name string, phases []Phase) Preset {
	preset := Preset{ID: uuid.NewString(), Name: name}
	preset.SetPhases(phases)
	return preset
}

// SumDurations returns the total duration of phases in seconds.
func SumDurations(phases []Phase) int {
	total := 0
	for _, phase := range phases {
		total += phase.DurationSeconds
	}
	return total
}

// SetPhases replaces the whole phase list.
func (preset *Preset) SetPhases(phases []Phase) {
	preset.Phases = append([]Phase(nil), phases...)
	preset.recompute()
}

// AppendPhase adds a phase at the end of the run order.
func (preset *Preset) AppendPhase(phase Phase) {
	preset.Phases = append(preset.Phases, phase)
	preset.recompute()
}

// RemovePhase deletes the phase with the given id.
func (preset *Preset) RemovePhase(id string) bool {
	for index, phase := range preset.Phases {
		if phase.ID == id {
			preset.Phases = append(preset.Phases[:index:index], preset.Phases[index+1:]...)
			preset.recompute()
			return true
		}
	}
	return false
}

// MovePhase moves the phase at from so that it ends up at index to.
func (preset *Preset) MovePhase(from, to int) bool {
	count := len(preset.Phases)
	if from < 0 || from >= count || to < 0 || to >= count {
		return false
	}
	if from == to {
		return true
	}
	phase := preset.Phases[from]
	phases := append(preset.Phases[:from:from], preset.Phases[from+1:]...)
	phases = append(phases[:to], append([]Phase{phase}, phases[to:]...)...)
	preset.Phases = phases
	preset.recompute()
	return true
}

// Rename sets the display name.
func (preset *Preset) Rename(name string) {
	preset.Name = name
}

// DisplayName returns the name, or UntitledName when empty.
func (preset Preset) DisplayName() string {
	if preset.Name == "" {
		return UntitledName
	}
	return preset.Name
}

// Clone returns a deep copy that shares no phase storage with preset.
func (preset Preset) Clone() Preset {
	clone := preset
	clone.Phases = append([]Phase(nil), preset.Phases...)
	return clone
}

// Validate checks identifiers, durations and the derived total.
func (preset Preset) Validate() error {
	if preset.ID == "" {
		return fmt.Errorf("preset %q: missing id", preset.Name)
	}
	if len(preset.Phases) == 0 {
		return fmt.Errorf("preset %q: %w", preset.Name, ErrNoPhases)
	}
	for _, phase := range preset.Phases {
		if err := phase.Validate(); err != nil {
			return fmt.Errorf("preset %q: %w", preset.Name, err)
		}
	}
	if sum := SumDurations(preset.Phases); sum != preset.TotalDurationSeconds {
		return fmt.Errorf("preset %q: total %d does not match phase sum %d", preset.Name, preset.TotalDurationSeconds, sum)
	}
	return nil
}

func (preset *Preset) recompute() {
	preset.TotalDurationSeconds = SumDurations(preset.Phases)
}
