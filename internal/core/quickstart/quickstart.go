// Package quickstart expands a (sets, work, rest) tuple into a phase list.
package quickstart

import "intervaltimer/internal/core/model"

const (
	// PresetName names presets produced by NewPreset.
	PresetName = "Quick Start"
	WorkName   = "Work"
	RestName   = "Rest"
)

// Expand returns Work, Rest, Work, ... with no rest after the final set.
// Sets below one are treated as one; durations are clamped to the phase policy.
func Expand(sets, workSeconds, restSeconds int) []model.Phase {
	if sets < 1 {
		sets = 1
	}
	workSeconds = model.ClampSeconds(workSeconds)
	restSeconds = model.ClampSeconds(restSeconds)

	phases := make([]model.Phase, 0, sets*2-1)
	for set := 1; set <= sets; set++ {
		phases = append(phases, model.NewPhase(WorkName, workSeconds))
		if set < sets {
			phases = append(phases, model.NewPhase(RestName, restSeconds))
		}
	}
	return phases
}

// NewPreset wraps Expand into an unsaved preset.
func NewPreset(sets, workSeconds, restSeconds int) model.Preset {
	return model.NewPreset(PresetName, Expand(sets, workSeconds, restSeconds))
}
