package model

import (
	"fmt"

	"github.com/google/uuid"
)

// MaxPhaseSeconds caps a single phase at 99:59.
const MaxPhaseSeconds = 99*60 + 59

// Phase is a single named, timed interval.
type Phase struct {
	ID              string
	Name            string
	DurationSeconds int
}

// NewPhase creates a phase with a fresh identifier.
func NewPhase(name string, durationSeconds int) Phase {
	return Phase{
		ID:              uuid.NewString(),
		Name:            name,
		DurationSeconds: durationSeconds,
	}
}

// Validate reports whether the phase satisfies the duration policy.
func (phase Phase) Validate() error {
	if phase.ID == "" {
		return fmt.Errorf("phase %q: missing id", phase.Name)
	}
	if phase.DurationSeconds < 0 {
		return fmt.Errorf("phase %q: negative duration %d", phase.Name, phase.DurationSeconds)
	}
	if phase.DurationSeconds > MaxPhaseSeconds {
		return fmt.Errorf("phase %q: duration %d exceeds %d", phase.Name, phase.DurationSeconds, MaxPhaseSeconds)
	}
	return nil
}

// ClampDuration converts minutes and seconds into a duration within policy.
func ClampDuration(minutes, seconds int) int {
	if minutes < 0 {
		minutes = 0
	}
	if seconds < 0 {
		seconds = 0
	}
	total := minutes*60 + seconds
	if total > MaxPhaseSeconds {
		return MaxPhaseSeconds
	}
	return total
}

// ClampSeconds bounds a raw second count to [0, MaxPhaseSeconds].
func ClampSeconds(seconds int) int {
	return ClampDuration(0, seconds)
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
