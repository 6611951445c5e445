package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/cues"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	phaseStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	completeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// shortID keeps listings narrow; Resolve accepts id prefixes.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printPresetLine(out io.Writer, preset model.Preset) {
	fmt.Fprintf(out, "%s  %s  %d phases  %s\n",
		idStyle.Render(shortID(preset.ID)),
		titleStyle.Render(preset.DisplayName()),
		len(preset.Phases),
		model.FormatClock(preset.TotalDurationSeconds),
	)
}

func printPreset(out io.Writer, preset model.Preset) {
	fmt.Fprintf(out, "%s %s\n", titleStyle.Render(preset.DisplayName()), idStyle.Render(preset.ID))
	for index, phase := range preset.Phases {
		name := phase.Name
		if name == "" {
			name = "Phase"
		}
		fmt.Fprintf(out, "  %2d. %-20s %s\n", index+1, name, model.FormatClock(phase.DurationSeconds))
	}
	fmt.Fprintf(out, "  total %s\n", model.FormatClock(preset.TotalDurationSeconds))
}

// styleCue renders a cue line for the terminal bell sink.
func styleCue(cue cues.Cue) string {
	switch cue.Kind {
	case cues.CuePhaseStart:
		name := cue.Phase.Name
		if name == "" {
			name = "Phase"
		}
		return fmt.Sprintf("%s %s (%d/%d, %s)",
			phaseStyle.Render("▶"),
			phaseStyle.Render(strings.ToUpper(name)),
			cue.PhaseIndex+1,
			cue.PhaseCount,
			model.FormatClock(cue.Phase.DurationSeconds),
		)
	case cues.CueCountdown:
		return countStyle.Render(fmt.Sprintf("  %d...", cue.Seconds))
	case cues.CueComplete:
		return completeStyle.Render("Workout complete")
	default:
		return cue.String()
	}
}
