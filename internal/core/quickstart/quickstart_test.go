package quickstart

import (
	"testing"

	"intervaltimer/internal/core/model"
)

func TestExpandThreeSets(t *testing.T) {
	phases := Expand(3, 30, 10)
	want := []struct {
		name     string
		duration int
	}{
		{WorkName, 30}, {RestName, 10}, {WorkName, 30}, {RestName, 10}, {WorkName, 30},
	}
	if len(phases) != len(want) {
		t.Fatalf("phase count: got %d, want %d", len(phases), len(want))
	}
	for i, phase := range phases {
		if phase.Name != want[i].name || phase.DurationSeconds != want[i].duration {
			t.Fatalf("phase %d: got (%s,%d), want (%s,%d)", i, phase.Name, phase.DurationSeconds, want[i].name, want[i].duration)
		}
	}
	if total := model.SumDurations(phases); total != 110 {
		t.Fatalf("total: got %d, want 110", total)
	}
}

func TestExpandSingleSetHasNoTrailingRest(t *testing.T) {
	phases := Expand(1, 45, 15)
	if len(phases) != 1 {
		t.Fatalf("phase count: got %d, want 1", len(phases))
	}
	if phases[0].Name != WorkName {
		t.Fatalf("phase name: got %q, want %q", phases[0].Name, WorkName)
	}
}

func TestExpandCoercesInput(t *testing.T) {
	phases := Expand(0, 200*60, -4)
	if len(phases) != 1 {
		t.Fatalf("zero sets: got %d phases, want 1", len(phases))
	}
	if phases[0].DurationSeconds != model.MaxPhaseSeconds {
		t.Fatalf("work clamp: got %d, want %d", phases[0].DurationSeconds, model.MaxPhaseSeconds)
	}

	phases = Expand(2, 10, -4)
	if phases[1].DurationSeconds != 0 {
		t.Fatalf("rest clamp: got %d, want 0", phases[1].DurationSeconds)
	}
}

func TestExpandAssignsDistinctIDs(t *testing.T) {
	seen := map[string]bool{}
	for _, phase := range Expand(4, 20, 5) {
		if seen[phase.ID] {
			t.Fatalf("duplicate phase id %s", phase.ID)
		}
		seen[phase.ID] = true
	}
}

func TestNewPreset(t *testing.T) {
	preset := NewPreset(3, 30, 10)
	if preset.Name != PresetName {
		t.Fatalf("name: got %q", preset.Name)
	}
	if preset.TotalDurationSeconds != 110 {
		t.Fatalf("total: got %d, want 110", preset.TotalDurationSeconds)
	}
	if err := preset.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
