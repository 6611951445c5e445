package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"intervaltimer/internal/core/intervals"
	"intervaltimer/internal/core/model"
	"intervaltimer/internal/cues"
	"intervaltimer/internal/logging"
)

func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config-dir", dir, "--log-level", "silent"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := execute(t, dir, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func createdID(t *testing.T, out string) string {
	t.Helper()
	first, _, _ := strings.Cut(out, "\n")
	id, ok := strings.CutPrefix(first, "created ")
	if !ok {
		t.Fatalf("unexpected output: %q", out)
	}
	return id
}

func TestPresetLifecycle(t *testing.T) {
	for _, backend := range []string{"yaml", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			store := []string{"--store", backend}

			out := mustExecute(t, dir, append(store, "new", "--name", "Tabata", "--phase", "Work=0:20", "--phase", "Rest=10")...)
			id := createdID(t, out)
			if !strings.Contains(out, "total 00:30") {
				t.Fatalf("expected total in output: %q", out)
			}

			out = mustExecute(t, dir, append(store, "list")...)
			if !strings.Contains(out, "Tabata") || !strings.Contains(out, id[:8]) {
				t.Fatalf("list missing preset: %q", out)
			}

			out = mustExecute(t, dir, append(store, "show", "Tabata")...)
			if !strings.Contains(out, "Work") || !strings.Contains(out, "00:10") {
				t.Fatalf("show output: %q", out)
			}

			out = mustExecute(t, dir, append(store, "duplicate", id[:8])...)
			if !strings.Contains(out, "Tabata1") {
				t.Fatalf("duplicate output: %q", out)
			}

			link := strings.TrimSpace(mustExecute(t, dir, append(store, "share", id)...))
			if !strings.HasPrefix(link, "intervaltimer://share?preset=") {
				t.Fatalf("share link: %q", link)
			}

			mustExecute(t, dir, append(store, "delete", id)...)
			out = mustExecute(t, dir, append(store, "import", link)...)
			if !strings.HasPrefix(out, "added "+id) {
				t.Fatalf("import output: %q", out)
			}
			out = mustExecute(t, dir, append(store, "import", link)...)
			if !strings.HasPrefix(out, "replaced "+id) {
				t.Fatalf("reimport output: %q", out)
			}

			out = mustExecute(t, dir, append(store, "list")...)
			if strings.Count(out, "Tabata ") != 1 {
				t.Fatalf("expected one original after reimport: %q", out)
			}
		})
	}
}

func TestQuickBuildsAlternatingPhases(t *testing.T) {
	dir := t.TempDir()
	out := mustExecute(t, dir, "quick", "--sets", "2", "--work", "0:30", "--rest", "15")
	if strings.Count(out, "Work") != 2 || strings.Count(out, "Rest") != 1 {
		t.Fatalf("unexpected phases: %q", out)
	}
	if !strings.Contains(out, "total 01:15") {
		t.Fatalf("unexpected total: %q", out)
	}

	out = mustExecute(t, dir, "list")
	if !strings.Contains(out, "no presets saved") {
		t.Fatalf("quick without --save stored a preset: %q", out)
	}

	mustExecute(t, dir, "quick", "--sets", "1", "--work", "5", "--save")
	out = mustExecute(t, dir, "list")
	if !strings.Contains(out, "Quick Start") {
		t.Fatalf("saved quick preset missing: %q", out)
	}
}

func TestRunQuickCompletes(t *testing.T) {
	dir := t.TempDir()
	out := mustExecute(t, dir, "run", "quick", "--sets", "1", "--work", "1", "--tick", "50ms", "--no-keep-awake", "--countdown", "0")
	if !strings.Contains(out, "WORK") {
		t.Fatalf("missing phase cue: %q", out)
	}
	if !strings.Contains(out, "Workout complete") {
		t.Fatalf("missing completion cue: %q", out)
	}
	if !strings.Contains(out, "\a\a") {
		t.Fatalf("missing completion bell: %q", out)
	}
}

func TestRunWorkoutFinishesLongZeroLengthBurst(t *testing.T) {
	phases := make([]model.Phase, 70)
	for i := range phases {
		phases[i] = model.NewPhase("Z", 0)
	}
	preset := model.NewPreset("Burst", phases)

	var out bytes.Buffer
	env := &cliEnv{logger: logging.Discard()}
	engine := intervals.New(intervals.Config{TickInterval: 50 * time.Millisecond})
	director := cues.NewDirector(cues.NewBellSink(&out, styleCue), 0, env.logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := runWorkout(ctx, engine, director, preset, env); err != nil {
		t.Fatalf("runWorkout: %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("runWorkout returned only because the context expired")
	}
	if !strings.Contains(out.String(), "Workout complete") {
		t.Fatalf("missing completion cue: %q", out.String())
	}
	if got := strings.Count(out.String(), "Z ("); got != 70 {
		t.Fatalf("phase cues = %d, want 70", got)
	}
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "new without phases", args: []string{"new", "--name", "x"}, wantErr: "required flag --phase not set"},
		{name: "bad phase", args: []string{"new", "--phase", "Work"}, wantErr: "expected NAME=MM:SS"},
		{name: "foreign link", args: []string{"import", "https://example.com/?preset=abc"}, wantErr: "not an intervaltimer share link"},
		{name: "malformed link", args: []string{"import", "intervaltimer://share?preset=@@@"}, wantErr: "payload"},
		{name: "unknown preset", args: []string{"show", "missing"}, wantErr: "not found"},
		{name: "sets out of range", args: []string{"quick", "--sets", "500"}, wantErr: "--sets must be between"},
		{name: "unknown store", args: []string{"--store", "csv", "list"}, wantErr: "csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, t.TempDir(), tt.args...)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParsePhaseSpecs(t *testing.T) {
	phases, err := parsePhaseSpecs([]string{"Warm up=1:00", " Sprint =45"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(phases) != 2 || phases[0].DurationSeconds != 60 || phases[1].Name != "Sprint" || phases[1].DurationSeconds != 45 {
		t.Fatalf("unexpected phases: %+v", phases)
	}
	if phases[0].ID == "" || phases[0].ID == phases[1].ID {
		t.Fatalf("expected distinct ids: %+v", phases)
	}
}
