package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/ui/preferences"
)

var backends = []string{preferences.BackendYAML, preferences.BackendSQLite}

func openTestStore(t *testing.T, backend, dir string) PresetStore {
	t.Helper()
	store, err := Open(backend, dir)
	if err != nil {
		t.Fatalf("Open(%q, %q): %v", backend, dir, err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func tabata() model.Preset {
	return model.NewPreset("Tabata", []model.Phase{
		model.NewPhase("Work", 20),
		model.NewPhase("Rest", 10),
		model.NewPhase("Work", 20),
	})
}

func forEachBackend(t *testing.T, fn func(t *testing.T, backend string)) {
	for _, backend := range backends {
		backend := backend
		t.Run(backend, func(t *testing.T) { fn(t, backend) })
	}
}

func TestAddGetAll(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend string) {
		store := openTestStore(t, backend, t.TempDir())

		first := tabata()
		second := model.NewPreset("", []model.Phase{model.NewPhase("Hold", 0)})
		for _, preset := range []model.Preset{first, second} {
			if err := store.Add(preset); err != nil {
				t.Fatalf("Add: %v", err)
			}
		}

		got, err := store.Get(first.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Name != "Tabata" || got.TotalDurationSeconds != 50 || len(got.Phases) != 3 {
			t.Fatalf("unexpected preset %+v", got)
		}
		for i := range first.Phases {
			if got.Phases[i] != first.Phases[i] {
				t.Fatalf("phase %d: got %+v want %+v", i, got.Phases[i], first.Phases[i])
			}
		}

		all, err := store.All()
		if err != nil {
			t.Fatalf("All: %v", err)
		}
		if len(all) != 2 || all[0].ID != first.ID || all[1].ID != second.ID {
			t.Fatalf("All returned wrong order: %+v", all)
		}
	})
}

func TestAddRejectsDuplicateAndInvalid(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend string) {
		store := openTestStore(t, backend, t.TempDir())
		preset := tabata()
		if err := store.Add(preset); err != nil {
			t.Fatalf("Add: %v", err)
		}
		if err := store.Add(preset); !errors.Is(err, ErrDuplicateID) {
			t.Fatalf("expected ErrDuplicateID, got %v", err)
		}

		empty := model.Preset{ID: "empty", Name: "Nothing"}
		err := store.Add(empty)
		if !errors.Is(err, model.ErrNoPhases) {
			t.Fatalf("expected ErrNoPhases, got %v", err)
		}
		var opErr *OpError
		if !errors.As(err, &opErr) || opErr.Op != "add" || opErr.ID != "empty" {
			t.Fatalf("expected *OpError for add, got %#v", err)
		}
	})
}

func TestUpdateReplacesNameAndPhases(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend string) {
		store := openTestStore(t, backend, t.TempDir())
		preset := tabata()
		if err := store.Add(preset); err != nil {
			t.Fatalf("Add: %v", err)
		}

		phases := []model.Phase{model.NewPhase("Plank", 60)}
		updated, err := store.Update(preset.ID, "Core", phases)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.TotalDurationSeconds != 60 {
			t.Fatalf("total = %d, want 60", updated.TotalDurationSeconds)
		}

		got, err := store.Get(preset.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Name != "Core" || len(got.Phases) != 1 || got.Phases[0] != phases[0] {
			t.Fatalf("update not persisted: %+v", got)
		}

		if _, err := store.Update("missing", "x", phases); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := store.Update(preset.ID, "x", nil); !errors.Is(err, model.ErrNoPhases) {
			t.Fatalf("expected ErrNoPhases, got %v", err)
		}
	})
}

func TestRemove(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend string) {
		store := openTestStore(t, backend, t.TempDir())
		preset := tabata()
		if err := store.Add(preset); err != nil {
			t.Fatalf("Add: %v", err)
		}
		if err := store.Remove(preset.ID); err != nil {
			t.Fatalf("Remove: %v", err)
		}
		if _, err := store.Get(preset.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound after remove, got %v", err)
		}
		if err := store.Remove(preset.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second remove, got %v", err)
		}
	})
}

func TestPersistsAcrossReopen(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend string) {
		dir := t.TempDir()
		store, err := Open(backend, dir)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		preset := tabata()
		if err := store.Add(preset); err != nil {
			t.Fatalf("Add: %v", err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		reopened := openTestStore(t, backend, dir)
		got, err := reopened.Get(preset.ID)
		if err != nil {
			t.Fatalf("Get after reopen: %v", err)
		}
		if got.TotalDurationSeconds != preset.TotalDurationSeconds {
			t.Fatalf("total = %d, want %d", got.TotalDurationSeconds, preset.TotalDurationSeconds)
		}
	})
}

func TestReturnedPresetsAreCopies(t *testing.T) {
	forEachBackend(t, func(t *testing.T, backend string) {
		store := openTestStore(t, backend, t.TempDir())
		preset := tabata()
		if err := store.Add(preset); err != nil {
			t.Fatalf("Add: %v", err)
		}
		got, _ := store.Get(preset.ID)
		got.Phases[0].Name = "mutated"

		again, _ := store.Get(preset.ID)
		if again.Phases[0].Name != "Work" {
			t.Fatalf("store shares phase storage with callers")
		}
	})
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("postgres", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestYAMLStoreRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, yamlPresetsFile)
	content := []byte(`version: 1
presets:
  - id: a
    name: Broken
    phases:
      - id: p
        name: Work
        duration_seconds: -4
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewYAMLStore(path); err == nil {
		t.Fatal("expected error for negative duration")
	}
}

func TestYAMLStoreClosed(t *testing.T) {
	store, err := NewYAMLStore(filepath.Join(t.TempDir(), yamlPresetsFile))
	if err != nil {
		t.Fatal(err)
	}
	store.Close()
	if _, err := store.All(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestRetryOp(t *testing.T) {
	cfg := retryConfig{maxRetries: 2, baseDelay: 1, maxDelay: 1}

	calls := 0
	err := retryOp(cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("retryOp = %v after %d calls", err, calls)
	}

	calls = 0
	err = retryOp(cfg, func() error {
		calls++
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) || calls != 1 {
		t.Fatalf("non-transient error retried: %v after %d calls", err, calls)
	}
}
