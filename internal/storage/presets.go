package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/ui/preferences"
)

var (
	ErrNotFound    = errors.New("preset not found")
	ErrDuplicateID = errors.New("preset id already exists")
	ErrClosed      = errors.New("store is closed")
)

const (
	yamlPresetsFile   = "presets.yaml"
	sqlitePresetsFile = "presets.db"
)

// PresetStore persists presets in insertion order.
type PresetStore interface {
	// All returns every preset, oldest first.
	All() ([]model.Preset, error)
	Get(id string) (model.Preset, error)
	// Add inserts a new preset. The id must not be in use.
	Add(preset model.Preset) error
	// Update replaces the name and phases of an existing preset and returns it
	// with the total recomputed.
	Update(id, name string, phases []model.Phase) (model.Preset, error)
	Remove(id string) error
	Close() error
}

var (
	_ PresetStore = (*YAMLStore)(nil)
	_ PresetStore = (*SQLiteStore)(nil)
)

// OpError records which store operation failed and on which preset.
type OpError struct {
	Op  string
	ID  string
	Err error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.ID != "" {
		return fmt.Sprintf("%s preset %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s presets: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func wrapOp(op, id string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, ID: id, Err: err}
}

// Open returns the preset store selected by backend, rooted at dir.
func Open(backend, dir string) (PresetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	switch backend {
	case "", preferences.BackendYAML:
		return NewYAMLStore(filepath.Join(dir, yamlPresetsFile))
	case preferences.BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, sqlitePresetsFile))
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func checkNewPreset(preset model.Preset) error {
	if err := preset.Validate(); err != nil {
		return err
	}
	return nil
}

func rebuild(id, name string, phases []model.Phase) (model.Preset, error) {
	preset := model.Preset{ID: id, Name: name}
	preset.SetPhases(phases)
	if err := preset.Validate(); err != nil {
		return model.Preset{}, err
	}
	return preset, nil
}
