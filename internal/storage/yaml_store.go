package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"intervaltimer/internal/core/model"
)

const yamlStoreVersion = 1

type yamlPhase struct {
	ID              string `yaml:"id"`
	Name            string `yaml:"name"`
	DurationSeconds int    `yaml:"duration_seconds"`
}

type yamlPreset struct {
	ID     string      `yaml:"id"`
	Name   string      `yaml:"name"`
	Phases []yamlPhase `yaml:"phases"`
}

type yamlPresetFile struct {
	Version int          `yaml:"version"`
	Presets []yamlPreset `yaml:"presets"`
}

// YAMLStore keeps presets in a single YAML document, rewritten on every change.
type YAMLStore struct {
	mu      sync.Mutex
	path    string
	presets []model.Preset
	closed  bool
}

// NewYAMLStore loads path, or starts empty when it does not exist yet.
func NewYAMLStore(path string) (*YAMLStore, error) {
	store := &YAMLStore{path: path}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("read presets file: %w", err)
	}

	var fileData yamlPresetFile
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return nil, fmt.Errorf("parse presets yaml: %w", err)
	}
	if fileData.Version > yamlStoreVersion {
		return nil, fmt.Errorf("presets file version %d is newer than supported %d", fileData.Version, yamlStoreVersion)
	}

	for _, entry := range fileData.Presets {
		phases := make([]model.Phase, 0, len(entry.Phases))
		for _, phase := range entry.Phases {
			phases = append(phases, model.Phase{ID: phase.ID, Name: phase.Name, DurationSeconds: phase.DurationSeconds})
		}
		preset, err := rebuild(entry.ID, entry.Name, phases)
		if err != nil {
			return nil, fmt.Errorf("load presets file: %w", err)
		}
		store.presets = append(store.presets, preset)
	}
	return store, nil
}

func (store *YAMLStore) All() ([]model.Preset, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.closed {
		return nil, wrapOp("list", "", ErrClosed)
	}
	presets := make([]model.Preset, 0, len(store.presets))
	for _, preset := range store.presets {
		presets = append(presets, preset.Clone())
	}
	return presets, nil
}

func (store *YAMLStore) Get(id string) (model.Preset, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.closed {
		return model.Preset{}, wrapOp("get", id, ErrClosed)
	}
	index := store.indexLocked(id)
	if index < 0 {
		return model.Preset{}, wrapOp("get", id, ErrNotFound)
	}
	return store.presets[index].Clone(), nil
}

func (store *YAMLStore) Add(preset model.Preset) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.closed {
		return wrapOp("add", preset.ID, ErrClosed)
	}
	if err := checkNewPreset(preset); err != nil {
		return wrapOp("add", preset.ID, err)
	}
	if store.indexLocked(preset.ID) >= 0 {
		return wrapOp("add", preset.ID, ErrDuplicateID)
	}

	next := append(store.snapshotLocked(), preset.Clone())
	if err := store.writeLocked(next); err != nil {
		return wrapOp("add", preset.ID, err)
	}
	store.presets = next
	return nil
}

func (store *YAMLStore) Update(id, name string, phases []model.Phase) (model.Preset, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.closed {
		return model.Preset{}, wrapOp("update", id, ErrClosed)
	}
	index := store.indexLocked(id)
	if index < 0 {
		return model.Preset{}, wrapOp("update", id, ErrNotFound)
	}
	updated, err := rebuild(id, name, phases)
	if err != nil {
		return model.Preset{}, wrapOp("update", id, err)
	}

	next := store.snapshotLocked()
	next[index] = updated
	if err := store.writeLocked(next); err != nil {
		return model.Preset{}, wrapOp("update", id, err)
	}
	store.presets = next
	return updated.Clone(), nil
}

func (store *YAMLStore) Remove(id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.closed {
		return wrapOp("remove", id, ErrClosed)
	}
	index := store.indexLocked(id)
	if index < 0 {
		return wrapOp("remove", id, ErrNotFound)
	}

	next := store.snapshotLocked()
	next = append(next[:index], next[index+1:]...)
	if err := store.writeLocked(next); err != nil {
		return wrapOp("remove", id, err)
	}
	store.presets = next
	return nil
}

func (store *YAMLStore) Close() error {
	store.mu.Lock()
	store.closed = true
	store.mu.Unlock()
	return nil
}

func (store *YAMLStore) indexLocked(id string) int {
	for index, preset := range store.presets {
		if preset.ID == id {
			return index
		}
	}
	return -1
}

func (store *YAMLStore) snapshotLocked() []model.Preset {
	return append([]model.Preset(nil), store.presets...)
}

// writeLocked replaces the file through a temporary sibling so a crash never
// leaves a truncated document behind.
func (store *YAMLStore) writeLocked(presets []model.Preset) error {
	fileData := yamlPresetFile{Version: yamlStoreVersion, Presets: make([]yamlPreset, 0, len(presets))}
	for _, preset := range presets {
		entry := yamlPreset{ID: preset.ID, Name: preset.Name, Phases: make([]yamlPhase, 0, len(preset.Phases))}
		for _, phase := range preset.Phases {
			entry.Phases = append(entry.Phases, yamlPhase{ID: phase.ID, Name: phase.Name, DurationSeconds: phase.DurationSeconds})
		}
		fileData.Presets = append(fileData.Presets, entry)
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal presets yaml: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create presets directory: %w", err)
	}
	temp, err := os.CreateTemp(filepath.Dir(store.path), ".presets-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp presets file: %w", err)
	}
	tempPath := temp.Name()
	if _, err := temp.Write(serialized); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return fmt.Errorf("write presets file: %w", err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("write presets file: %w", err)
	}
	if err := os.Rename(tempPath, store.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("replace presets file: %w", err)
	}
	return nil
}
