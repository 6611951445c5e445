// Package library is the preset workflow shared by the desktop app and the CLI:
// creation, renaming, duplication, quick start and share-link import/export.
package library

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/core/quickstart"
	"intervaltimer/internal/logging"
	"intervaltimer/internal/share"
	"intervaltimer/internal/storage"
)

// ErrAmbiguous is returned by Resolve when a reference matches several presets.
var ErrAmbiguous = errors.New("reference matches more than one preset")

// ImportOutcome tells the caller what ImportLink did.
type ImportOutcome int

const (
	// ImportIgnored means the URI is not a share link.
	ImportIgnored ImportOutcome = iota
	ImportAdded
	ImportReplaced
)

func (outcome ImportOutcome) String() string {
	switch outcome {
	case ImportAdded:
		return "added"
	case ImportReplaced:
		return "replaced"
	default:
		return "ignored"
	}
}

type ImportResult struct {
	Outcome ImportOutcome
	Preset  model.Preset
}

// Service applies naming and import rules on top of a preset store.
type Service struct {
	mu     sync.Mutex
	store  storage.PresetStore
	logger *logging.Logger
}

func New(store storage.PresetStore, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{store: store, logger: logger}
}

func (service *Service) List() ([]model.Preset, error) {
	return service.store.All()
}

func (service *Service) Get(id string) (model.Preset, error) {
	return service.store.Get(id)
}

// Resolve finds a preset by exact id, unique id prefix, or exact name.
func (service *Service) Resolve(ref string) (model.Preset, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Preset{}, fmt.Errorf("resolve preset: empty reference")
	}
	preset, err := service.store.Get(ref)
	if err == nil {
		return preset, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return model.Preset{}, err
	}

	presets, err := service.store.All()
	if err != nil {
		return model.Preset{}, err
	}
	var matches []model.Preset
	for _, candidate := range presets {
		if strings.HasPrefix(candidate.ID, ref) {
			matches = append(matches, candidate)
		}
	}
	if len(matches) == 0 {
		for _, candidate := range presets {
			if candidate.Name == ref {
				matches = append(matches, candidate)
			}
		}
	}
	switch len(matches) {
	case 0:
		return model.Preset{}, fmt.Errorf("resolve preset %q: %w", ref, storage.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return model.Preset{}, fmt.Errorf("resolve preset %q: %w", ref, ErrAmbiguous)
	}
}

// Create saves a new preset. An empty name is stored as "Untitled" and phases
// are normalized the same way Update does.
func (service *Service) Create(name string, phases []model.Phase) (model.Preset, error) {
	preset := model.NewPreset(normalizeName(name), normalizePhases(phases))
	if err := service.store.Add(preset); err != nil {
		return model.Preset{}, err
	}
	service.logger.Infof("created preset %s (%s)", preset.ID, preset.Name)
	return preset, nil
}

// Update replaces the name and phases of a saved preset.
func (service *Service) Update(id, name string, phases []model.Phase) (model.Preset, error) {
	return service.store.Update(id, normalizeName(name), normalizePhases(phases))
}

// normalizePhases clamps durations to 99:59 and gives every phase an id.
func normalizePhases(phases []model.Phase) []model.Phase {
	normalized := make([]model.Phase, len(phases))
	for index, phase := range phases {
		phase.DurationSeconds = model.ClampSeconds(phase.DurationSeconds)
		if phase.ID == "" {
			phase.ID = uuid.NewString()
		}
		normalized[index] = phase
	}
	return normalized
}

func (service *Service) Rename(id, name string) (model.Preset, error) {
	preset, err := service.store.Get(id)
	if err != nil {
		return model.Preset{}, err
	}
	return service.store.Update(id, normalizeName(name), preset.Phases)
}

func (service *Service) Delete(id string) error {
	if err := service.store.Remove(id); err != nil {
		return err
	}
	service.logger.Infof("deleted preset %s", id)
	return nil
}

// Duplicate copies a preset under a new id and a name not used by any other
// preset: "Tabata" becomes "Tabata1", "Tabata1" becomes "Tabata2".
func (service *Service) Duplicate(id string) (model.Preset, error) {
	service.mu.Lock()
	defer service.mu.Unlock()

	source, err := service.store.Get(id)
	if err != nil {
		return model.Preset{}, err
	}
	presets, err := service.store.All()
	if err != nil {
		return model.Preset{}, err
	}
	taken := make(map[string]bool, len(presets))
	for _, preset := range presets {
		taken[preset.Name] = true
	}

	phases := make([]model.Phase, len(source.Phases))
	for index, phase := range source.Phases {
		phases[index] = model.NewPhase(phase.Name, phase.DurationSeconds)
	}
	duplicate := model.NewPreset(DuplicateName(source.Name, taken), phases)
	if err := service.store.Add(duplicate); err != nil {
		return model.Preset{}, err
	}
	service.logger.Infof("duplicated preset %s as %s (%s)", id, duplicate.ID, duplicate.Name)
	return duplicate, nil
}

// DuplicateName returns the first name derived from name that is not taken.
func DuplicateName(name string, taken map[string]bool) string {
	candidate := name
	counter := 1
	for taken[candidate] {
		base, number, ok := splitTrailingNumber(candidate)
		if ok {
			candidate = base + strconv.Itoa(number+1)
			continue
		}
		candidate = name + strconv.Itoa(counter)
		counter++
	}
	return candidate
}

func splitTrailingNumber(name string) (string, int, bool) {
	end := len(name)
	start := end
	for start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
		start--
	}
	if start == end {
		return name, 0, false
	}
	number, err := strconv.Atoi(name[start:end])
	if err != nil {
		return name, 0, false
	}
	return name[:start], number, true
}

// QuickStart expands sets of work and rest into a preset, saving it when save is set.
func (service *Service) QuickStart(sets, workSeconds, restSeconds int, save bool) (model.Preset, error) {
	preset := quickstart.NewPreset(sets, workSeconds, restSeconds)
	if !save {
		return preset, nil
	}
	if err := service.store.Add(preset); err != nil {
		return model.Preset{}, err
	}
	service.logger.Infof("saved quick start preset %s", preset.ID)
	return preset, nil
}

func (service *Service) ShareLink(id string) (string, error) {
	preset, err := service.store.Get(id)
	if err != nil {
		return "", err
	}
	return share.Encode(preset)
}

// ImportLink decodes a share link and stores its preset. A preset whose id is
// already saved has its name and phases replaced. URIs outside the share
// namespace are ignored without error.
func (service *Service) ImportLink(uri string) (ImportResult, error) {
	preset, err := share.Decode(uri)
	if err != nil {
		if errors.Is(err, share.ErrNotMyScheme) {
			return ImportResult{Outcome: ImportIgnored}, nil
		}
		service.logger.Errorf("import share link: %v", err)
		return ImportResult{}, err
	}
	preset.Name = normalizeName(preset.Name)

	service.mu.Lock()
	defer service.mu.Unlock()

	_, err = service.store.Get(preset.ID)
	switch {
	case err == nil:
		updated, err := service.store.Update(preset.ID, preset.Name, preset.Phases)
		if err != nil {
			return ImportResult{}, err
		}
		service.logger.Infof("replaced preset %s from share link", preset.ID)
		return ImportResult{Outcome: ImportReplaced, Preset: updated}, nil
	case errors.Is(err, storage.ErrNotFound):
		if err := service.store.Add(preset); err != nil {
			return ImportResult{}, err
		}
		service.logger.Infof("imported preset %s from share link", preset.ID)
		return ImportResult{Outcome: ImportAdded, Preset: preset}, nil
	default:
		return ImportResult{}, err
	}
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.UntitledName
	}
	return name
}
