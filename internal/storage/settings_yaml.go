package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/logging"
	"intervaltimer/internal/ui/preferences"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	QuickSets          int    `yaml:"quick_sets"`
	QuickWorkSeconds   int    `yaml:"quick_work_seconds"`
	QuickRestSeconds   *int   `yaml:"quick_rest_seconds"`
	KeepAwake          *bool  `yaml:"keep_awake"`
	Notifications      *bool  `yaml:"notifications"`
	CountdownSeconds   *int   `yaml:"countdown_seconds"`
	RegisterLinks      *bool  `yaml:"register_links"`
	StoreBackend       string `yaml:"store_backend"`
	LogLevel           string `yaml:"log_level"`
	TickIntervalMillis int    `yaml:"tick_interval_ms"`
}

// LoadSettings reads user preferences from dir/settings.yaml.
// If the file does not exist, default settings are returned.
func LoadSettings(dir string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(filepath.Join(dir, settingsFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to dir/settings.yaml.
func SaveSettings(dir string, settings preferences.Settings) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	rest := int(settings.QuickRest / time.Second)
	countdown := settings.CountdownSeconds
	fileData := yamlSettings{
		QuickSets:          settings.QuickSets,
		QuickWorkSeconds:   int(settings.QuickWork / time.Second),
		QuickRestSeconds:   &rest,
		KeepAwake:          &settings.KeepAwake,
		Notifications:      &settings.Notifications,
		CountdownSeconds:   &countdown,
		RegisterLinks:      &settings.RegisterLinks,
		StoreBackend:       settings.StoreBackend,
		LogLevel:           settings.LogLevel,
		TickIntervalMillis: int(settings.TickInterval / time.Millisecond),
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, settingsFileName), serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.QuickSets >= 1 && fileData.QuickSets <= preferences.MaxQuickSets {
		settings.QuickSets = fileData.QuickSets
	}
	if fileData.QuickWorkSeconds > 0 && fileData.QuickWorkSeconds <= model.MaxPhaseSeconds {
		settings.QuickWork = time.Duration(fileData.QuickWorkSeconds) * time.Second
	}
	if rest := fileData.QuickRestSeconds; rest != nil && *rest >= 0 && *rest <= model.MaxPhaseSeconds {
		settings.QuickRest = time.Duration(*rest) * time.Second
	}
	if count := fileData.CountdownSeconds; count != nil && *count >= 0 && *count <= preferences.MaxCountdownSeconds {
		settings.CountdownSeconds = *count
	}

	switch fileData.StoreBackend {
	case preferences.BackendYAML, preferences.BackendSQLite:
		settings.StoreBackend = fileData.StoreBackend
	}
	if _, err := logging.ParseLevel(fileData.LogLevel); err == nil && fileData.LogLevel != "" {
		settings.LogLevel = fileData.LogLevel
	}
	if millis := fileData.TickIntervalMillis; millis >= 50 && millis <= 1000 {
		settings.TickInterval = time.Duration(millis) * time.Millisecond
	}

	if fileData.KeepAwake != nil {
		settings.KeepAwake = *fileData.KeepAwake
	}
	if fileData.Notifications != nil {
		settings.Notifications = *fileData.Notifications
	}
	if fileData.RegisterLinks != nil {
		settings.RegisterLinks = *fileData.RegisterLinks
	}
}
