package preferences

import (
	"time"

	"intervaltimer/internal/core/model"
	"intervaltimer/internal/core/quickstart"
)

const (
	BackendYAML   = "yaml"
	BackendSQLite = "sqlite"

	MaxQuickSets        = 99
	MaxCountdownSeconds = 10
)

// Settings defines editable user preferences.
type Settings struct {
	QuickSets int
	QuickWork time.Duration
	QuickRest time.Duration

	KeepAwake        bool
	Notifications    bool
	CountdownSeconds int
	RegisterLinks    bool

	StoreBackend string
	LogLevel     string
	TickInterval time.Duration
}

// DefaultSettings returns default settings for IntervalTimer.
func DefaultSettings() Settings {
	return Settings{
		QuickSets:        8,
		QuickWork:        20 * time.Second,
		QuickRest:        10 * time.Second,
		KeepAwake:        true,
		Notifications:    true,
		CountdownSeconds: 3,
		RegisterLinks:    true,
		StoreBackend:     BackendYAML,
		LogLevel:         "info",
		TickInterval:     time.Second,
	}
}

// QuickStartPreset expands the quick-start defaults into a runnable preset.
func (settings Settings) QuickStartPreset() model.Preset {
	return quickstart.NewPreset(
		settings.QuickSets,
		int(settings.QuickWork/time.Second),
		int(settings.QuickRest/time.Second),
	)
}
