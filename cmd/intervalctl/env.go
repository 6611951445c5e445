package main

import (
	"fmt"
	"os"

	"intervaltimer/internal/library"
	"intervaltimer/internal/logging"
	"intervaltimer/internal/platform"
	"intervaltimer/internal/storage"
	"intervaltimer/internal/ui/preferences"
)

const appName = "IntervalTimer"

// cliEnv holds the flags shared by every command and the resources opened
// from them.
type cliEnv struct {
	configDir string
	logLevel  string
	backend   string

	settings preferences.Settings
	logger   *logging.Logger
	store    storage.PresetStore
	library  *library.Service
}

// open resolves settings and opens the preset store. Callers must close.
func (env *cliEnv) open() error {
	dir := env.configDir
	if dir == "" {
		resolved, err := platform.NewService().ConfigDir(appName)
		if err != nil {
			return err
		}
		dir = resolved
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	settings, err := storage.LoadSettings(dir)
	if err != nil {
		return err
	}
	if env.logLevel != "" {
		settings.LogLevel = env.logLevel
	}
	if env.backend != "" {
		settings.StoreBackend = env.backend
	}

	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.Stderr(level)

	store, err := storage.Open(settings.StoreBackend, dir)
	if err != nil {
		return err
	}

	env.configDir = dir
	env.settings = settings
	env.logger = logger
	env.store = store
	env.library = library.New(store, logger)
	logger.Debugf("using %s store in %s", settings.StoreBackend, dir)
	return nil
}

func (env *cliEnv) close() {
	if env.store != nil {
		if err := env.store.Close(); err != nil {
			env.logger.Errorf("close store: %v", err)
		}
		env.store = nil
	}
}

// withLibrary opens the environment around fn.
func (env *cliEnv) withLibrary(fn func(*library.Service) error) error {
	if err := env.open(); err != nil {
		return err
	}
	defer env.close()
	return fn(env.library)
}
