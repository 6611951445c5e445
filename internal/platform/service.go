package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDirEnv overrides the configuration directory when set.
const ConfigDirEnv = "INTERVALTIMER_CONFIG_DIR"

// ErrUnsupported is returned by helpers the current OS cannot provide.
var ErrUnsupported = errors.New("not supported on this platform")

// Service defines OS-specific helpers needed by the application.
type Service interface {
	// ConfigDir returns the directory holding settings and presets for appName.
	ConfigDir(appName string) (string, error)
	// RegisterLinkHandler makes the OS open scheme:// links with execPath.
	RegisterLinkHandler(scheme, execPath string) error
	UnregisterLinkHandler(scheme string) error
}

type platformService struct{}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

func (service *platformService) ConfigDir(appName string) (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}

	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return filepath.Join(configDir, appName), nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return filepath.Join(fallbackConfigDir(homeDir), appName), nil
}
