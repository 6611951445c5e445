//go:build !linux && !darwin && !windows

package platform

import (
	"fmt"
	"path/filepath"
)

func (service *platformService) RegisterLinkHandler(scheme, execPath string) error {
	return fmt.Errorf("register link handler %q: %w", scheme, ErrUnsupported)
}

func (service *platformService) UnregisterLinkHandler(scheme string) error {
	return fmt.Errorf("unregister link handler %q: %w", scheme, ErrUnsupported)
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}
