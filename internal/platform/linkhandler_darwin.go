//go:build darwin

package platform

import (
	"fmt"
	"path/filepath"
)

// URL schemes on macOS come from CFBundleURLTypes in the bundle's Info.plist
// and cannot be claimed at runtime.
func (service *platformService) RegisterLinkHandler(scheme, execPath string) error {
	return fmt.Errorf("register link handler %q: %w", scheme, ErrUnsupported)
}

func (service *platformService) UnregisterLinkHandler(scheme string) error {
	return fmt.Errorf("unregister link handler %q: %w", scheme, ErrUnsupported)
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "Library", "Application Support")
}
