//go:build linux

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

func (service *platformService) RegisterLinkHandler(scheme, execPath string) error {
	if scheme == "" {
		return fmt.Errorf("register link handler: scheme is empty")
	}
	if execPath == "" {
		return fmt.Errorf("register link handler: exec path is empty")
	}

	applicationsDir, err := applicationsDir()
	if err != nil {
		return fmt.Errorf("register link handler: %w", err)
	}
	if err := os.MkdirAll(applicationsDir, 0o755); err != nil {
		return fmt.Errorf("register link handler: create applications dir: %w", err)
	}

	entryName := desktopFileName(scheme)
	entryPath := filepath.Join(applicationsDir, entryName)
	if err := os.WriteFile(entryPath, []byte(buildDesktopEntry(scheme, execPath)), 0o644); err != nil {
		return fmt.Errorf("register link handler: write desktop entry: %w", err)
	}

	// xdg-mime is optional; desktops that lack it pick the entry up from MimeType.
	if xdgMime, err := exec.LookPath("xdg-mime"); err == nil {
		output, err := exec.Command(xdgMime, "default", entryName, "x-scheme-handler/"+scheme).CombinedOutput()
		if err != nil {
			return fmt.Errorf("register link handler: xdg-mime failed: %w: %s", err, strings.TrimSpace(string(output)))
		}
	}

	return nil
}

func (service *platformService) UnregisterLinkHandler(scheme string) error {
	if scheme == "" {
		return fmt.Errorf("unregister link handler: scheme is empty")
	}

	applicationsDir, err := applicationsDir()
	if err != nil {
		return fmt.Errorf("unregister link handler: %w", err)
	}

	entryPath := filepath.Join(applicationsDir, desktopFileName(scheme))
	if err := os.Remove(entryPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unregister link handler: remove desktop entry: %w", err)
	}

	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

func applicationsDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "applications"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "applications"), nil
}

func desktopFileName(scheme string) string {
	name := strings.ToLower(strings.TrimSpace(scheme))
	name = strings.ReplaceAll(name, " ", "-")
	return name + "-link.desktop"
}

func buildDesktopEntry(scheme, execPath string) string {
	execLine := execPath
	if strings.Contains(execLine, " ") && !strings.HasPrefix(execLine, `"`) {
		execLine = `"` + execLine + `"`
	}

	return fmt.Sprintf(
		`[Desktop Entry]
Type=Application
Name=IntervalTimer
Exec=%s %%u
MimeType=x-scheme-handler/%s;
NoDisplay=true
Terminal=false
`,
		execLine,
		scheme,
	)
}
