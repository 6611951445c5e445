//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const classesKey = `HKCU\Software\Classes\`

func (service *platformService) RegisterLinkHandler(scheme, execPath string) error {
	if scheme == "" {
		return fmt.Errorf("register link handler: scheme is empty")
	}
	if execPath == "" {
		return fmt.Errorf("register link handler: exec path is empty")
	}

	schemeKey := classesKey + scheme
	command := fmt.Sprintf(`%s "%%1"`, quoteWindowsPath(execPath))
	steps := [][]string{
		{"add", schemeKey, "/ve", "/t", "REG_SZ", "/d", "URL:" + scheme, "/f"},
		{"add", schemeKey, "/v", "URL Protocol", "/t", "REG_SZ", "/d", "", "/f"},
		{"add", schemeKey + `\shell\open\command`, "/ve", "/t", "REG_SZ", "/d", command, "/f"},
	}
	for _, args := range steps {
		output, err := exec.Command("reg", args...).CombinedOutput()
		if err != nil {
			return fmt.Errorf("register link handler: reg %s failed: %w: %s", args[0], err, strings.TrimSpace(string(output)))
		}
	}

	return nil
}

func (service *platformService) UnregisterLinkHandler(scheme string) error {
	if scheme == "" {
		return fmt.Errorf("unregister link handler: scheme is empty")
	}

	output, err := exec.Command("reg", "delete", classesKey+scheme, "/f").CombinedOutput()
	if err != nil {
		return fmt.Errorf("unregister link handler: reg delete failed: %w: %s", err, strings.TrimSpace(string(output)))
	}

	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}

func quoteWindowsPath(execPath string) string {
	trimmed := strings.Trim(execPath, `"`)
	return fmt.Sprintf(`"%s"`, trimmed)
}
