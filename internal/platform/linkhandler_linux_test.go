//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildDesktopEntry(t *testing.T) {
	entry := buildDesktopEntry("intervaltimer", "/opt/Interval Timer/intervaltimer")
	for _, want := range []string{
		`Exec="/opt/Interval Timer/intervaltimer" %u`,
		"MimeType=x-scheme-handler/intervaltimer;",
		"NoDisplay=true",
	} {
		if !strings.Contains(entry, want) {
			t.Errorf("entry missing %q:\n%s", want, entry)
		}
	}
}

func TestRegisterLinkHandler(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv("PATH", "")

	service := NewService()
	if err := service.RegisterLinkHandler("intervaltimer", "/usr/bin/intervaltimer"); err != nil {
		t.Fatalf("RegisterLinkHandler: %v", err)
	}
	path := filepath.Join(dataHome, "applications", "intervaltimer-link.desktop")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("desktop entry not written: %v", err)
	}

	if err := service.UnregisterLinkHandler("intervaltimer"); err != nil {
		t.Fatalf("UnregisterLinkHandler: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("desktop entry still present: %v", err)
	}
	if err := service.UnregisterLinkHandler("intervaltimer"); err != nil {
		t.Fatalf("second unregister: %v", err)
	}
}

func TestRegisterLinkHandlerValidates(t *testing.T) {
	service := NewService()
	if err := service.RegisterLinkHandler("", "/bin/x"); err == nil {
		t.Fatal("expected error for empty scheme")
	}
	if err := service.RegisterLinkHandler("intervaltimer", ""); err == nil {
		t.Fatal("expected error for empty exec path")
	}
}
