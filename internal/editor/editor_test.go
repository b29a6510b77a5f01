package editor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSettingsPathDarwin(t *testing.T) {
	got, err := settingsPath(Code, "darwin")
	if err != nil {
		t.Fatalf("settingsPath failed: %v", err)
	}
	want := filepath.Join("Library", "Application Support", "Code", "User", "settings.json")
	if !strings.HasSuffix(got, want) {
		t.Errorf("path = %q, want suffix %q", got, want)
	}
}

func TestSettingsPathLinux(t *testing.T) {
	got, err := settingsPath(CodeInsiders, "linux")
	if err != nil {
		t.Fatalf("settingsPath failed: %v", err)
	}
	want := filepath.Join(".config", "Code - Insiders", "User", "settings.json")
	if !strings.HasSuffix(got, want) {
		t.Errorf("path = %q, want suffix %q", got, want)
	}
}

func TestSettingsPathWindowsUsesAppData(t *testing.T) {
	appdata := t.TempDir()
	t.Setenv("APPDATA", appdata)

	got, err := settingsPath(Code, "windows")
	if err != nil {
		t.Fatalf("settingsPath failed: %v", err)
	}
	want := filepath.Join(appdata, "Code", "User", "settings.json")
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestSettingsPathWindowsAppDataFallback(t *testing.T) {
	t.Setenv("APPDATA", "")

	got, err := settingsPath(Code, "windows")
	if err != nil {
		t.Fatalf("settingsPath failed: %v", err)
	}
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, "AppData", "Roaming", "Code", "User", "settings.json")
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestSettingsPathUnknownEditor(t *testing.T) {
	_, err := settingsPath(Editor("vim"), "linux")
	if err == nil {
		t.Fatal("expected error for unknown editor")
	}
	if !strings.Contains(err.Error(), "vim") {
		t.Errorf("error %v does not name the bad editor", err)
	}
}
