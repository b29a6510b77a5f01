// Package editor resolves per-platform VS Code settings paths.
package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Editor identifies a supported VS Code flavor.
type Editor string

const (
	Code         Editor = "code"
	CodeInsiders Editor = "code-insiders"
)

// productDir is the per-flavor directory name used by VS Code.
func (e Editor) productDir() (string, error) {
	switch e {
	case Code:
		return "Code", nil
	case CodeInsiders:
		return "Code - Insiders", nil
	default:
		return "", fmt.Errorf("unknown editor %q (expected code or code-insiders)", string(e))
	}
}

// SettingsPath returns the settings.json path for the editor on the current
// platform.
func SettingsPath(e Editor) (string, error) {
	return settingsPath(e, runtime.GOOS)
}

func settingsPath(e Editor, goos string) (string, error) {
	product, err := e.productDir()
	if err != nil {
		return "", err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", product, "User", "settings.json"), nil
	case "windows":
		appdata := os.Getenv("APPDATA")
		if appdata == "" {
			appdata = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appdata, product, "User", "settings.json"), nil
	default:
		return filepath.Join(home, ".config", product, "User", "settings.json"), nil
	}
}
