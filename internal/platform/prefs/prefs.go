// Package prefs persists terminal UI preferences in a small TOML file.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const DefaultTheme = "mocha"

// Prefs holds user preferences for the terminal UI.
type Prefs struct {
	Theme string `toml:"theme"`
}

// Load reads preferences from path. A missing or unreadable file yields the
// defaults; only an empty path is an error.
func Load(path string) (Prefs, error) {
	if strings.TrimSpace(path) == "" {
		return Prefs{}, fmt.Errorf("prefs path is empty")
	}
	prefs := Prefs{Theme: DefaultTheme}

	payload, err := os.ReadFile(path)
	if err != nil {
		return prefs, nil
	}
	if err := toml.Unmarshal(payload, &prefs); err != nil {
		return Prefs{Theme: DefaultTheme}, nil
	}
	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = DefaultTheme
	}
	return prefs, nil
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	payload, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}
