package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const stateDir = ".sleeptrack"

type Config struct {
	DataDir   string
	DBPath    string
	ExportDir string
	PrefsPath string
	LogPath   string
	LogLevel  string
	LogFormat string
}

type fileConfig struct {
	DBPath    string `yaml:"db_path"`
	ExportDir string `yaml:"export_dir"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:   dataDir,
		DBPath:    filepath.Join(dataDir, stateDir, "sleeptrack.db"),
		ExportDir: dataDir,
		PrefsPath: filepath.Join(dataDir, stateDir, "prefs.toml"),
		LogPath:   filepath.Join(dataDir, stateDir, "sleeptrack.log"),
		LogLevel:  "info",
		LogFormat: "text",
	}, nil
}

// Load builds the default layout for dataDir and overlays the optional
// .sleeptrack/config.yaml. Relative paths in the file resolve against dataDir.
func Load(dataDir string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	path := filepath.Join(dataDir, stateDir, "config.yaml")
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	raw := fileConfig{}
	if err := yaml.Unmarshal(payload, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if v := strings.TrimSpace(raw.DBPath); v != "" {
		cfg.DBPath = resolve(dataDir, v)
	}
	if v := strings.TrimSpace(raw.ExportDir); v != "" {
		cfg.ExportDir = resolve(dataDir, v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.LogFormat); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	return cfg, nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
