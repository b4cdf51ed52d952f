// Package config loads portwitch settings from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all portwitch configuration.
type Config struct {
	RefreshInterval int      `yaml:"refresh_interval"`   // TUI refresh, seconds
	KillSignal      string   `yaml:"kill_signal"`        // default signal name
	KillGraceSecs   int      `yaml:"kill_grace_seconds"` // wait before SIGKILL escalation
	ConfirmKill     bool     `yaml:"confirm_kill"`       // ask before killing
	Exclude         []string `yaml:"exclude"`            // process names to hide from lists
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		RefreshInterval: 2,
		KillSignal:      "SIGTERM",
		KillGraceSecs:   3,
		ConfirmKill:     true,
		Exclude:         []string{},
	}
}

// Load loads config from the given path. If path is empty, the default
// location (~/.config/portwitch/config.yaml) is used. A missing file
// yields defaults without creating anything.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return Default(), nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return LoadFrom(path)
}

// LoadFrom loads and parses config from the given path. Missing fields
// keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save marshals the config to YAML and writes it to the given path,
// creating parent directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Excluded reports whether a process name is configured to be hidden.
func (c *Config) Excluded(process string) bool {
	for _, name := range c.Exclude {
		if name == process {
			return true
		}
	}
	return false
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "portwitch", "config.yaml")
}
