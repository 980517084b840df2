// Package config loads the grove client configuration.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	URL string `toml:"url"`
}

type HooksConfig struct {
	PollIntervalSeconds int `toml:"poll_interval_seconds"`
}

type TUIConfig struct {
	RefreshIntervalSeconds int    `toml:"refresh_interval_seconds"`
	DefaultTarget          string `toml:"default_target"`
}

type Config struct {
	Server   ServerConfig `toml:"server"`
	Hooks    HooksConfig  `toml:"hooks"`
	TUI      TUIConfig    `toml:"tui"`
	StateDir string       `toml:"state_dir"`
}

func defaultConfig() Config {
	return Config{
		Server:   ServerConfig{URL: "http://127.0.0.1:7420"},
		Hooks:    HooksConfig{PollIntervalSeconds: 10},
		TUI:      TUIConfig{RefreshIntervalSeconds: 5},
		StateDir: "",
	}
}

// DefaultPath returns the canonical config file location.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".grove", "config.toml")
	}
	return filepath.Join(base, "grove", "config.toml")
}

// Load reads the config at path, falling back to defaults when the file does
// not exist. An unset state dir resolves next to the config file.
func Load(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.StateDir = filepath.Join(filepath.Dir(path), "state")
			return cfg, nil
		}
		return Config{}, err
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.StateDir == "" {
		cfg.StateDir = filepath.Join(filepath.Dir(path), "state")
	}
	return cfg, nil
}

// OrderingPath returns the task-order state file location.
func (c Config) OrderingPath() string {
	return filepath.Join(c.StateDir, "order.yaml")
}

// LayoutsPath returns the custom layouts file location.
func (c Config) LayoutsPath() string {
	return filepath.Join(c.StateDir, "layouts.yaml")
}
