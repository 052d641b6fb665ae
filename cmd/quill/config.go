// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// schemaVersion is the persisted-state version this build expects.
// Bumping it invalidates stored app snapshots on next load; history
// and credential always survive.
const schemaVersion = "3"

// Config is the app configuration loaded from ~/.quill/config.yaml.
// A missing file yields defaults; env vars override file values.
type Config struct {
	// Model is the remote language model identifier.
	Model string `yaml:"model"`

	// DataDir is the BadgerDB directory. Default: ~/.quill/data
	DataDir string `yaml:"data_dir"`

	// LogDir enables file logging when set.
	LogDir string `yaml:"log_dir"`

	// Theme and ColorScheme are opaque presentation preferences,
	// carried through export bundles and snapshots.
	Theme       string `yaml:"theme"`
	ColorScheme string `yaml:"color_scheme"`

	// DebounceMs is the snapshot-save quiet period in milliseconds.
	// Default: 1000
	DebounceMs int `yaml:"debounce_ms"`
}

// Debounce returns the snapshot debounce as a duration.
func (c Config) Debounce() time.Duration {
	if c.DebounceMs <= 0 {
		return time.Second
	}
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// configDir returns ~/.quill, falling back to the working directory
// when the home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quill"
	}
	return filepath.Join(home, ".quill")
}

// loadConfig reads the config file, applies defaults, then env
// overrides (QUILL_MODEL, QUILL_DATA_DIR).
func loadConfig() (Config, error) {
	cfg := Config{
		Theme:       "system",
		ColorScheme: "ink",
		DebounceMs:  1000,
	}

	path := filepath.Join(configDir(), "config.yaml")
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file is fine; defaults apply.
	case err != nil:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("QUILL_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("QUILL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(configDir(), "data")
	}

	return cfg, nil
}

// saveConfig writes the config file back, creating ~/.quill if needed.
func saveConfig(cfg Config) error {
	dir := configDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir %s: %w", dir, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
