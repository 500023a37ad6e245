/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads and saves the user-editable application configuration.
// Environment variables are treated as read-only overrides at runtime. The
// config never holds secrets: API keys and endpoints belong to the calling
// UI layer and reach this program only as opaque stored content.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type ExportConfig struct {
	// ThumbnailSize is the max edge length in pixels for media archive
	// thumbnails; 0 disables thumbnail generation.
	ThumbnailSize int `yaml:"thumbnail_size"`
}

// AppConfig is persisted to a YAML file in the user scope.
// config_version: bump when the structure changes incompatibly.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Home          string        `yaml:"home"`
	Logging       LoggingConfig `yaml:"logging"`
	Export        ExportConfig  `yaml:"export"`
}

// Env var names used as overrides.
const (
	EnvHome          = "CPK_HOME"
	EnvThumbnailSize = "CPK_THUMBNAIL_SIZE"
	EnvLogLevel      = "CPK_LOG_LEVEL"
	EnvLogFormat     = "CPK_LOG_FORMAT"
	EnvLogSource     = "CPK_LOG_SOURCE"
	EnvLogFile       = "CPK_LOG_FILE"
)

// Defaults returns the application defaults. The default home directory is
// resolved lazily by DefaultHome so tests can run without a user home.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Home:          "",
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
		Export:        ExportConfig{ThumbnailSize: 256},
	}
}

// DefaultHome returns the default data home directory.
func DefaultHome() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, "companionkeeper"), nil
}

// Path returns the config file path in the user scope.
func Path() (string, error) {
	home, err := DefaultHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.yaml"), nil
}

// Load reads the config from path, applies defaults for missing fields and
// environment overrides on top. A missing file yields pure defaults.
func Load(path string) (AppConfig, error) {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// fresh install
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
// The write replaces the file via a temp name so a crash never leaves a
// half-written config.
func Save(path string, cfg AppConfig) error {
	if cfg.ConfigVersion == 0 {
		cfg.ConfigVersion = Defaults().ConfigVersion
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}
	if v := os.Getenv(EnvThumbnailSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Export.ThumbnailSize = n
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv(EnvLogSource); v != "" {
		cfg.Logging.Source = v == "true" || v == "1"
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.Logging.File = v
	}
}
