/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"doccanvas/internal/domain"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type EditorConfig struct {
	SnapToGrid      bool     `yaml:"snap_to_grid"`
	PasteOffset     float64  `yaml:"paste_offset"`
	HistoryDepth    int      `yaml:"history_depth"` // 0 = unlimited
	HistoryElements int      `yaml:"history_max_elements"`
	SystemClipboard bool     `yaml:"system_clipboard"`
	DefaultFormat   string   `yaml:"default_format"`
	Variables       []string `yaml:"variables"`
}

type StorageConfig struct {
	Backups bool `yaml:"backups"`
	Index   bool `yaml:"index"`
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Editor        EditorConfig  `yaml:"editor"`
	Storage       StorageConfig `yaml:"storage"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false, Theme: "system"},
		Editor: EditorConfig{
			SnapToGrid:    true,
			PasteOffset:   20,
			DefaultFormat: string(domain.DefaultFormat),
			Variables:     []string{"customer_name", "order_number", "order_date", "total"},
		},
		Storage: StorageConfig{Backups: true, Index: true},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvSnapToGrid      = "DCV_SNAP_TO_GRID"
	EnvPasteOffset     = "DCV_PASTE_OFFSET"
	EnvHistoryDepth    = "DCV_HISTORY_DEPTH"
	EnvSystemClipboard = "DCV_SYSTEM_CLIPBOARD"
	EnvDefaultFormat   = "DCV_DEFAULT_FORMAT"
	EnvTelemetryOptIn  = "DCV_TELEMETRY_OPT_IN"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "DCV_LOG_LEVEL"
	EnvLogFormat = "DCV_LOG_FORMAT"
	EnvLogSource = "DCV_LOG_SOURCE"
	EnvLogFile   = "DCV_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "DocCanvas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "DocCanvas")
	default: // linux and others
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "doccanvas")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "doccanvas")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A malformed file is reported but the returned config is still usable.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var parseErr error
	if data, err := os.ReadFile(path); err == nil {
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		} else {
			parseErr = fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, parseErr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	dst.Editor.SnapToGrid = src.Editor.SnapToGrid
	dst.Editor.SystemClipboard = src.Editor.SystemClipboard
	dst.Storage = src.Storage
	if src.Editor.PasteOffset > 0 {
		dst.Editor.PasteOffset = src.Editor.PasteOffset
	}
	if src.Editor.HistoryDepth >= 0 {
		dst.Editor.HistoryDepth = src.Editor.HistoryDepth
	}
	if src.Editor.HistoryElements >= 0 {
		dst.Editor.HistoryElements = src.Editor.HistoryElements
	}
	if f, err := domain.ParseFormat(src.Editor.DefaultFormat); err == nil {
		dst.Editor.DefaultFormat = string(f)
	}
	if len(src.Editor.Variables) > 0 {
		dst.Editor.Variables = cleanNames(src.Editor.Variables)
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func cleanNames(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, n := range in {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvSnapToGrid)); v != "" {
		cfg.Editor.SnapToGrid = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPasteOffset)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.Editor.PasteOffset = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryDepth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Editor.HistoryDepth = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSystemClipboard)); v != "" {
		cfg.Editor.SystemClipboard = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDefaultFormat)); v != "" {
		if f, err := domain.ParseFormat(v); err == nil {
			cfg.Editor.DefaultFormat = string(f)
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envKeys = map[string]string{
	"editor.snap_to_grid":      EnvSnapToGrid,
	"editor.paste_offset":      EnvPasteOffset,
	"editor.history_depth":     EnvHistoryDepth,
	"editor.system_clipboard":  EnvSystemClipboard,
	"editor.default_format":    EnvDefaultFormat,
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	if name, ok := envKeys[key]; ok && os.Getenv(name) != "" {
		return name, true
	}
	return "", false
}

// Format returns the configured default document format.
func (e EditorConfig) Format() domain.Format {
	f, err := domain.ParseFormat(e.DefaultFormat)
	if err != nil {
		return domain.DefaultFormat
	}
	return f
}
