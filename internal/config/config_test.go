/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"doccanvas/internal/domain"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("AppData", dir)
	return dir
}

func TestDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Editor.SnapToGrid || cfg.Editor.PasteOffset != 20 || cfg.Editor.Format() != domain.FormatPptx {
		t.Fatalf("unexpected editor defaults: %#v", cfg.Editor)
	}
}

func TestEnvOverridesEditor(t *testing.T) {
	isolate(t)
	t.Setenv(EnvSnapToGrid, "off")
	t.Setenv(EnvPasteOffset, "35")
	t.Setenv(EnvHistoryDepth, "50")
	t.Setenv(EnvDefaultFormat, "XLSX")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Editor.SnapToGrid || cfg.Editor.PasteOffset != 35 || cfg.Editor.HistoryDepth != 50 || cfg.Editor.Format() != domain.FormatXlsx {
		t.Fatalf("env overrides not applied: %#v", cfg.Editor)
	}
	if name, ok := EnvOverrideFor("editor.paste_offset"); !ok || name != EnvPasteOffset {
		t.Fatalf("EnvOverrideFor = %q,%v", name, ok)
	}
	if _, ok := EnvOverrideFor("editor.system_clipboard"); ok {
		t.Fatalf("unset env should not report override")
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTelemetryOptIn, "true")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Editor.SnapToGrid = false
	cfg.Editor.Variables = []string{"a", " a ", "b", ""}
	cfg.Logging.Level = "debug"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Editor.SnapToGrid {
		t.Fatalf("file value false should win over default true")
	}
	if len(got.Editor.Variables) != 2 || got.Editor.Variables[1] != "b" {
		t.Fatalf("variables not cleaned: %v", got.Editor.Variables)
	}
	if got.Logging.Level != "debug" {
		t.Fatalf("logging level = %q", got.Logging.Level)
	}
}

func TestLoadReportsMalformedFile(t *testing.T) {
	isolate(t)
	path, err := ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte("editor: [not: a map"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !cfg.Editor.SnapToGrid {
		t.Fatalf("defaults should survive a bad file")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "DEBUG "
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/dcv.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/dcv.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestMergeIgnoresUnknownFormat(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Editor.DefaultFormat = "odt"
	mergeInto(&dst, &src)
	if dst.Editor.DefaultFormat != string(domain.DefaultFormat) {
		t.Fatalf("unknown format should be ignored, got %q", dst.Editor.DefaultFormat)
	}
}
