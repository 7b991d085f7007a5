/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"doccanvas/internal/domain"
)

func TestBatch_WebPreset(t *testing.T) {
	root := t.TempDir()
	paths, err := Batch(sampleDocument(t), BatchOptions{Preset: PresetWeb, ExportsDir: root})
	if err != nil {
		t.Fatalf("batch export web: %v", err)
	}
	checks := []string{
		filepath.Join(root, "web", "png", "page-1.png"),
		filepath.Join(root, "web", "svg", "page-2.svg"),
		filepath.Join(root, "web", "zip", "export-sample.zip"),
	}
	for _, p := range checks {
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("empty file: %s", p)
		}
	}
	if len(paths) != 5 {
		t.Fatalf("expected 5 outputs, got %v", paths)
	}
}

func TestBatch_PrintPresetRendersAtDoubleScale(t *testing.T) {
	root := t.TempDir()
	if _, err := Batch(sampleDocument(t), BatchOptions{Preset: PresetPrint, ExportsDir: root}); err != nil {
		t.Fatalf("batch export print: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "print", "pdf", "export-sample.pdf")); err != nil {
		t.Fatalf("missing pdf: %v", err)
	}
	f, err := os.Open(filepath.Join(root, "print", "png", "page-1.png"))
	if err != nil {
		t.Fatalf("missing png: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 1600 {
		t.Fatalf("print png width = %d, want 1600", cfg.Width)
	}
}

func TestBatch_UnknownFormat(t *testing.T) {
	_, err := Batch(sampleDocument(t), BatchOptions{Formats: []string{"docx"}, ExportsDir: t.TempDir()})
	if err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestFileStem(t *testing.T) {
	cases := map[string]string{
		"Export Sample":   "export-sample",
		"Q3 report.final": "q3-report-final",
		"  ":              "document",
		"Ünïcode!":        "ncode",
	}
	for in, want := range cases {
		if got := fileStem(domain.Document{Name: in}); got != want {
			t.Errorf("fileStem(%q) = %q, want %q", in, got, want)
		}
	}
}
