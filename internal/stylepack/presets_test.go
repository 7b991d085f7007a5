/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stylepack

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"doccanvas/internal/domain"
	"doccanvas/internal/editor"
	"doccanvas/internal/scene"
)

func headline() Preset {
	return Preset{
		Name:        "Headline",
		Description: "Large bold title",
		Properties: map[string]string{
			"fontSize":        "32",
			"bold":            "true",
			"color":           "#1e293b",
			"textAlign":       "center",
			"backgroundColor": "#f1f5f9",
		},
	}
}

func TestPresetValidate(t *testing.T) {
	if err := headline().Validate(); err != nil {
		t.Fatalf("valid preset rejected: %v", err)
	}
	bad := []Preset{
		{Name: "../x", Properties: map[string]string{"bold": "true"}},
		{Name: "Empty"},
		{Name: "Geo", Properties: map[string]string{"x": "10"}},
		{Name: "Unknown", Properties: map[string]string{"shadow": "1"}},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("preset %q accepted", p.Name)
		}
	}
}

func TestSaveLoadList(t *testing.T) {
	root := t.TempDir()
	if got, err := List(root); err != nil || len(got) != 0 {
		t.Fatalf("List on empty document = %v, %v", got, err)
	}
	if err := Save(root, headline()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := Save(root, Preset{Name: "Quiet", Properties: map[string]string{"color": "#64748b"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	// junk next to the presets is ignored
	if err := os.WriteFile(filepath.Join(root, StylesDir, "broken.yaml"), []byte("properties: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := List(root)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Headline" || got[1].Name != "Quiet" {
		t.Fatalf("list = %+v", got)
	}
	if got[0].Properties["fontSize"] != "32" || got[0].Description != "Large bold title" {
		t.Fatalf("round trip lost data: %+v", got[0])
	}
}

func TestApplyIsOneUndoStep(t *testing.T) {
	ed := editor.New(nil, editor.Options{})
	id, err := ed.AddElement(scene.Item{Kind: domain.KindTextbox})
	if err != nil {
		t.Fatal(err)
	}
	_, before := ed.HistoryPosition()

	n, err := Apply(ed, headline())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if n != 5 {
		t.Fatalf("applied %d properties, want 5", n)
	}
	el, _ := ed.Element(id)
	if el.Style.FontSize != 32 || !el.Style.Bold || el.Style.TextAlign != domain.AlignCenter {
		t.Fatalf("style not applied: %+v", el.Style)
	}
	if _, after := ed.HistoryPosition(); after != before+1 {
		t.Fatalf("history grew by %d, want 1", after-before)
	}
	if _, err := ed.Undo(); err != nil {
		t.Fatal(err)
	}
	el, _ = ed.Element(id)
	if el.Style.FontSize != scene.DefaultStyle().FontSize {
		t.Fatalf("undo left font size %v", el.Style.FontSize)
	}
}

func TestApplySkipsTextStylingOnShapes(t *testing.T) {
	ed := editor.New(nil, editor.Options{})
	id, _ := ed.AddElement(scene.Item{Kind: domain.KindShape, Shape: domain.ShapeCircle})
	n, err := Apply(ed, headline())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if n != 1 {
		t.Fatalf("applied %d, want only the background", n)
	}
	el, _ := ed.Element(id)
	if el.Style.BackgroundColor != "#f1f5f9" || el.Style.Bold {
		t.Fatalf("unexpected style %+v", el.Style)
	}
}

func TestApplyInvalidValueChangesNothing(t *testing.T) {
	ed := editor.New(nil, editor.Options{})
	id, _ := ed.AddElement(scene.Item{Kind: domain.KindTextbox})
	p := Preset{Name: "Bad", Properties: map[string]string{"fontSize": "huge", "bold": "true"}}
	if _, err := Apply(ed, p); err == nil {
		t.Fatal("expected validation error")
	}
	el, _ := ed.Element(id)
	if el.Style.Bold {
		t.Fatal("partial preset applied")
	}
	if ed.Staged() {
		t.Fatal("failed apply left staged edits")
	}
}

func TestApplyAndCaptureNeedSelection(t *testing.T) {
	ed := editor.New(nil, editor.Options{})
	if _, err := Apply(ed, headline()); !errors.Is(err, editor.ErrNoSelection) {
		t.Fatalf("apply err = %v", err)
	}
	if _, err := Capture(ed, "X"); !errors.Is(err, editor.ErrNoSelection) {
		t.Fatalf("capture err = %v", err)
	}
}

func TestCaptureRoundTrip(t *testing.T) {
	ed := editor.New(nil, editor.Options{})
	src, _ := ed.AddElement(scene.Item{Kind: domain.KindTextbox})
	if _, err := Apply(ed, headline()); err != nil {
		t.Fatal(err)
	}
	p, err := Capture(ed, "Copied")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if _, ok := p.Properties["x"]; ok {
		t.Fatal("geometry captured")
	}
	if _, ok := p.Properties["content"]; ok {
		t.Fatal("content captured")
	}

	dst, _ := ed.AddElement(scene.Item{Kind: domain.KindTextbox})
	if _, err := Apply(ed, p); err != nil {
		t.Fatal(err)
	}
	a, _ := ed.Element(src)
	b, _ := ed.Element(dst)
	if a.Style != b.Style {
		t.Fatalf("styles differ:\n%+v\n%+v", a.Style, b.Style)
	}
}
