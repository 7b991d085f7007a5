/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"testing"

	"doccanvas/internal/domain"
)

func TestPaletteDefaults(t *testing.T) {
	tb := NewElement(Item{Kind: domain.KindTextbox})
	if tb.Width != 200 || tb.Height != 100 || tb.Content != TextPlaceholder {
		t.Fatalf("textbox defaults wrong: %+v", tb)
	}
	if tb.X != 50 || tb.Y != 50 {
		t.Fatalf("palette placement wrong: %+v", tb.Geometry)
	}
	if tb.Style.BackgroundColor != domain.Transparent || tb.Style.FontFamily != "Arial" {
		t.Fatalf("textbox style wrong: %+v", tb.Style)
	}
	line := NewElement(Item{Kind: domain.KindShape, Shape: domain.ShapeLine})
	if line.Width != 150 || line.Height != 5 || line.Style.BackgroundColor != ShapeFill {
		t.Fatalf("line defaults wrong: %+v", line)
	}
	v := NewElement(Item{Kind: domain.KindVariable})
	if name, ok := domain.VariableName(v.Content); !ok || name != "variable" {
		t.Fatalf("variable content wrong: %q", v.Content)
	}
	img := NewElement(Item{Kind: domain.KindImage})
	if img.ImageRef != "" || img.Width != 100 {
		t.Fatalf("image defaults wrong: %+v", img)
	}
}

func TestParseItem(t *testing.T) {
	for _, it := range PaletteItems() {
		name := string(it.Kind)
		if it.Kind == domain.KindShape {
			name = string(it.Shape)
		}
		got, err := ParseItem(name)
		if err != nil || got != it {
			t.Fatalf("ParseItem(%q) = %+v, %v", name, got, err)
		}
		if it.Label() == "" {
			t.Fatalf("empty label for %+v", it)
		}
	}
	if _, err := ParseItem("hexagon"); err == nil {
		t.Fatalf("expected error for unknown item")
	}
}
