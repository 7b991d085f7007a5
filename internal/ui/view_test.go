/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"math"
	"testing"

	"doccanvas/internal/domain"
	"doccanvas/internal/editor"
	"doccanvas/internal/vector"
)

func TestViewportRoundTrip(t *testing.T) {
	vp := newViewport(domain.FormatPptx.Canvas())
	vp.zoom = 0.5
	vp.offsetX, vp.offsetY = 30, -10

	x, y := vp.toScreen(1000, 800, vector.Pt{X: 0, Y: 0})
	if x != 330 || y != 240 {
		t.Fatalf("origin = (%v, %v), want (330, 240)", x, y)
	}
	p := vp.toPage(1000, 800, 430, 290)
	if math.Abs(p.X-200) > 1e-6 || math.Abs(p.Y-100) > 1e-6 {
		t.Fatalf("toPage = %+v, want (200, 100)", p)
	}
}

func TestViewportZoomClamp(t *testing.T) {
	vp := newViewport(domain.FormatPptx.Canvas())
	for i := 0; i < 50; i++ {
		vp.zoomBy(0.5)
	}
	if vp.zoom != minZoom {
		t.Fatalf("zoom = %v, want %v", vp.zoom, float32(minZoom))
	}
	for i := 0; i < 50; i++ {
		vp.zoomBy(2)
	}
	if vp.zoom != maxZoom {
		t.Fatalf("zoom = %v, want %v", vp.zoom, float32(maxZoom))
	}
}

func TestViewportFit(t *testing.T) {
	vp := newViewport(domain.FormatDocx.Canvas())
	vp.offsetX = 50
	vp.fit(600, 548, 24)
	if vp.zoom != 0.5 {
		t.Fatalf("zoom = %v, want 0.5", vp.zoom)
	}
	if vp.offsetX != 0 || vp.offsetY != 0 {
		t.Fatal("fit did not recenter")
	}

	vp.fit(4000, 4000, 24)
	if vp.zoom != 1 {
		t.Fatalf("fit upscaled to %v", vp.zoom)
	}

	vp.zoom = 0.7
	vp.fit(20, 20, 24)
	if vp.zoom != 0.7 {
		t.Fatal("fit changed zoom for a too small area")
	}
}

func TestFieldInputs(t *testing.T) {
	cases := map[editor.Field]fieldKind{
		editor.FieldBold:      inputCheck,
		editor.FieldTextAlign: inputChoice,
		editor.FieldShape:     inputChoice,
		editor.FieldContent:   inputMultiline,
		editor.FieldX:         inputText,
		editor.FieldColor:     inputText,
	}
	for f, want := range cases {
		if got, _ := fieldInput(f); got != want {
			t.Errorf("%s: kind %d, want %d", f, got, want)
		}
	}
	_, shapes := fieldInput(editor.FieldShape)
	if len(shapes) != 5 {
		t.Fatalf("shape options = %v", shapes)
	}
	for _, el := range []domain.Element{
		{Kind: domain.KindTextbox},
		{Kind: domain.KindShape},
		{Kind: domain.KindImage},
	} {
		for _, f := range editor.Fields(el) {
			if fieldLabel(f) == string(f) {
				t.Errorf("no label for %s", f)
			}
		}
	}
}

func TestStatusText(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "Ready"},
		{&editor.ValidationError{Field: "fontSize", Msg: "must be a positive number"}, "Invalid font size: must be a positive number"},
		{fmt.Errorf("delete: %w", editor.ErrLastPage), "The only page cannot be deleted"},
		{editor.ErrNoSelection, "Select an element first"},
		{editor.ErrClipboardEmpty, "Nothing to paste"},
	}
	for _, c := range cases {
		if got := statusText(c.err); got != c.want {
			t.Errorf("statusText(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestPageLabel(t *testing.T) {
	if got := pageLabel(0, 3); got != "Page 1 (3)" {
		t.Fatalf("got %q", got)
	}
	if got := pageLabel(11, 0); got != "Page 12 (0)" {
		t.Fatalf("got %q", got)
	}
}

func TestLaunchHint(t *testing.T) {
	if got := launchHint("  "); got != "go run -tags fyne ./cmd/doccanvas ui [documentDir]" {
		t.Fatalf("launchHint(blank) = %q", got)
	}
	if got := launchHint("invoices"); got != `go run -tags fyne ./cmd/doccanvas ui "invoices"` {
		t.Fatalf("launchHint(invoices) = %q", got)
	}
}
