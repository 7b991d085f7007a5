/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"errors"
	"strconv"
	"strings"

	"doccanvas/internal/domain"
	"doccanvas/internal/editor"
	"doccanvas/internal/vector"
)

// ErrNotBuilt is returned by Run in binaries built without the desktop UI.
var ErrNotBuilt = errors.New("desktop UI not built")

// launchHint is the command that starts the UI on dir.
func launchHint(dir string) string {
	target := "[documentDir]"
	if d := strings.TrimSpace(dir); d != "" {
		target = strconv.Quote(d)
	}
	return "go run -tags fyne ./cmd/doccanvas ui " + target
}

// viewport maps page coordinates to widget coordinates. The page is centered
// in the widget, scaled by zoom and shifted by the pan offset.
type viewport struct {
	zoom             float32
	offsetX, offsetY float32
	pageW, pageH     float32
}

const (
	minZoom     = 0.1
	maxZoom     = 4
	defaultZoom = 1
)

func newViewport(c domain.CanvasSpec) viewport {
	return viewport{zoom: defaultZoom, pageW: float32(c.Width), pageH: float32(c.Height)}
}

func (v viewport) origin(w, h float32) (x, y float32) {
	return w/2 - v.pageW*v.zoom/2 + v.offsetX, h/2 - v.pageH*v.zoom/2 + v.offsetY
}

func (v viewport) toPage(w, h, sx, sy float32) vector.Pt {
	ox, oy := v.origin(w, h)
	return vector.Pt{X: float64((sx - ox) / v.zoom), Y: float64((sy - oy) / v.zoom)}
}

func (v viewport) toScreen(w, h float32, p vector.Pt) (float32, float32) {
	ox, oy := v.origin(w, h)
	return ox + float32(p.X)*v.zoom, oy + float32(p.Y)*v.zoom
}

// zoomBy scales the zoom by factor, clamped to a usable range.
func (v *viewport) zoomBy(factor float32) {
	z := v.zoom * factor
	if z < minZoom {
		z = minZoom
	}
	if z > maxZoom {
		z = maxZoom
	}
	v.zoom = z
}

// fit picks the largest zoom (at most 1) that shows the whole page in a
// w×h area with margin on each side, and recenters.
func (v *viewport) fit(w, h, margin float32) {
	if w <= 2*margin || h <= 2*margin || v.pageW <= 0 || v.pageH <= 0 {
		return
	}
	z := (w - 2*margin) / v.pageW
	if zh := (h - 2*margin) / v.pageH; zh < z {
		z = zh
	}
	if z > 1 {
		z = 1
	}
	if z < minZoom {
		z = minZoom
	}
	v.zoom, v.offsetX, v.offsetY = z, 0, 0
}

var fieldLabels = map[editor.Field]string{
	editor.FieldX:           "X",
	editor.FieldY:           "Y",
	editor.FieldWidth:       "Width",
	editor.FieldHeight:      "Height",
	editor.FieldContent:     "Text",
	editor.FieldShape:       "Shape",
	editor.FieldFontSize:    "Font size",
	editor.FieldFontFamily:  "Font",
	editor.FieldColor:       "Text color",
	editor.FieldBackground:  "Background",
	editor.FieldBorderColor: "Border color",
	editor.FieldBorderWidth: "Border width",
	editor.FieldBold:        "Bold",
	editor.FieldItalic:      "Italic",
	editor.FieldUnderline:   "Underline",
	editor.FieldTextAlign:   "Align",
}

func fieldLabel(f editor.Field) string {
	if s, ok := fieldLabels[f]; ok {
		return s
	}
	return string(f)
}

// fieldKind tells the form which input widget to build.
type fieldKind int

const (
	inputText fieldKind = iota
	inputCheck
	inputChoice
	inputMultiline
)

func fieldInput(f editor.Field) (fieldKind, []string) {
	switch f {
	case editor.FieldBold, editor.FieldItalic, editor.FieldUnderline:
		return inputCheck, nil
	case editor.FieldTextAlign:
		return inputChoice, []string{string(domain.AlignLeft), string(domain.AlignCenter), string(domain.AlignRight)}
	case editor.FieldShape:
		return inputChoice, []string{
			string(domain.ShapeRectangle), string(domain.ShapeCircle), string(domain.ShapeTriangle),
			string(domain.ShapeArrow), string(domain.ShapeLine),
		}
	case editor.FieldContent:
		return inputMultiline, nil
	}
	return inputText, nil
}

// statusText turns an editor error into a status bar message.
func statusText(err error) string {
	var ve *editor.ValidationError
	switch {
	case err == nil:
		return "Ready"
	case errors.As(err, &ve):
		return "Invalid " + strings.ToLower(fieldLabel(editor.Field(ve.Field))) + ": " + ve.Msg
	case errors.Is(err, editor.ErrLastPage):
		return "The only page cannot be deleted"
	case errors.Is(err, editor.ErrNoSelection):
		return "Select an element first"
	case errors.Is(err, editor.ErrClipboardEmpty):
		return "Nothing to paste"
	}
	return "Error: " + err.Error()
}

func pageLabel(i int, elements int) string {
	return "Page " + strconv.Itoa(i+1) + " (" + strconv.Itoa(elements) + ")"
}
