/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"doccanvas/internal/domain"
	"doccanvas/internal/scene"
)

func pngDataURI(t *testing.T, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func el(id string, kind domain.Kind, x, y, w, h float64) domain.Element {
	return domain.Element{
		ID:       id,
		Kind:     kind,
		Geometry: domain.Geometry{X: x, Y: y, Width: w, Height: h},
		Style:    scene.DefaultStyle(),
	}
}

// sampleDocument has two pptx pages: text, a variable, shapes and an image.
func sampleDocument(t *testing.T) domain.Document {
	t.Helper()
	title := el("el_title", domain.KindTextbox, 40, 40, 400, 80)
	title.Content = "Quarterly report for {{client}}"
	title.Style.FontSize = 24
	title.Style.Bold = true
	title.Style.TextAlign = domain.AlignCenter

	v := el("el_var", domain.KindVariable, 40, 140, 200, 40)
	v.Content = "{{client}}"
	v.Style.Underline = true

	circle := el("el_circle", domain.KindShape, 300, 200, 100, 100)
	circle.ShapeKind = domain.ShapeCircle
	circle.Style.BackgroundColor = "#e2e8f0"
	circle.ZIndex = 1

	arrow := el("el_arrow", domain.KindShape, 420, 200, 150, 40)
	arrow.ShapeKind = domain.ShapeArrow
	arrow.Style.BorderColor = "#ff0000"
	arrow.Style.BorderWidth = 2

	tri := el("el_tri", domain.KindShape, 600, 200, 100, 100)
	tri.ShapeKind = domain.ShapeTriangle
	tri.Style.BackgroundColor = "#00ff00"

	logo := el("el_logo", domain.KindImage, 40, 300, 120, 60)
	logo.ImageRef = pngDataURI(t, 4, 2, color.RGBA{0, 0, 255, 255})

	empty := el("el_empty", domain.KindImage, 200, 300, 80, 80)

	line := el("el_line", domain.KindShape, 40, 500, 150, 5)
	line.ShapeKind = domain.ShapeLine
	line.Style.BorderColor = "#000000"

	c := domain.FormatPptx.Canvas()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return domain.Document{
		ID:         "doc_export",
		Name:       "Export Sample",
		Format:     domain.FormatPptx,
		CanvasSize: domain.Size{Width: c.Width, Height: c.Height},
		CreatedAt:  now,
		UpdatedAt:  now,
		Pages: []domain.Page{
			{ID: "page_1", Elements: []domain.Element{title, v, circle, arrow, tri, logo, empty}},
			{ID: "page_2", Elements: []domain.Element{line}},
		},
	}
}
