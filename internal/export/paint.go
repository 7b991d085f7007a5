/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders document pages to PDF, SVG and PNG. All three
// backends share one element painter so a page looks the same in each.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"regexp"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"doccanvas/internal/domain"
	"doccanvas/internal/scene"
	"doccanvas/internal/textlayout"
	"doccanvas/internal/vector"
)

// Options controls what gets rendered. The zero value renders every page
// at canvas size with placeholders left as typed.
type Options struct {
	Pages    []int             // zero-based; empty means all pages
	Values   map[string]string // substitutions for {{name}} placeholders
	Scale    float64           // raster scale for PNG; default 1
	ShowGrid bool
	Fonts    *textlayout.FontLibrary // optional; the Go fonts are the fallback
}

const textPadding = 8

var (
	pageColor        = color.RGBA{255, 255, 255, 255}
	gridColor        = color.RGBA{229, 231, 235, 255}
	placeholderFill  = color.RGBA{241, 245, 249, 255}
	placeholderInk   = color.RGBA{148, 163, 184, 255}
	placeholderLabel = "Image"
)

var goFaces = textlayout.NewGoProvider()

func (o Options) provider() textlayout.Provider {
	if o.Fonts == nil {
		return goFaces
	}
	return textlayout.OTProvider{Lib: o.Fonts, Fallback: goFaces}
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// painter is implemented by each backend. Coordinates are canvas pixels;
// a zero-alpha color or a non-positive width means "do not paint".
type painter interface {
	rect(r vector.Rect, fill, stroke color.RGBA, width float64)
	ellipse(r vector.Rect, fill, stroke color.RGBA, width float64)
	polygon(pts []vector.Pt, fill color.RGBA)
	line(a, b vector.Pt, c color.RGBA, width float64)
	text(lines []placedLine, st domain.Style, ink color.RGBA)
	image(r vector.Rect, img decodedImage)
}

// placedLine is one wrapped line with its pen position.
type placedLine struct {
	X, Baseline float64
	Width       float64
	Text        string
}

type decodedImage struct {
	img    image.Image
	format string // as reported by image.Decode
	data   []byte
	ref    string
}

func selectPages(doc domain.Document, specific []int) ([]int, error) {
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("document has no pages")
	}
	if len(specific) == 0 {
		out := make([]int, len(doc.Pages))
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	for _, i := range specific {
		if i < 0 || i >= len(doc.Pages) {
			return nil, fmt.Errorf("page index %d out of range (document has %d pages)", i, len(doc.Pages))
		}
	}
	return specific, nil
}

func canvasOf(doc domain.Document) domain.Size {
	if doc.CanvasSize.Width > 0 && doc.CanvasSize.Height > 0 {
		return doc.CanvasSize
	}
	c := doc.Format.Canvas()
	return domain.Size{Width: c.Width, Height: c.Height}
}

// renderPage paints the page background, optional grid and every element
// bottom to top.
func renderPage(p painter, doc domain.Document, idx int, opt Options) {
	size := canvasOf(doc)
	p.rect(vector.R(0, 0, size.Width, size.Height), pageColor, color.RGBA{}, 0)
	if opt.ShowGrid {
		step := doc.Format.Canvas().Grid
		for x := step; x < size.Width; x += step {
			p.line(vector.Pt{X: x, Y: 0}, vector.Pt{X: x, Y: size.Height}, gridColor, 0.5)
		}
		for y := step; y < size.Height; y += step {
			p.line(vector.Pt{X: 0, Y: y}, vector.Pt{X: size.Width, Y: y}, gridColor, 0.5)
		}
	}
	prov := opt.provider()
	for _, el := range scene.New(doc.Pages[idx].Elements).PaintOrder() {
		paintElement(p, el, opt.Values, prov)
	}
}

func paintElement(p painter, el domain.Element, values map[string]string, prov textlayout.Provider) {
	r := scene.Bounds(el)
	st := el.Style
	bg := paint(st.BackgroundColor)
	border := paint(st.BorderColor)
	bw := st.BorderWidth

	switch el.Kind {
	case domain.KindShape:
		paintShape(p, el.ShapeKind, r, bg, border, bw)
	case domain.KindImage:
		p.rect(r, bg, border, bw)
		if img, ok := decodeImageRef(el.ImageRef); ok {
			p.image(r, img)
			return
		}
		p.rect(r, placeholderFill, placeholderInk, 1)
		ph := st
		ph.TextAlign = domain.AlignCenter
		ph.Bold, ph.Italic, ph.Underline = false, false, false
		p.text(placeText(prov, r, placeholderLabel, ph), ph, placeholderInk)
	default:
		p.rect(r, bg, border, bw)
		txt := Substitute(el.Content, values)
		if strings.TrimSpace(txt) == "" {
			return
		}
		p.text(placeText(prov, r, txt, st), st, paint(st.Color))
	}
}

// paintShape draws the shape geometry itself; only rectangles use the
// element box as their outline.
func paintShape(p painter, kind domain.ShapeKind, r vector.Rect, bg, border color.RGBA, bw float64) {
	switch kind {
	case domain.ShapeCircle:
		p.ellipse(r, bg, border, bw)
	case domain.ShapeTriangle:
		p.polygon([]vector.Pt{{X: r.X + r.W/2, Y: r.Y}, {X: r.X + r.W, Y: r.Y + r.H}, {X: r.X, Y: r.Y + r.H}}, bg)
	case domain.ShapeArrow:
		head := math.Min(math.Max(6, bw*4), math.Min(r.W/2, r.H/2))
		midY := r.Y + r.H/2
		tip := r.X + r.W
		p.line(vector.Pt{X: r.X, Y: midY}, vector.Pt{X: tip - head, Y: midY}, border, math.Max(bw, 1))
		p.polygon([]vector.Pt{{X: tip - head, Y: midY - head/2}, {X: tip, Y: midY}, {X: tip - head, Y: midY + head/2}}, border)
	case domain.ShapeLine:
		p.rect(r, border, color.RGBA{}, 0)
	default:
		p.rect(r, bg, border, bw)
	}
}

// paint resolves a style color; malformed values paint nothing.
func paint(s string) color.RGBA {
	c, ok := domain.ParseColor(s)
	if !ok {
		return color.RGBA{}
	}
	return c
}

var placeholderRE = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// Substitute replaces {{name}} placeholders that have a value in values.
// Unknown names are left as typed.
func Substitute(text string, values map[string]string) string {
	if len(values) == 0 || !strings.Contains(text, "{{") {
		return text
	}
	return placeholderRE.ReplaceAllStringFunc(text, func(m string) string {
		name := placeholderRE.FindStringSubmatch(m)[1]
		if v, ok := values[name]; ok {
			return v
		}
		return m
	})
}

func fontSpec(st domain.Style) textlayout.FontSpec {
	size := st.FontSize
	if size <= 0 {
		size = scene.DefaultStyle().FontSize
	}
	w := textlayout.WeightRegular
	if st.Bold {
		w = textlayout.WeightBold
	}
	return textlayout.FontSpec{Family: st.FontFamily, SizePt: float32(size), Weight: w, Italic: st.Italic}
}

// placeText wraps txt inside the padded box, centers the block vertically
// and positions each line per the alignment.
func placeText(prov textlayout.Provider, r vector.Rect, txt string, st domain.Style) []placedLine {
	inner := r.Inset(textPadding, textPadding)
	if inner.W <= 0 {
		inner.W = r.W
		inner.X = r.X
	}
	spec := fontSpec(st)
	box, err := textlayout.NewWordWrap(prov).Layout([]textlayout.Span{{Text: txt, Font: spec}}, float32(inner.W))
	if err != nil || len(box.Lines) == 0 {
		return nil
	}
	lh := float64(box.Metrics.LineHeight())
	top := inner.Y + (inner.H-lh*float64(len(box.Lines)))/2
	out := make([]placedLine, 0, len(box.Lines))
	for i, ln := range box.Lines {
		s := strings.TrimRight(ln.Text(), " ")
		w, _ := textlayout.Measure(prov, []textlayout.Span{{Text: s, Font: spec}})
		x := inner.X
		switch st.TextAlign {
		case domain.AlignCenter:
			x = inner.X + (inner.W-float64(w))/2
		case domain.AlignRight:
			x = inner.X + inner.W - float64(w)
		}
		out = append(out, placedLine{
			X:        x,
			Baseline: top + float64(i)*lh + float64(box.Metrics.Ascent),
			Width:    float64(w),
			Text:     s,
		})
	}
	return out
}

// coverRect scales an iw×ih image to cover r while keeping its aspect,
// centered on r.
func coverRect(r vector.Rect, iw, ih int) vector.Rect {
	if iw <= 0 || ih <= 0 {
		return r
	}
	s := math.Max(r.W/float64(iw), r.H/float64(ih))
	w, h := float64(iw)*s, float64(ih)*s
	return vector.R(r.X+(r.W-w)/2, r.Y+(r.H-h)/2, w, h)
}

// decodeImageRef decodes a base64 data URI. Other references, and data
// that does not decode, render as the placeholder.
func decodeImageRef(ref string) (decodedImage, bool) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return decodedImage{}, false
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return decodedImage{}, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return decodedImage{}, false
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return decodedImage{}, false
	}
	return decodedImage{img: img, format: format, data: data, ref: ref}, true
}
