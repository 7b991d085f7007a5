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
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"doccanvas/internal/domain"
	"doccanvas/internal/textlayout"
	"doccanvas/internal/vector"
)

// RenderPage rasterizes page idx at opt.Scale (default 1).
func RenderPage(doc domain.Document, idx int, opt Options) (image.Image, error) {
	if _, err := selectPages(doc, []int{idx}); err != nil {
		return nil, err
	}
	size := canvasOf(doc)
	s := opt.scale()
	w := int(math.Max(1, math.Round(size.Width*s)))
	h := int(math.Max(1, math.Round(size.Height*s)))
	gp := &ggPainter{dc: gg.NewContext(w, h), s: s, prov: opt.provider()}
	renderPage(gp, doc, idx, opt)
	return gp.dc.Image(), nil
}

// PNGPages writes one page-<n>.png per selected page into dir and returns
// the written paths.
func PNGPages(doc domain.Document, dir string, opt Options) ([]string, error) {
	pages, err := selectPages(doc, opt.Pages)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var out []string
	for _, idx := range pages {
		img, err := RenderPage(doc, idx, opt)
		if err != nil {
			return out, err
		}
		name := filepath.Join(dir, pageFileName(idx, "png"))
		if err := gg.SavePNG(name, img); err != nil {
			return out, fmt.Errorf("write png: %w", err)
		}
		out = append(out, name)
	}
	return out, nil
}

// Thumbnail renders page idx scaled to at most maxW pixels wide and returns
// PNG bytes. Pages are never scaled up.
func Thumbnail(doc domain.Document, idx int, maxW int) ([]byte, error) {
	size := canvasOf(doc)
	s := 1.0
	if maxW > 0 && float64(maxW) < size.Width {
		s = float64(maxW) / size.Width
	}
	img, err := RenderPage(doc, idx, Options{Scale: s})
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gg.NewContextForImage(img).EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ggPainter maps canvas pixels to raster pixels by s. Coordinates are
// scaled by hand rather than through the context matrix so glyphs are
// rasterized at the target size.
type ggPainter struct {
	dc   *gg.Context
	s    float64
	prov textlayout.Provider
}

func (p *ggPainter) path(fill, stroke color.RGBA, width float64) {
	if fill.A > 0 {
		p.dc.SetColor(fill)
		if stroke.A > 0 && width > 0 {
			p.dc.FillPreserve()
		} else {
			p.dc.Fill()
		}
	}
	if stroke.A > 0 && width > 0 {
		p.dc.SetColor(stroke)
		p.dc.SetLineWidth(width * p.s)
		p.dc.Stroke()
	}
	p.dc.ClearPath()
}

func (p *ggPainter) rect(r vector.Rect, fill, stroke color.RGBA, width float64) {
	p.dc.DrawRectangle(r.X*p.s, r.Y*p.s, r.W*p.s, r.H*p.s)
	p.path(fill, stroke, width)
}

func (p *ggPainter) ellipse(r vector.Rect, fill, stroke color.RGBA, width float64) {
	c := r.Center()
	p.dc.DrawEllipse(c.X*p.s, c.Y*p.s, r.W/2*p.s, r.H/2*p.s)
	p.path(fill, stroke, width)
}

func (p *ggPainter) polygon(pts []vector.Pt, fill color.RGBA) {
	if len(pts) == 0 {
		return
	}
	for i, pt := range pts {
		if i == 0 {
			p.dc.MoveTo(pt.X*p.s, pt.Y*p.s)
		} else {
			p.dc.LineTo(pt.X*p.s, pt.Y*p.s)
		}
	}
	p.dc.ClosePath()
	p.path(fill, color.RGBA{}, 0)
}

func (p *ggPainter) line(a, b vector.Pt, c color.RGBA, width float64) {
	p.dc.DrawLine(a.X*p.s, a.Y*p.s, b.X*p.s, b.Y*p.s)
	p.path(color.RGBA{}, c, width)
}

func (p *ggPainter) text(lines []placedLine, st domain.Style, ink color.RGBA) {
	if ink.A == 0 || len(lines) == 0 {
		return
	}
	spec := fontSpec(st)
	spec.SizePt *= float32(p.s)
	face, _ := p.prov.Resolve(spec)
	p.dc.SetFontFace(face)
	p.dc.SetColor(ink)
	for _, ln := range lines {
		x, y := ln.X*p.s, ln.Baseline*p.s
		p.dc.DrawString(ln.Text, x, y)
		if st.Underline {
			p.dc.SetLineWidth(math.Max(1, fontSpecSize(st)/14) * p.s)
			p.dc.DrawLine(x, y+2*p.s, x+ln.Width*p.s, y+2*p.s)
			p.dc.Stroke()
		}
	}
}

func (p *ggPainter) image(r vector.Rect, img decodedImage) {
	b := img.img.Bounds()
	cr := coverRect(r, b.Dx(), b.Dy())
	p.dc.Push()
	p.dc.DrawRectangle(r.X*p.s, r.Y*p.s, r.W*p.s, r.H*p.s)
	p.dc.Clip()
	p.dc.Translate(cr.X*p.s, cr.Y*p.s)
	p.dc.Scale(cr.W*p.s/float64(b.Dx()), cr.H*p.s/float64(b.Dy()))
	p.dc.DrawImage(img.img, -b.Min.X, -b.Min.Y)
	p.dc.Pop()
}
