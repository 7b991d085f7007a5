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
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"doccanvas/internal/domain"
	"doccanvas/internal/vector"
)

// SVG writes page idx as a standalone SVG document. The viewBox is the
// canvas, so one user unit is one canvas pixel.
func SVG(doc domain.Document, idx int, w io.Writer, opt Options) error {
	if _, err := selectPages(doc, []int{idx}); err != nil {
		return err
	}
	size := canvasOf(doc)
	sp := &svgPainter{}
	fmt.Fprintf(&sp.buf, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(&sp.buf, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\">\n",
		num(size.Width), num(size.Height), num(size.Width), num(size.Height))
	fmt.Fprintf(&sp.buf, "  <title>%s</title>\n", esc(doc.Name))
	renderPage(sp, doc, idx, opt)
	sp.buf.WriteString("</svg>\n")
	if _, err := w.Write(sp.buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// SVGPages writes one page-<n>.svg per selected page into dir and returns
// the written paths.
func SVGPages(doc domain.Document, dir string, opt Options) ([]string, error) {
	pages, err := selectPages(doc, opt.Pages)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	var out []string
	for _, idx := range pages {
		var buf bytes.Buffer
		if err := SVG(doc, idx, &buf, opt); err != nil {
			return out, err
		}
		name := filepath.Join(dir, pageFileName(idx, "svg"))
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			return out, fmt.Errorf("write svg: %w", err)
		}
		out = append(out, name)
	}
	return out, nil
}

func pageFileName(idx int, ext string) string { return fmt.Sprintf("page-%d.%s", idx+1, ext) }

type svgPainter struct{ buf bytes.Buffer }

func (p *svgPainter) paintAttrs(fill, stroke color.RGBA, width float64) string {
	s := fmt.Sprintf(" fill=\"%s\"", hex(fill))
	if stroke.A > 0 && width > 0 {
		s += fmt.Sprintf(" stroke=\"%s\" stroke-width=\"%s\"", hex(stroke), num(width))
	}
	return s
}

func (p *svgPainter) rect(r vector.Rect, fill, stroke color.RGBA, width float64) {
	if fill.A == 0 && (stroke.A == 0 || width <= 0) {
		return
	}
	fmt.Fprintf(&p.buf, "  <rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\"%s/>\n",
		num(r.X), num(r.Y), num(r.W), num(r.H), p.paintAttrs(fill, stroke, width))
}

func (p *svgPainter) ellipse(r vector.Rect, fill, stroke color.RGBA, width float64) {
	if fill.A == 0 && (stroke.A == 0 || width <= 0) {
		return
	}
	c := r.Center()
	fmt.Fprintf(&p.buf, "  <ellipse cx=\"%s\" cy=\"%s\" rx=\"%s\" ry=\"%s\"%s/>\n",
		num(c.X), num(c.Y), num(r.W/2), num(r.H/2), p.paintAttrs(fill, stroke, width))
}

func (p *svgPainter) polygon(pts []vector.Pt, fill color.RGBA) {
	if fill.A == 0 {
		return
	}
	coords := make([]string, len(pts))
	for i, pt := range pts {
		coords[i] = num(pt.X) + "," + num(pt.Y)
	}
	fmt.Fprintf(&p.buf, "  <polygon points=\"%s\" fill=\"%s\"/>\n", strings.Join(coords, " "), hex(fill))
}

func (p *svgPainter) line(a, b vector.Pt, c color.RGBA, width float64) {
	if c.A == 0 || width <= 0 {
		return
	}
	fmt.Fprintf(&p.buf, "  <line x1=\"%s\" y1=\"%s\" x2=\"%s\" y2=\"%s\" stroke=\"%s\" stroke-width=\"%s\"/>\n",
		num(a.X), num(a.Y), num(b.X), num(b.Y), hex(c), num(width))
}

func (p *svgPainter) text(lines []placedLine, st domain.Style, ink color.RGBA) {
	if ink.A == 0 {
		return
	}
	attrs := fmt.Sprintf(" font-family=\"%s\" font-size=\"%s\" fill=\"%s\"", esc(st.FontFamily), num(fontSpecSize(st)), hex(ink))
	if st.Bold {
		attrs += " font-weight=\"bold\""
	}
	if st.Italic {
		attrs += " font-style=\"italic\""
	}
	if st.Underline {
		attrs += " text-decoration=\"underline\""
	}
	for _, ln := range lines {
		fmt.Fprintf(&p.buf, "  <text x=\"%s\" y=\"%s\"%s xml:space=\"preserve\">%s</text>\n",
			num(ln.X), num(ln.Baseline), attrs, esc(ln.Text))
	}
}

// image relies on preserveAspectRatio slice for the cover fit; the image
// element clips to its own box.
func (p *svgPainter) image(r vector.Rect, img decodedImage) {
	fmt.Fprintf(&p.buf, "  <image x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" preserveAspectRatio=\"xMidYMid slice\" href=\"%s\"/>\n",
		num(r.X), num(r.Y), num(r.W), num(r.H), esc(img.ref))
}

func hex(c color.RGBA) string {
	if c.A == 0 {
		return "none"
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// num formats v with at most two decimals, rounding halves away from zero.
func num(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
