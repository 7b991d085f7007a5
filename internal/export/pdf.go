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
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"doccanvas/internal/domain"
	"doccanvas/internal/vector"
)

// PDF writes the selected pages to w as one multi-page PDF. Canvas pixels
// map 1:1 to points. Text uses the built-in core fonts so it stays vector
// without embedding.
func PDF(doc domain.Document, w io.Writer, opt Options) error {
	pages, err := selectPages(doc, opt.Pages)
	if err != nil {
		return err
	}
	size := canvasOf(doc)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: size.Width, Ht: size.Height},
	})
	pdf.SetTitle(doc.Name, true)
	pdf.SetCreator("DocCanvas", false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Helvetica", "", 12)

	pp := &pdfPainter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), images: map[string]string{}}
	for _, idx := range pages {
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: size.Width, Ht: size.Height})
		renderPage(pp, doc, idx, opt)
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("render page %d: %w", idx+1, err)
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// PDFFile exports to outPath, creating parent directories.
func PDFFile(doc domain.Document, outPath string, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	var buf bytes.Buffer
	if err := PDF(doc, &buf, opt); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type pdfPainter struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	images map[string]string // data URI -> registered image name
}

func (p *pdfPainter) style(fill, stroke color.RGBA, width float64) string {
	s := ""
	if fill.A > 0 {
		p.pdf.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
		s += "F"
	}
	if stroke.A > 0 && width > 0 {
		p.pdf.SetDrawColor(int(stroke.R), int(stroke.G), int(stroke.B))
		p.pdf.SetLineWidth(width)
		s += "D"
	}
	return s
}

func (p *pdfPainter) rect(r vector.Rect, fill, stroke color.RGBA, width float64) {
	if s := p.style(fill, stroke, width); s != "" {
		p.pdf.Rect(r.X, r.Y, r.W, r.H, s)
	}
}

func (p *pdfPainter) ellipse(r vector.Rect, fill, stroke color.RGBA, width float64) {
	if s := p.style(fill, stroke, width); s != "" {
		c := r.Center()
		p.pdf.Ellipse(c.X, c.Y, r.W/2, r.H/2, 0, s)
	}
}

func (p *pdfPainter) polygon(pts []vector.Pt, fill color.RGBA) {
	if p.style(fill, color.RGBA{}, 0) == "" {
		return
	}
	out := make([]gofpdf.PointType, len(pts))
	for i, pt := range pts {
		out[i] = gofpdf.PointType{X: pt.X, Y: pt.Y}
	}
	p.pdf.Polygon(out, "F")
}

func (p *pdfPainter) line(a, b vector.Pt, c color.RGBA, width float64) {
	if p.style(color.RGBA{}, c, width) != "" {
		p.pdf.Line(a.X, a.Y, b.X, b.Y)
	}
}

func (p *pdfPainter) text(lines []placedLine, st domain.Style, ink color.RGBA) {
	if ink.A == 0 {
		return
	}
	style := ""
	if st.Bold {
		style += "B"
	}
	if st.Italic {
		style += "I"
	}
	if st.Underline {
		style += "U"
	}
	p.pdf.SetFont(coreFamily(st.FontFamily), style, fontSpecSize(st))
	p.pdf.SetTextColor(int(ink.R), int(ink.G), int(ink.B))
	for _, ln := range lines {
		p.pdf.Text(ln.X, ln.Baseline, p.tr(ln.Text))
	}
}

func (p *pdfPainter) image(r vector.Rect, img decodedImage) {
	name, ok := p.images[img.ref]
	if !ok {
		typ, data := pdfImageData(img)
		if data == nil {
			return
		}
		name = fmt.Sprintf("img%d", len(p.images)+1)
		p.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: typ}, bytes.NewReader(data))
		p.images[img.ref] = name
	}
	b := img.img.Bounds()
	cr := coverRect(r, b.Dx(), b.Dy())
	p.pdf.ClipRect(r.X, r.Y, r.W, r.H, false)
	p.pdf.ImageOptions(name, cr.X, cr.Y, cr.W, cr.H, false, gofpdf.ImageOptions{}, 0, "")
	p.pdf.ClipEnd()
}

// pdfImageData returns the bytes in a type gofpdf reads natively,
// re-encoding other formats as PNG.
func pdfImageData(img decodedImage) (string, []byte) {
	switch img.format {
	case "png":
		return "PNG", img.data
	case "jpeg":
		return "JPG", img.data
	case "gif":
		return "GIF", img.data
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img.img); err != nil {
		return "", nil
	}
	return "PNG", buf.Bytes()
}

// coreFamily maps a style family onto one of the PDF core fonts.
func coreFamily(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "courier"), strings.Contains(f, "mono"), strings.Contains(f, "consol"):
		return "Courier"
	case strings.Contains(f, "times"), strings.Contains(f, "georgia"), strings.Contains(f, "serif") && !strings.Contains(f, "sans"):
		return "Times"
	default:
		return "Helvetica"
	}
}

func fontSpecSize(st domain.Style) float64 { return float64(fontSpec(st).SizePt) }
