/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

// Text measurement and line breaking for element content.
// All measurement goes through a Provider so exporters and tests can swap
// font engines without changing the wrapping rules.

import (
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Weights used by FontSpec.
const (
	WeightRegular = 400
	WeightBold    = 700
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string // logical family name, e.g. "Arial"
	SizePt float32
	Weight int // 100..900
	Italic bool
}

// Bold reports whether the spec asks for a bold face.
func (s FontSpec) Bold() bool { return s.Weight >= 600 }

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// LineHeight is the distance between consecutive baselines.
func (m Metrics) LineHeight() float32 { return m.Ascent + m.Descent + m.LineGap }

// Span is a run of text with the same font/style.
type Span struct {
	Text string
	Font FontSpec
}

// Line is a single laid out line with width and ascent/descent.
type Line struct {
	Spans   []Span
	Width   float32
	Ascent  float32
	Descent float32
}

// Text returns the line content without trailing spaces.
func (l Line) Text() string {
	var b strings.Builder
	for _, s := range l.Spans {
		b.WriteString(s.Text)
	}
	return strings.TrimRight(b.String(), " ")
}

// TextBox is the result of laying out text into a box width.
type TextBox struct {
	Lines   []Line
	Width   float32
	Height  float32
	Metrics Metrics
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// Layouter performs line-breaking and measurement.
type Layouter interface {
	Layout(spans []Span, maxWidth float32) (TextBox, error)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic tests.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// GoProvider renders every family with the embedded Go fonts, picking the
// bold and italic cuts from the spec. Faces are cached per size and style.
type GoProvider struct {
	DPI float64 // default 72 if zero

	mu    sync.Mutex
	faces map[goKey]font.Face
}

type goKey struct {
	size         float32
	bold, italic bool
}

var (
	goFontsOnce sync.Once
	goFonts     map[[2]bool]*truetype.Font
)

func loadGoFonts() {
	goFonts = map[[2]bool]*truetype.Font{}
	for k, ttf := range map[[2]bool][]byte{
		{false, false}: goregular.TTF,
		{true, false}:  gobold.TTF,
		{false, true}:  goitalic.TTF,
		{true, true}:   gobolditalic.TTF,
	} {
		// The embedded fonts always parse.
		f, _ := truetype.Parse(ttf)
		goFonts[k] = f
	}
}

// NewGoProvider returns a provider backed by the Go font family.
func NewGoProvider() *GoProvider { return &GoProvider{} }

func (p *GoProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	goFontsOnce.Do(loadGoFonts)
	k := goKey{size: spec.SizePt, bold: spec.Bold(), italic: spec.Italic}
	p.mu.Lock()
	defer p.mu.Unlock()
	if f, ok := p.faces[k]; ok {
		return f, metricsOf(f)
	}
	ttf := goFonts[[2]bool{k.bold, k.italic}]
	if ttf == nil {
		return BasicProvider{}.Resolve(spec)
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	face := truetype.NewFace(ttf, &truetype.Options{Size: float64(spec.SizePt), DPI: dpi, Hinting: font.HintingFull})
	if p.faces == nil {
		p.faces = map[goKey]font.Face{}
	}
	p.faces[k] = face
	return face, metricsOf(face)
}

// WordWrapLayouter breaks on spaces and newlines; it does not perform
// shaping or hyphenation. Words wider than the box are split by rune.
type WordWrapLayouter struct{ Provider Provider }

func NewWordWrap(provider Provider) *WordWrapLayouter { return &WordWrapLayouter{Provider: provider} }

func (l *WordWrapLayouter) Layout(spans []Span, maxWidth float32) (TextBox, error) {
	if l.Provider == nil {
		l.Provider = BasicProvider{}
	}
	// Line metrics follow the first span; a box uses one style.
	var spec FontSpec
	if len(spans) > 0 {
		spec = spans[0].Font
	}
	_, met := l.Provider.Resolve(spec)
	cur := Line{Ascent: met.Ascent, Descent: met.Descent}
	box := TextBox{Metrics: met}
	addLine := func() {
		box.Lines = append(box.Lines, cur)
		if cur.Width > box.Width {
			box.Width = cur.Width
		}
		box.Height += met.LineHeight()
		cur = Line{Ascent: met.Ascent, Descent: met.Descent}
	}
	for _, sp := range spans {
		if sp.Text == "" {
			continue
		}
		face, _ := l.Provider.Resolve(sp.Font)
		drawer := &font.Drawer{Face: face}
		spaceW := advance(drawer, " ")
		start := 0
		for i := 0; i <= len(sp.Text); i++ {
			if i < len(sp.Text) && sp.Text[i] != ' ' && sp.Text[i] != '\n' {
				continue
			}
			word := sp.Text[start:i]
			w := advance(drawer, word)
			if cur.Width > 0 && maxWidth > 0 && cur.Width+w > maxWidth {
				addLine()
			}
			for maxWidth > 0 && w > maxWidth && word != "" {
				head, rest := splitToWidth(drawer, word, maxWidth)
				cur.Spans = append(cur.Spans, Span{Text: head, Font: sp.Font})
				cur.Width += advance(drawer, head)
				addLine()
				word = rest
				w = advance(drawer, word)
			}
			if word != "" {
				cur.Spans = append(cur.Spans, Span{Text: word, Font: sp.Font})
				cur.Width += w
			}
			if i < len(sp.Text) {
				switch sp.Text[i] {
				case ' ':
					if cur.Width > 0 {
						cur.Spans = append(cur.Spans, Span{Text: " ", Font: sp.Font})
						cur.Width += spaceW
					}
				case '\n':
					addLine()
				}
			}
			start = i + 1
		}
	}
	if len(cur.Spans) > 0 || len(box.Lines) == 0 {
		addLine()
	}
	return box, nil
}

// splitToWidth returns the longest rune prefix of s that fits maxWidth
// (at least one rune) and the remainder.
func splitToWidth(d *font.Drawer, s string, maxWidth float32) (string, string) {
	cut := 0
	for i, r := range s {
		next := i + len(string(r))
		if cut > 0 && advance(d, s[:next]) > maxWidth {
			break
		}
		cut = next
	}
	return s[:cut], s[cut:]
}

func advance(d *font.Drawer, s string) float32 {
	return float32(d.MeasureString(s)) / 64 // fixed.Int26_6 to px
}

// Measure provides a quick way to measure text width/height without line-breaks.
func Measure(provider Provider, spans []Span) (w, h float32) {
	if provider == nil {
		provider = BasicProvider{}
	}
	var spec FontSpec
	if len(spans) > 0 {
		spec = spans[0].Font
	}
	_, met := provider.Resolve(spec)
	var width float32
	for _, sp := range spans {
		face, _ := provider.Resolve(sp.Font)
		width += advance(&font.Drawer{Face: face}, sp.Text)
	}
	return width, met.Ascent + met.Descent
}
