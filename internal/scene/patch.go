/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "doccanvas/internal/domain"

// Patch is a partial element update; nil fields are left untouched.
type Patch struct {
	X, Y          *float64
	Width, Height *float64
	Content       *string
	ImageRef      *string
	ShapeKind     *domain.ShapeKind
	Style         StylePatch
}

// StylePatch is the style part of a Patch.
type StylePatch struct {
	FontSize        *float64
	FontFamily      *string
	Color           *string
	BackgroundColor *string
	BorderColor     *string
	BorderWidth     *float64
	Bold            *bool
	Italic          *bool
	Underline       *bool
	TextAlign       *domain.TextAlign
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.X == nil && p.Y == nil && p.Width == nil && p.Height == nil &&
		p.Content == nil && p.ImageRef == nil && p.ShapeKind == nil && p.Style.Empty()
}

func (s StylePatch) Empty() bool {
	return s == StylePatch{}
}

// Apply returns el with the patch applied. Geometry is clamped to >= 0.
func (p Patch) Apply(el domain.Element) domain.Element {
	setF(&el.X, p.X)
	setF(&el.Y, p.Y)
	setF(&el.Width, p.Width)
	setF(&el.Height, p.Height)
	if p.Content != nil {
		el.Content = *p.Content
	}
	if p.ImageRef != nil {
		el.ImageRef = *p.ImageRef
	}
	if p.ShapeKind != nil && el.Kind == domain.KindShape {
		el.ShapeKind = *p.ShapeKind
	}
	el.Style = p.Style.Apply(el.Style)
	el.Geometry = clampGeometry(el.Geometry)
	return el
}

// Apply returns st with the patch applied.
func (s StylePatch) Apply(st domain.Style) domain.Style {
	setF(&st.FontSize, s.FontSize)
	setS(&st.FontFamily, s.FontFamily)
	setS(&st.Color, s.Color)
	setS(&st.BackgroundColor, s.BackgroundColor)
	setS(&st.BorderColor, s.BorderColor)
	setF(&st.BorderWidth, s.BorderWidth)
	setB(&st.Bold, s.Bold)
	setB(&st.Italic, s.Italic)
	setB(&st.Underline, s.Underline)
	if s.TextAlign != nil {
		st.TextAlign = *s.TextAlign
	}
	if st.FontSize < 0 {
		st.FontSize = 0
	}
	if st.BorderWidth < 0 {
		st.BorderWidth = 0
	}
	return st
}

// MoveTo is a shorthand patch for a position change.
func MoveTo(x, y float64) Patch { return Patch{X: &x, Y: &y} }

// F, S and B return pointers for building patches inline.
func F(v float64) *float64 { return &v }
func S(v string) *string   { return &v }
func B(v bool) *bool       { return &v }

func setF(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setS(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setB(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
