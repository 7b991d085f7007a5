/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the document model shared by the editor, storage and exporters.
// JSON field names follow the saved template structure handed to the save callback.

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what an element draws.
type Kind string

const (
	KindTextbox  Kind = "textbox"
	KindImage    Kind = "image"
	KindShape    Kind = "shape"
	KindVariable Kind = "variable" // textbox bound to a {{name}} placeholder
)

// ShapeKind is only meaningful when Kind is KindShape.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeTriangle  ShapeKind = "triangle"
	ShapeArrow     ShapeKind = "arrow"
	ShapeLine      ShapeKind = "line"
)

// TextAlign is the horizontal alignment of text inside an element.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Geometry is the element box in page-local canvas pixels; X,Y is the top-left corner.
type Geometry struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Style is always fully populated once an element exists.
type Style struct {
	FontSize        float64   `json:"fontSize"`
	FontFamily      string    `json:"fontFamily"`
	Color           string    `json:"color"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
	BorderWidth     float64   `json:"borderWidth"`
	Bold            bool      `json:"bold"`
	Italic          bool      `json:"italic"`
	Underline       bool      `json:"underline"`
	TextAlign       TextAlign `json:"textAlign"`
}

// Element is a placeable object on one page. It holds no pointers, maps or
// slices, so a plain value copy is a deep copy.
type Element struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	ShapeKind ShapeKind `json:"shapeType,omitempty"`
	Geometry
	ZIndex   int    `json:"zIndex"`
	Content  string `json:"content,omitempty"`
	ImageRef string `json:"imageUrl,omitempty"`
	Style    Style  `json:"style"`
}

// IsText reports whether the element renders editable text.
func (e Element) IsText() bool { return e.Kind == KindTextbox || e.Kind == KindVariable }

// Page is one canvas of a document. ID is stable for the lifetime of the page
// and is never persisted as an ordering key; order is the slice order.
type Page struct {
	ID       string    `json:"id"`
	Elements []Element `json:"elements"`
}

// Size is a width/height pair in canvas pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document is the complete structure handed to the save callback.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Format     Format    `json:"format"`
	Pages      []Page    `json:"pages"`
	CanvasSize Size      `json:"canvasSize"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Clone returns a copy that shares no element slices with d.
func (d Document) Clone() Document {
	out := d
	out.Pages = make([]Page, len(d.Pages))
	for i, p := range d.Pages {
		out.Pages[i] = Page{ID: p.ID, Elements: append([]Element(nil), p.Elements...)}
	}
	return out
}

// ElementCount returns the number of elements across all pages.
func (d Document) ElementCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Elements)
	}
	return n
}

// NewID returns a fresh identifier with a readable prefix, e.g. "elem_<uuid>".
// IDs are random and never reused.
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// VariableContent wraps a variable name as a placeholder.
func VariableContent(name string) string {
	return "{{" + strings.TrimSpace(name) + "}}"
}

// VariableName extracts the name from a {{name}} placeholder.
func VariableName(content string) (string, bool) {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "{{") || !strings.HasSuffix(s, "}}") || len(s) <= 4 {
		return "", false
	}
	name := strings.TrimSpace(s[2 : len(s)-2])
	if name == "" {
		return "", false
	}
	return name, true
}

// ParseTextAlign validates a text alignment value.
func ParseTextAlign(s string) (TextAlign, error) {
	switch a := TextAlign(strings.ToLower(strings.TrimSpace(s))); a {
	case AlignLeft, AlignCenter, AlignRight:
		return a, nil
	}
	return "", fmt.Errorf("unknown text alignment %q", s)
}
