/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"

	"doccanvas/internal/domain"
)

// Palette placement and sizing used when an element is dropped from the palette.
const (
	PaletteX = 50
	PaletteY = 50

	TextPlaceholder = "Double-click to edit"
	ShapeFill       = "#e2e8f0"
)

// DefaultStyle is the style every new element starts with.
func DefaultStyle() domain.Style {
	return domain.Style{
		FontSize:        14,
		FontFamily:      "Arial",
		Color:           "#000000",
		BackgroundColor: domain.Transparent,
		BorderColor:     "#94a3b8",
		BorderWidth:     1,
		TextAlign:       domain.AlignLeft,
	}
}

// Item names one palette entry.
type Item struct {
	Kind  domain.Kind
	Shape domain.ShapeKind
}

// PaletteItems lists the entries in the order the palette shows them.
func PaletteItems() []Item {
	return []Item{
		{Kind: domain.KindTextbox},
		{Kind: domain.KindImage},
		{Kind: domain.KindShape, Shape: domain.ShapeRectangle},
		{Kind: domain.KindShape, Shape: domain.ShapeCircle},
		{Kind: domain.KindShape, Shape: domain.ShapeTriangle},
		{Kind: domain.KindShape, Shape: domain.ShapeArrow},
		{Kind: domain.KindShape, Shape: domain.ShapeLine},
		{Kind: domain.KindVariable},
	}
}

// Label is a human readable name for the palette entry.
func (it Item) Label() string {
	switch it.Kind {
	case domain.KindTextbox:
		return "Text Box"
	case domain.KindImage:
		return "Image"
	case domain.KindVariable:
		return "Variable"
	}
	switch it.Shape {
	case domain.ShapeRectangle:
		return "Rectangle"
	case domain.ShapeCircle:
		return "Circle"
	case domain.ShapeTriangle:
		return "Triangle"
	case domain.ShapeArrow:
		return "Arrow"
	case domain.ShapeLine:
		return "Line"
	}
	return string(it.Kind)
}

// ParseItem resolves "textbox", "image", "variable" or a shape name such as
// "circle" to a palette entry.
func ParseItem(s string) (Item, error) {
	switch s {
	case string(domain.KindTextbox), "text":
		return Item{Kind: domain.KindTextbox}, nil
	case string(domain.KindImage):
		return Item{Kind: domain.KindImage}, nil
	case string(domain.KindVariable):
		return Item{Kind: domain.KindVariable}, nil
	}
	for _, it := range PaletteItems() {
		if it.Kind == domain.KindShape && string(it.Shape) == s {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("unknown palette item %q", s)
}

// NewElement builds an element with palette defaults. The ID and zIndex are
// left for Scene.Add to assign.
func NewElement(it Item) domain.Element {
	el := domain.Element{
		Kind:     it.Kind,
		Geometry: domain.Geometry{X: PaletteX, Y: PaletteY, Width: 100, Height: 100},
		Style:    DefaultStyle(),
	}
	switch it.Kind {
	case domain.KindTextbox:
		el.Width, el.Height = 200, 100
		el.Content = TextPlaceholder
	case domain.KindVariable:
		el.Width, el.Height = 200, 40
		el.Content = domain.VariableContent("variable")
	case domain.KindShape:
		el.ShapeKind = it.Shape
		if el.ShapeKind == "" {
			el.ShapeKind = domain.ShapeRectangle
		}
		el.Style.BackgroundColor = ShapeFill
		if el.ShapeKind == domain.ShapeLine {
			el.Width, el.Height = 150, 5
		}
	}
	return el
}
