/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"doccanvas/internal/domain"
	"doccanvas/internal/scene"
)

// Field names an editable property of the selected element.
type Field string

const (
	FieldX           Field = "x"
	FieldY           Field = "y"
	FieldWidth       Field = "width"
	FieldHeight      Field = "height"
	FieldContent     Field = "content"
	FieldShape       Field = "shapeType"
	FieldFontSize    Field = "fontSize"
	FieldFontFamily  Field = "fontFamily"
	FieldColor       Field = "color"
	FieldBackground  Field = "backgroundColor"
	FieldBorderColor Field = "borderColor"
	FieldBorderWidth Field = "borderWidth"
	FieldBold        Field = "bold"
	FieldItalic      Field = "italic"
	FieldUnderline   Field = "underline"
	FieldTextAlign   Field = "textAlign"
)

// Fields lists the fields shown for an element, in form order.
func Fields(el domain.Element) []Field {
	out := []Field{FieldX, FieldY, FieldWidth, FieldHeight}
	switch {
	case el.IsText():
		out = append(out, FieldContent, FieldFontSize, FieldFontFamily, FieldColor,
			FieldBold, FieldItalic, FieldUnderline, FieldTextAlign)
	case el.Kind == domain.KindShape:
		out = append(out, FieldShape)
	}
	return append(out, FieldBackground, FieldBorderColor, FieldBorderWidth)
}

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	f := Field(strings.TrimSpace(s))
	if _, ok := fieldValue(domain.Element{}, f); !ok {
		return "", fmt.Errorf("unknown property %q", s)
	}
	return f, nil
}

// Property returns the display value of a field of the selected element,
// including any staged but uncommitted edit.
func (e *Editor) Property(f Field) (string, bool) {
	if v, ok := e.staged[f]; ok {
		return v, true
	}
	el, ok := e.Selection()
	if !ok {
		return "", false
	}
	return fieldValue(el, f)
}

func fieldValue(el domain.Element, f Field) (string, bool) {
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	switch f {
	case FieldX:
		return num(el.X), true
	case FieldY:
		return num(el.Y), true
	case FieldWidth:
		return num(el.Width), true
	case FieldHeight:
		return num(el.Height), true
	case FieldContent:
		return el.Content, true
	case FieldShape:
		return string(el.ShapeKind), true
	case FieldFontSize:
		return num(el.Style.FontSize), true
	case FieldFontFamily:
		return el.Style.FontFamily, true
	case FieldColor:
		return el.Style.Color, true
	case FieldBackground:
		return el.Style.BackgroundColor, true
	case FieldBorderColor:
		return el.Style.BorderColor, true
	case FieldBorderWidth:
		return num(el.Style.BorderWidth), true
	case FieldBold:
		return strconv.FormatBool(el.Style.Bold), true
	case FieldItalic:
		return strconv.FormatBool(el.Style.Italic), true
	case FieldUnderline:
		return strconv.FormatBool(el.Style.Underline), true
	case FieldTextAlign:
		return string(el.Style.TextAlign), true
	}
	return "", false
}

// Stage buffers a field edit, e.g. per keystroke in a text input. Nothing is
// applied or recorded until CommitProperties.
func (e *Editor) Stage(f Field, value string) error {
	if err := e.guard(); err != nil {
		return err
	}
	if e.selected == "" {
		return ErrNoSelection
	}
	if _, ok := fieldValue(domain.Element{}, f); !ok {
		return &ValidationError{Field: string(f), Msg: "unknown property"}
	}
	e.staged[f] = value
	return nil
}

// Staged reports whether uncommitted edits exist.
func (e *Editor) Staged() bool { return len(e.staged) > 0 }

// DiscardProperties drops staged edits.
func (e *Editor) DiscardProperties() { clear(e.staged) }

// CommitProperties validates every staged edit and applies them as one
// update with one history snapshot. On a validation error nothing is applied
// and the edits stay staged.
func (e *Editor) CommitProperties() error {
	if err := e.guard(); err != nil {
		return err
	}
	if len(e.staged) == 0 {
		return nil
	}
	if e.state == StateDragging {
		e.finishDrag()
		e.state = StateIdle
		e.drag = dragState{}
	}
	if err := e.commitStaged(); err != nil {
		return err
	}
	clear(e.staged)
	return nil
}

// SetProperty stages and commits a single field, as a checkbox or select does.
func (e *Editor) SetProperty(f Field, value string) error {
	if err := e.Stage(f, value); err != nil {
		return err
	}
	return e.CommitProperties()
}

func (e *Editor) commitStaged() error {
	el, ok := e.Selection()
	if !ok {
		return ErrNoSelection
	}
	p, err := buildPatch(el, e.staged)
	if err != nil {
		return err
	}
	e.commit("properties", func(s *scene.Scene) bool { return s.Update(el.ID, p) })
	return nil
}

func buildPatch(el domain.Element, staged map[Field]string) (scene.Patch, error) {
	var p scene.Patch
	// deterministic order so the first reported error is stable
	fields := make([]string, 0, len(staged))
	for f := range staged {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)
	for _, name := range fields {
		f := Field(name)
		raw := staged[f]
		v := strings.TrimSpace(raw)
		bad := func(msg string) error { return &ValidationError{Field: name, Msg: msg} }
		switch f {
		case FieldX, FieldY, FieldWidth, FieldHeight, FieldBorderWidth, FieldFontSize:
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return p, bad(fmt.Sprintf("%q is not a number", raw))
			}
			if n < 0 {
				return p, bad("must not be negative")
			}
			if f == FieldFontSize && n == 0 {
				return p, bad("must be greater than zero")
			}
			switch f {
			case FieldX:
				p.X = &n
			case FieldY:
				p.Y = &n
			case FieldWidth:
				p.Width = &n
			case FieldHeight:
				p.Height = &n
			case FieldBorderWidth:
				p.Style.BorderWidth = &n
			case FieldFontSize:
				p.Style.FontSize = &n
			}
		case FieldContent:
			if !el.IsText() {
				return p, bad("element has no text")
			}
			if v == "" {
				return p, bad("text must not be empty")
			}
			c := raw
			p.Content = &c
		case FieldShape:
			if el.Kind != domain.KindShape {
				return p, bad("element is not a shape")
			}
			sk, err := parseShape(v)
			if err != nil {
				return p, bad(err.Error())
			}
			p.ShapeKind = &sk
		case FieldFontFamily:
			if v == "" {
				return p, bad("font family must not be empty")
			}
			p.Style.FontFamily = &v
		case FieldColor, FieldBackground, FieldBorderColor:
			c, ok := domain.NormalizeColor(v)
			if !ok {
				return p, bad(fmt.Sprintf("%q is not a color", raw))
			}
			switch f {
			case FieldColor:
				p.Style.Color = &c
			case FieldBackground:
				p.Style.BackgroundColor = &c
			default:
				p.Style.BorderColor = &c
			}
		case FieldBold, FieldItalic, FieldUnderline:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return p, bad(fmt.Sprintf("%q is not true or false", raw))
			}
			switch f {
			case FieldBold:
				p.Style.Bold = &b
			case FieldItalic:
				p.Style.Italic = &b
			default:
				p.Style.Underline = &b
			}
		case FieldTextAlign:
			a, err := domain.ParseTextAlign(v)
			if err != nil {
				return p, bad(err.Error())
			}
			p.Style.TextAlign = &a
		default:
			return p, bad("unknown property")
		}
	}
	return p, nil
}

func parseShape(s string) (domain.ShapeKind, error) {
	sk := domain.ShapeKind(strings.ToLower(s))
	switch sk {
	case domain.ShapeRectangle, domain.ShapeCircle, domain.ShapeTriangle, domain.ShapeArrow, domain.ShapeLine:
		return sk, nil
	}
	return "", fmt.Errorf("unknown shape %q", s)
}
