/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"

	"doccanvas/internal/clipboard"
	"doccanvas/internal/domain"
	"doccanvas/internal/scene"
)

// AddElement places a palette item on the active page, on top of every other
// element, and selects it.
func (e *Editor) AddElement(it scene.Item) (string, error) {
	if err := e.guard(); err != nil {
		return "", err
	}
	e.settle()
	var id string
	e.commit("add", func(s *scene.Scene) bool {
		id = s.Add(scene.NewElement(it))
		return true
	})
	e.setSelection(id)
	return id, nil
}

// UpdateElement applies a patch to an element on the active page. Unknown ids
// are ignored and reported with false.
func (e *Editor) UpdateElement(id string, p scene.Patch) (bool, error) {
	if err := e.guard(); err != nil {
		return false, err
	}
	e.settle()
	return e.commit("update", func(s *scene.Scene) bool { return s.Update(id, p) }), nil
}

// DeleteElement removes an element from the active page.
func (e *Editor) DeleteElement(id string) (bool, error) {
	if err := e.guard(); err != nil {
		return false, err
	}
	e.settle()
	return e.commit("delete", func(s *scene.Scene) bool { return s.Remove(id) }), nil
}

// DeleteSelected removes the selected element.
func (e *Editor) DeleteSelected() error {
	if err := e.guard(); err != nil {
		return err
	}
	if e.selected == "" {
		return ErrNoSelection
	}
	_, err := e.DeleteElement(e.selected)
	return err
}

// Copy stores a value copy of the selected element.
func (e *Editor) Copy() error {
	if err := e.guard(); err != nil {
		return err
	}
	el, ok := e.Selection()
	if !ok {
		return ErrNoSelection
	}
	if err := e.clip.Copy(el); err != nil {
		e.log.Warn("system clipboard unavailable", slog.String("err", err.Error()))
	}
	return nil
}

// HasClipboard reports whether Paste has something to paste.
func (e *Editor) HasClipboard() bool { return e.clip.Has() }

// ImportClipboard loads an element copied by another session through the
// system clipboard.
func (e *Editor) ImportClipboard() error {
	if err := e.guard(); err != nil {
		return err
	}
	return e.clip.Import()
}

// Paste adds a copy of the clipboard payload to the active page with a fresh
// id, offset by the paste delta and placed on top. The new element is selected.
func (e *Editor) Paste() (string, error) {
	if err := e.guard(); err != nil {
		return "", err
	}
	payload, ok := e.clip.Payload()
	if !ok {
		return "", ErrClipboardEmpty
	}
	e.settle()
	el := clipboard.Offset(payload, e.pasteOffset, e.pasteOffset)
	el.ID = domain.NewID("elem")
	var id string
	e.commit("paste", func(s *scene.Scene) bool {
		id = s.Add(el)
		return true
	})
	e.setSelection(id)
	return id, nil
}

// BringToFront raises the selected element above every other element.
func (e *Editor) BringToFront() error { return e.reorder(scene.Front) }

// SendToBack lowers the selected element below every other element.
func (e *Editor) SendToBack() error { return e.reorder(scene.Back) }

func (e *Editor) reorder(dir scene.Direction) error {
	if err := e.guard(); err != nil {
		return err
	}
	if e.selected == "" {
		return ErrNoSelection
	}
	e.settle()
	op := "front"
	if dir == scene.Back {
		op = "back"
	}
	id := e.selected
	e.commit(op, func(s *scene.Scene) bool { return s.ReorderZ(id, dir) })
	return nil
}

// Alignment is a horizontal placement relative to the canvas.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Align moves the selected element horizontally against the canvas width of
// the active format. Only x changes.
func (e *Editor) Align(a Alignment) error {
	if err := e.guard(); err != nil {
		return err
	}
	el, ok := e.Selection()
	if !ok {
		return ErrNoSelection
	}
	e.settle()
	cw := e.format.Canvas().Width
	var x float64
	switch a {
	case AlignCenter:
		x = (cw - el.Width) / 2
	case AlignRight:
		x = cw - el.Width
	}
	e.commit("align", func(s *scene.Scene) bool { return s.Update(el.ID, scene.Patch{X: &x}) })
	return nil
}
