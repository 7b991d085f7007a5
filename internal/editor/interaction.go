/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"strings"

	"doccanvas/internal/domain"
	"doccanvas/internal/scene"
	"doccanvas/internal/vector"
)

// State is the pointer interaction state.
type State int

const (
	StateIdle State = iota
	// StateSelecting is a pressed pointer that has not moved yet.
	StateSelecting
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StateDragging:
		return "dragging"
	}
	return "idle"
}

// GuideThreshold is the distance in canvas pixels within which smart guides
// are shown while dragging.
const GuideThreshold = 6

type dragState struct {
	id    string
	grab  vector.Pt // pointer minus element origin at press time
	start vector.Pt // element origin at press time
}

// State returns the current interaction state.
func (e *Editor) State() State { return e.state }

// Guides returns the alignment guides for the drag in progress.
func (e *Editor) Guides() []vector.GuideLine {
	return append([]vector.GuideLine(nil), e.guides...)
}

// HoverID returns the element whose drawn shape is under p, for cursor
// feedback. Selection itself uses the element box.
func (e *Editor) HoverID(p vector.Pt) string {
	if e.closed {
		return ""
	}
	el, ok := e.cur().scene.ShapeAt(p)
	if !ok {
		return ""
	}
	return el.ID
}

// PointerDown handles a press at p in page coordinates. Pressing an element
// selects it and arms a drag; pressing empty canvas clears the selection.
func (e *Editor) PointerDown(p vector.Pt) error {
	if err := e.guard(); err != nil {
		return err
	}
	e.settle()
	e.focused = true
	el, ok := e.cur().scene.HitTest(p)
	if !ok {
		e.setSelection("")
		e.state = StateSelecting
		return nil
	}
	e.setSelection(el.ID)
	e.drag = dragState{
		id:    el.ID,
		grab:  p.Sub(vector.Pt{X: el.X, Y: el.Y}),
		start: vector.Pt{X: el.X, Y: el.Y},
	}
	e.state = StateSelecting
	return nil
}

// PointerMove moves the armed element so the grab point follows p. The
// origin is snapped to the grid when snapping is on and clamped to >= 0.
// Intermediate positions are not recorded.
func (e *Editor) PointerMove(p vector.Pt) error {
	if err := e.guard(); err != nil {
		return err
	}
	if e.drag.id == "" || e.state == StateIdle {
		return nil
	}
	e.state = StateDragging
	e.moveDragged(p)
	return nil
}

func (e *Editor) moveDragged(p vector.Pt) {
	grid := 0.0
	if e.snap {
		grid = e.format.Canvas().Grid
	}
	o := vector.DragOrigin(p, e.drag.grab, grid)
	s := e.cur().scene
	if !s.Update(e.drag.id, scene.MoveTo(o.X, o.Y)) {
		// element vanished under the pointer
		e.drag = dragState{}
		e.state = StateIdle
		e.guides = nil
		return
	}
	e.guides = e.computeGuides(e.drag.id)
	e.emit(Event{Kind: EventChanged, PageID: e.cur().id, ElementID: e.drag.id, Op: "drag"})
}

func (e *Editor) computeGuides(id string) []vector.GuideLine {
	el, ok := e.cur().scene.Find(id)
	if !ok {
		return nil
	}
	c := e.format.Canvas()
	anchors := []vector.Anchor{{Rect: vector.R(0, 0, c.Width, c.Height), Weight: 2}}
	for _, o := range e.cur().scene.Elements() {
		if o.ID != id {
			anchors = append(anchors, vector.Anchor{Rect: scene.Bounds(o), Weight: 1})
		}
	}
	_, guides := vector.ComputeSmartGuides(scene.Bounds(el), anchors,
		vector.SnapOptions{Threshold: GuideThreshold, SnapToEdges: true, SnapToCenters: true})
	return guides
}

// PointerUp ends the gesture. A drag that changed the element's position is
// recorded as exactly one history snapshot.
func (e *Editor) PointerUp(p vector.Pt) error {
	if err := e.guard(); err != nil {
		return err
	}
	if e.state == StateDragging {
		e.moveDragged(p)
		e.finishDrag()
	}
	e.state = StateIdle
	e.drag = dragState{}
	e.guides = nil
	return nil
}

// CancelDrag puts a dragged element back where the gesture started without
// recording anything.
func (e *Editor) CancelDrag() {
	if e.state == StateDragging {
		e.cur().scene.Update(e.drag.id, scene.MoveTo(e.drag.start.X, e.drag.start.Y))
		e.emit(Event{Kind: EventChanged, PageID: e.cur().id, ElementID: e.drag.id, Op: "drag-cancel"})
	}
	e.state = StateIdle
	e.drag = dragState{}
	e.guides = nil
}

func (e *Editor) finishDrag() {
	id := e.drag.id
	el, ok := e.cur().scene.Find(id)
	e.state = StateIdle
	e.guides = nil
	if !ok || (el.X == e.drag.start.X && el.Y == e.drag.start.Y) {
		return
	}
	// the scene already holds the final position; record it once
	e.commit("move", func(*scene.Scene) bool { return true })
}

// EditAction is what a double-click asks the host to open.
type EditAction int

const (
	EditNone EditAction = iota
	// EditText asks for a text editor seeded with the element content.
	EditText
	// EditImage asks for a file chooser feeding BeginImageUpload.
	EditImage
)

// DoubleClick returns the editing affordance for the element under p.
func (e *Editor) DoubleClick(p vector.Pt) (EditAction, domain.Element, error) {
	if err := e.guard(); err != nil {
		return EditNone, domain.Element{}, err
	}
	e.settle()
	el, ok := e.cur().scene.HitTest(p)
	if !ok {
		return EditNone, domain.Element{}, nil
	}
	e.setSelection(el.ID)
	switch {
	case el.IsText():
		return EditText, el, nil
	case el.Kind == domain.KindImage && el.ImageRef == "":
		return EditImage, el, nil
	}
	return EditNone, el, nil
}

// CommitText sets the content of a text element. Empty content is refused.
func (e *Editor) CommitText(id, content string) error {
	if err := e.guard(); err != nil {
		return err
	}
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: string(FieldContent), Msg: "text must not be empty"}
	}
	el, ok := e.cur().scene.Find(id)
	if !ok {
		return nil
	}
	if !el.IsText() {
		return &ValidationError{Field: string(FieldContent), Msg: "element has no text"}
	}
	e.settle()
	e.commit("text", func(s *scene.Scene) bool { return s.Update(id, scene.Patch{Content: &content}) })
	return nil
}
