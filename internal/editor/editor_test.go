/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"doccanvas/internal/domain"
	"doccanvas/internal/scene"
	"doccanvas/internal/vector"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestEditor(t *testing.T, mut ...func(*Options)) *Editor {
	t.Helper()
	opts := Options{
		Format:     domain.FormatPptx,
		SnapToGrid: true,
		Logger:     quietLogger(),
		Now:        func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	for _, m := range mut {
		m(&opts)
	}
	return New(nil, opts)
}

func mustAdd(t *testing.T, e *Editor, it scene.Item) string {
	t.Helper()
	id, err := e.AddElement(it)
	if err != nil {
		t.Fatalf("add %+v: %v", it, err)
	}
	return id
}

func drag(t *testing.T, e *Editor, from, to vector.Pt) {
	t.Helper()
	if err := e.PointerDown(from); err != nil {
		t.Fatal(err)
	}
	if err := e.PointerMove(vector.Pt{X: (from.X + to.X) / 2, Y: (from.Y + to.Y) / 2}); err != nil {
		t.Fatal(err)
	}
	if err := e.PointerUp(to); err != nil {
		t.Fatal(err)
	}
}

var (
	textbox = scene.Item{Kind: domain.KindTextbox}
	circle  = scene.Item{Kind: domain.KindShape, Shape: domain.ShapeCircle}
)

func TestScenarioAddDragUndoRedo(t *testing.T) {
	e := newTestEditor(t)
	if len(e.Elements()) != 0 || e.PageCount() != 1 {
		t.Fatalf("expected one empty page")
	}
	tb := mustAdd(t, e, textbox)
	if els := e.Elements(); len(els) != 1 || els[0].ZIndex != 1 {
		t.Fatalf("after textbox: %+v", els)
	}
	c := mustAdd(t, e, circle)
	el, _ := e.Element(c)
	if len(e.Elements()) != 2 || el.ZIndex != 2 {
		t.Fatalf("circle z = %d", el.ZIndex)
	}
	afterCircle := e.Elements()

	// grab the textbox near its right edge, clear of the circle at 50..150
	// textbox origin (50,50); grab offset (180,10); target origin (15,15)
	drag(t, e, vector.Pt{X: 230, Y: 60}, vector.Pt{X: 195, Y: 25})
	got, _ := e.Element(tb)
	if got.X != 20 || got.Y != 20 {
		t.Fatalf("snap to nearest 10: got (%v,%v), want (20,20)", got.X, got.Y)
	}
	if i, n := e.HistoryPosition(); i != 3 || n != 4 {
		t.Fatalf("drag must record exactly once: index=%d len=%d", i, n)
	}

	mustUndo(t, e)
	got, _ = e.Element(tb)
	if got.X != 50 || got.Y != 50 {
		t.Fatalf("undo drag: textbox at (%v,%v)", got.X, got.Y)
	}
	mustUndo(t, e)
	if _, ok := e.Element(c); ok {
		t.Fatalf("second undo should remove the circle")
	}
	mustUndo(t, e)
	if len(e.Elements()) != 0 {
		t.Fatalf("third undo should remove the textbox")
	}
	if ok, _ := e.Undo(); ok {
		t.Fatalf("nothing left to undo")
	}
	for i := 0; i < 3; i++ {
		if ok, _ := e.Redo(); !ok {
			t.Fatalf("redo %d failed", i)
		}
	}
	// three redos restore the state up to and including the drag; step back
	// once to compare with the state right after adding the circle
	got, _ = e.Element(tb)
	if got.X != 20 || got.Y != 20 || len(e.Elements()) != 2 {
		t.Fatalf("redo x3 should end at the dragged state, textbox at (%v,%v)", got.X, got.Y)
	}
	mustUndo(t, e)
	if !reflect.DeepEqual(e.Elements(), afterCircle) {
		t.Fatalf("state mismatch after redo:\n got %+v\nwant %+v", e.Elements(), afterCircle)
	}
}

func mustUndo(t *testing.T, e *Editor) {
	t.Helper()
	ok, err := e.Undo()
	if err != nil || !ok {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
}

func TestHistoryRoundTripProperty(t *testing.T) {
	ops := []func(e *Editor){
		func(e *Editor) { mustAdd(t, e, textbox) },
		func(e *Editor) { mustAdd(t, e, circle) },
		func(e *Editor) { _ = e.BringToFront() },
		func(e *Editor) { _ = e.SendToBack() },
		func(e *Editor) { _ = e.Align(AlignRight) },
		func(e *Editor) { _ = e.SetProperty(FieldBackground, "#ff0000") },
		func(e *Editor) { _ = e.Copy(); _, _ = e.Paste() },
		func(e *Editor) { _ = e.DeleteSelected() },
	}
	for n := 1; n <= 16; n++ {
		e := newTestEditor(t)
		before := e.Elements()
		recorded := 0
		for i := 0; i < n; i++ {
			_, l0 := e.HistoryPosition()
			ops[i%len(ops)](e)
			if _, l1 := e.HistoryPosition(); l1 > l0 {
				recorded += l1 - l0
			}
		}
		for i := 0; i < recorded; i++ {
			mustUndo(t, e)
		}
		if !reflect.DeepEqual(e.Elements(), before) {
			t.Fatalf("n=%d: state after %d undos differs from the start", n, recorded)
		}
	}
}

func TestUndoRedoIsIdentity(t *testing.T) {
	e := newTestEditor(t)
	mustAdd(t, e, textbox)
	mustAdd(t, e, circle)
	_ = e.Align(AlignCenter)
	want := e.Elements()
	mustUndo(t, e)
	if ok, _ := e.Redo(); !ok {
		t.Fatalf("redo failed")
	}
	if !reflect.DeepEqual(e.Elements(), want) {
		t.Fatalf("undo+redo changed state")
	}
}

func TestNewMutationDropsRedo(t *testing.T) {
	e := newTestEditor(t)
	mustAdd(t, e, textbox) // s1
	mustAdd(t, e, circle)  // s2
	mustUndo(t, e)         // index 1
	mustAdd(t, e, circle)  // s3
	if i, n := e.HistoryPosition(); i != 2 || n != 3 {
		t.Fatalf("history should be [s0 s1 s3] at 2, got %d/%d", i, n)
	}
	if e.CanRedo() {
		t.Fatalf("redo must be unavailable")
	}
}

func TestUndoClearsStaleSelection(t *testing.T) {
	e := newTestEditor(t)
	id := mustAdd(t, e, textbox)
	if e.SelectedID() != id {
		t.Fatalf("new element should be selected")
	}
	mustUndo(t, e)
	if e.SelectedID() != "" {
		t.Fatalf("selection must not refer to a removed element")
	}
	if ok, err := e.UpdateElement(id, scene.MoveTo(1, 1)); ok || err != nil {
		t.Fatalf("stale id update should be a silent no-op, got %v %v", ok, err)
	}
	if _, n := e.HistoryPosition(); n != 2 {
		t.Fatalf("no-op must not record")
	}
}

func TestPressInShapeBoxSelectsShape(t *testing.T) {
	e := newTestEditor(t)
	c := mustAdd(t, e, circle)
	e.ClearSelection()

	corner := vector.Pt{X: 52, Y: 52}
	if err := e.PointerDown(corner); err != nil {
		t.Fatal(err)
	}
	if e.SelectedID() != c {
		t.Fatalf("selected %q, want circle %q", e.SelectedID(), c)
	}
	if err := e.PointerUp(corner); err != nil {
		t.Fatal(err)
	}
	if got := e.HoverID(corner); got != "" {
		t.Fatalf("hover outside the drawn circle = %q", got)
	}
	if got := e.HoverID(vector.Pt{X: 100, Y: 100}); got != c {
		t.Fatalf("hover at circle center = %q", got)
	}
}
