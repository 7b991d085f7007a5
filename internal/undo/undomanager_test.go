/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"doccanvas/internal/domain"
)

func elems(ids ...string) []domain.Element {
	out := make([]domain.Element, 0, len(ids))
	for i, id := range ids {
		out = append(out, domain.Element{ID: id, ZIndex: i + 1})
	}
	return out
}

func TestTrackUndoRedoBasic(t *testing.T) {
	tr := NewTrack(nil, 0)
	if tr.CanUndo() || tr.CanRedo() || tr.Index() != 0 || tr.Len() != 1 {
		t.Fatalf("fresh track should hold one snapshot at index 0")
	}
	if _, ok := tr.Undo(); ok {
		t.Fatalf("undo at index 0 must report nothing to undo")
	}
	tr.Record(elems("a"))
	tr.Record(elems("a", "b"))
	got, ok := tr.Undo()
	if !ok || !reflect.DeepEqual(got, elems("a")) {
		t.Fatalf("undo expected [a], got ok=%v %v", ok, got)
	}
	got, ok = tr.Redo()
	if !ok || !reflect.DeepEqual(got, elems("a", "b")) {
		t.Fatalf("redo expected [a b], got ok=%v %v", ok, got)
	}
	if _, ok := tr.Redo(); ok {
		t.Fatalf("redo at tail must be a no-op")
	}
}

func TestTrackRecordAfterUndoDropsRedo(t *testing.T) {
	tr := NewTrack(elems(), 0)
	tr.Record(elems("a"))      // s1
	tr.Record(elems("a", "b")) // s2
	tr.Undo()
	tr.Record(elems("a", "c")) // s3
	if tr.Len() != 3 || tr.Index() != 2 {
		t.Fatalf("expected [s0 s1 s3] at index 2, got len=%d index=%d", tr.Len(), tr.Index())
	}
	if tr.CanRedo() {
		t.Fatalf("redo must be unavailable after a new record")
	}
	if !reflect.DeepEqual(tr.Current(), elems("a", "c")) {
		t.Fatalf("current should be s3")
	}
}

func TestTrackSnapshotsAreCopies(t *testing.T) {
	src := elems("a")
	tr := NewTrack(nil, 0)
	tr.Record(src)
	src[0].X = 99
	cur := tr.Current()
	if cur[0].X != 0 {
		t.Fatalf("snapshot shares storage with the recorded slice")
	}
	cur[0].X = 42
	if tr.Current()[0].X != 0 {
		t.Fatalf("Current must return a copy")
	}
}

func TestTrackRoundTripProperty(t *testing.T) {
	for n := 1; n <= 12; n++ {
		tr := NewTrack(nil, 0)
		state := []domain.Element{}
		for i := 0; i < n; i++ {
			state = append(append([]domain.Element(nil), state...), domain.Element{ID: fmt.Sprint(i)})
			tr.Record(state)
		}
		for i := 0; i < n; i++ {
			if _, ok := tr.Undo(); !ok {
				t.Fatalf("n=%d: undo %d failed", n, i)
			}
		}
		if len(tr.Current()) != 0 || tr.CanUndo() {
			t.Fatalf("n=%d: expected initial empty state", n)
		}
		for i := 0; i < n; i++ {
			tr.Redo()
		}
		if !reflect.DeepEqual(tr.Current(), state) {
			t.Fatalf("n=%d: redo did not restore final state", n)
		}
	}
}

func TestTrackDepthCapKeepsIndexValid(t *testing.T) {
	tr := NewTrack(nil, 3)
	for i := 0; i < 10; i++ {
		tr.Record(elems(fmt.Sprint(i)))
	}
	if tr.Len() != 3 || tr.Index() != 2 {
		t.Fatalf("expected cap 3 at index 2, got len=%d index=%d", tr.Len(), tr.Index())
	}
	tr.Undo()
	tr.Undo()
	if tr.CanUndo() {
		t.Fatalf("oldest retained snapshot reached, undo should stop")
	}
}

func TestManagerTracksArePerPage(t *testing.T) {
	m := NewManager(Config{})
	m.Open("p1", nil)
	m.Open("p2", nil)
	m.Record("p1", elems("a"))
	m.Record("p2", elems("x"))
	m.Record("p2", elems("x", "y"))

	if got, ok := m.Undo("p1"); !ok || len(got) != 0 {
		t.Fatalf("p1 undo expected empty list, got %v", got)
	}
	if !m.CanUndo("p2") {
		t.Fatalf("p2 history must be unaffected by p1")
	}
	idx, n, ok := m.Position("p2")
	if !ok || idx != 2 || n != 3 {
		t.Fatalf("p2 position = %d/%d", idx, n)
	}
	// reopening keeps the existing track
	m.Open("p1", elems("zzz"))
	if !m.CanRedo("p1") {
		t.Fatalf("reopen must not reset the track")
	}
	m.Drop("p1")
	if _, ok := m.Undo("p1"); ok {
		t.Fatalf("dropped track should be gone")
	}
	if _, pages, total := m.Stats(); pages != 1 || total != 3 {
		t.Fatalf("stats pages=%d total=%d", pages, total)
	}
}

func TestManagerElementCapPrunesOldest(t *testing.T) {
	m := NewManager(Config{MaxElements: 4})
	t0 := time.Now()
	m.mu.Lock()
	m.tracks["old"] = NewTrack(nil, 0)
	m.tracks["old"].recordAt(elems("a", "b"), t0.Add(-time.Hour))
	m.tracks["new"] = NewTrack(nil, 0)
	m.mu.Unlock()
	m.Record("old", elems("a", "b", "c"))
	// old now holds 0+2+3 = 5 element copies; its oldest (empty) snapshot goes
	// first, then the two-element one.
	els, _, _ := m.Stats()
	if els > 4 {
		t.Fatalf("expected prune to cap, got %d elements", els)
	}
	if idx, n, _ := m.Position("old"); idx != n-1 {
		t.Fatalf("index must stay at tail after prune: %d/%d", idx, n)
	}
}
