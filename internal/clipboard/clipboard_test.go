/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package clipboard

import (
	"errors"
	"testing"

	"doccanvas/internal/domain"
)

type memMirror struct {
	text string
	err  error
}

func (m *memMirror) Write(text string) error {
	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}

func (m *memMirror) Read() (string, error) { return m.text, m.err }

func TestCopyIsValueAndSingleSlot(t *testing.T) {
	c := New(nil)
	if c.Has() {
		t.Fatalf("new clipboard should be empty")
	}
	el := domain.Element{ID: "a", Geometry: domain.Geometry{X: 10}}
	if err := c.Copy(el); err != nil {
		t.Fatal(err)
	}
	el.X = 500
	got, ok := c.Payload()
	if !ok || got.X != 10 {
		t.Fatalf("payload should be a value copy, got %+v", got)
	}
	_ = c.Copy(domain.Element{ID: "b"})
	got, _ = c.Payload()
	if got.ID != "b" {
		t.Fatalf("second copy should overwrite, got %s", got.ID)
	}
	c.Clear()
	if c.Has() {
		t.Fatalf("clear failed")
	}
}

func TestMirrorRoundTrip(t *testing.T) {
	m := &memMirror{}
	src := New(m)
	el := domain.Element{ID: "x", Kind: domain.KindShape, ShapeKind: domain.ShapeCircle, Geometry: domain.Geometry{X: 1, Y: 2, Width: 3, Height: 4}}
	if err := src.Copy(el); err != nil {
		t.Fatal(err)
	}
	dst := New(m)
	if err := dst.Import(); err != nil {
		t.Fatalf("import: %v", err)
	}
	got, _ := dst.Payload()
	if got != el {
		t.Fatalf("import mismatch: %+v", got)
	}
}

func TestImportRejectsForeignText(t *testing.T) {
	c := New(&memMirror{text: "hello"})
	if err := c.Import(); !errors.Is(err, ErrNoPayload) {
		t.Fatalf("expected ErrNoPayload, got %v", err)
	}
	if c.Has() {
		t.Fatalf("foreign text must not fill the slot")
	}
}

func TestMirrorErrorKeepsLocalCopy(t *testing.T) {
	c := New(&memMirror{err: errors.New("no xclip")})
	if err := c.Copy(domain.Element{ID: "a"}); err == nil {
		t.Fatalf("expected mirror error")
	}
	if !c.Has() {
		t.Fatalf("local copy should survive mirror failure")
	}
}

func TestOffsetClamps(t *testing.T) {
	el := Offset(domain.Element{Geometry: domain.Geometry{X: 5, Y: 5}}, 20, -30)
	if el.X != 25 || el.Y != 0 {
		t.Fatalf("offset = %+v", el.Geometry)
	}
}
