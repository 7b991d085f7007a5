/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene holds the element list of one page and the mutation helpers
// the editor builds on. Every mutation swaps in a fresh slice so a list handed
// out earlier (for a history snapshot, say) never changes underneath its holder.
package scene

import (
	"sort"
	"sync"

	"doccanvas/internal/domain"
	"doccanvas/internal/vector"
)

// Direction selects the z-order change made by ReorderZ.
type Direction int

const (
	Front Direction = iota
	Back
)

// Scene is the authoritative element list for a single page.
type Scene struct {
	mu    sync.RWMutex
	elems []domain.Element
	subs  []func()
}

// New returns a scene seeded with a copy of elems.
func New(elems []domain.Element) *Scene {
	return &Scene{elems: append([]domain.Element(nil), elems...)}
}

// Subscribe registers fn to be called after every change to the list.
func (s *Scene) Subscribe(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Scene) notify() {
	s.mu.RLock()
	subs := append([]func(){}, s.subs...)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

// Elements returns a copy of the current list in insertion order.
func (s *Scene) Elements() []domain.Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Element(nil), s.elems...)
}

// Len returns the number of elements.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elems)
}

// Replace swaps the whole list, e.g. when applying a history snapshot.
func (s *Scene) Replace(elems []domain.Element) {
	s.mu.Lock()
	s.elems = append([]domain.Element(nil), elems...)
	s.mu.Unlock()
	s.notify()
}

// Find returns the element with id.
func (s *Scene) Find(id string) (domain.Element, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.elems, id); i >= 0 {
		return s.elems[i], true
	}
	return domain.Element{}, false
}

// MaxZ returns the highest zIndex, or 0 on an empty page.
func (s *Scene) MaxZ() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maxZ(s.elems)
}

// MinZ returns the lowest zIndex, or 0 on an empty page.
func (s *Scene) MinZ() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return minZ(s.elems)
}

// Add appends el on top of the stack. A missing ID is generated; an ID that
// already exists on the page is replaced by a fresh one. Returns the ID used.
func (s *Scene) Add(el domain.Element) string {
	s.mu.Lock()
	if el.ID == "" || indexOf(s.elems, el.ID) >= 0 {
		el.ID = domain.NewID("elem")
	}
	el.ZIndex = maxZ(s.elems) + 1
	el.Geometry = clampGeometry(el.Geometry)
	next := make([]domain.Element, len(s.elems), len(s.elems)+1)
	copy(next, s.elems)
	s.elems = append(next, el)
	s.mu.Unlock()
	s.notify()
	return el.ID
}

// Update applies p to the element with id. Unknown ids are ignored and
// reported with false.
func (s *Scene) Update(id string, p Patch) bool {
	s.mu.Lock()
	i := indexOf(s.elems, id)
	if i < 0 || p.Empty() {
		s.mu.Unlock()
		return false
	}
	next := append([]domain.Element(nil), s.elems...)
	next[i] = p.Apply(next[i])
	s.elems = next
	s.mu.Unlock()
	s.notify()
	return true
}

// Remove deletes the element with id.
func (s *Scene) Remove(id string) bool {
	s.mu.Lock()
	i := indexOf(s.elems, id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	next := make([]domain.Element, 0, len(s.elems)-1)
	next = append(next, s.elems[:i]...)
	next = append(next, s.elems[i+1:]...)
	s.elems = next
	s.mu.Unlock()
	s.notify()
	return true
}

// ReorderZ moves the element to max+1 (Front) or min-1 (Back). The new value
// is computed over the whole page including the element itself, so the
// topmost element still moves strictly upward.
func (s *Scene) ReorderZ(id string, dir Direction) bool {
	s.mu.Lock()
	i := indexOf(s.elems, id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	next := append([]domain.Element(nil), s.elems...)
	if dir == Front {
		next[i].ZIndex = maxZ(s.elems) + 1
	} else {
		next[i].ZIndex = minZ(s.elems) - 1
	}
	s.elems = next
	s.mu.Unlock()
	s.notify()
	return true
}

// PaintOrder returns the elements sorted bottom to top. Equal zIndex values
// keep insertion order.
func (s *Scene) PaintOrder() []domain.Element {
	out := s.Elements()
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

// HitTest returns the topmost element whose box contains p. The whole box
// takes the press, whatever shape is drawn inside it.
func (s *Scene) HitTest(p vector.Pt) (domain.Element, bool) {
	return s.topmost(func(el domain.Element) bool { return vector.HitBox(Bounds(el), p) })
}

// ShapeAt returns the topmost element whose drawn outline contains p.
func (s *Scene) ShapeAt(p vector.Pt) (domain.Element, bool) {
	return s.topmost(func(el domain.Element) bool { return vector.Hit(OutlineOf(el), Bounds(el), p) })
}

func (s *Scene) topmost(hit func(domain.Element) bool) (domain.Element, bool) {
	order := s.PaintOrder()
	for i := len(order) - 1; i >= 0; i-- {
		if hit(order[i]) {
			return order[i], true
		}
	}
	return domain.Element{}, false
}

// Bounds returns the element box as a rect.
func Bounds(el domain.Element) vector.Rect {
	return vector.R(el.X, el.Y, el.Width, el.Height)
}

// OutlineOf maps an element to the outline used for hit testing.
func OutlineOf(el domain.Element) vector.Outline {
	if el.Kind != domain.KindShape {
		return vector.OutlineBox
	}
	switch el.ShapeKind {
	case domain.ShapeCircle:
		return vector.OutlineEllipse
	case domain.ShapeTriangle:
		return vector.OutlineTriangle
	case domain.ShapeLine:
		return vector.OutlineSegment
	}
	return vector.OutlineBox
}

func indexOf(elems []domain.Element, id string) int {
	for i := range elems {
		if elems[i].ID == id {
			return i
		}
	}
	return -1
}

func maxZ(elems []domain.Element) int {
	if len(elems) == 0 {
		return 0
	}
	m := elems[0].ZIndex
	for _, e := range elems[1:] {
		if e.ZIndex > m {
			m = e.ZIndex
		}
	}
	return m
}

func minZ(elems []domain.Element) int {
	if len(elems) == 0 {
		return 0
	}
	m := elems[0].ZIndex
	for _, e := range elems[1:] {
		if e.ZIndex < m {
			m = e.ZIndex
		}
	}
	return m
}

func clampGeometry(g domain.Geometry) domain.Geometry {
	if g.X < 0 {
		g.X = 0
	}
	if g.Y < 0 {
		g.Y = 0
	}
	if g.Width < 0 {
		g.Width = 0
	}
	if g.Height < 0 {
		g.Height = 0
	}
	return g
}
