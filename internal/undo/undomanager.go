/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"sync"
	"time"

	"doccanvas/internal/domain"
)

// Snapshot is an immutable copy of one page's element list.
// TS is when the snapshot was captured.
type Snapshot struct {
	Elements []domain.Element
	TS       time.Time
}

func newSnapshot(elems []domain.Element, ts time.Time) Snapshot {
	return Snapshot{Elements: append([]domain.Element(nil), elems...), TS: ts}
}

// Track is a linear history for one page. Index always points at a valid
// snapshot; there is no branching, so recording after an undo drops the
// redo tail. Track is not safe for concurrent use on its own; Manager
// serialises access.
type Track struct {
	snaps []Snapshot
	index int
	max   int
}

// NewTrack starts a history whose only snapshot is initial. maxDepth caps the
// number of retained snapshots (0 means unlimited).
func NewTrack(initial []domain.Element, maxDepth int) *Track {
	return &Track{snaps: []Snapshot{newSnapshot(initial, time.Now())}, max: maxDepth}
}

// Record truncates everything after the current index and appends elems.
func (t *Track) Record(elems []domain.Element) {
	t.recordAt(elems, time.Now())
}

func (t *Track) recordAt(elems []domain.Element, ts time.Time) {
	t.snaps = append(t.snaps[:t.index+1:t.index+1], newSnapshot(elems, ts))
	t.index = len(t.snaps) - 1
	if t.max > 0 && len(t.snaps) > t.max {
		drop := len(t.snaps) - t.max
		t.snaps = append([]Snapshot{}, t.snaps[drop:]...)
		t.index -= drop
	}
}

// Undo steps back one snapshot and returns the list to apply.
func (t *Track) Undo() ([]domain.Element, bool) {
	if t.index == 0 {
		return nil, false
	}
	t.index--
	return t.current(), true
}

// Redo steps forward one snapshot and returns the list to apply.
func (t *Track) Redo() ([]domain.Element, bool) {
	if t.index >= len(t.snaps)-1 {
		return nil, false
	}
	t.index++
	return t.current(), true
}

// Current returns a copy of the list at the current index.
func (t *Track) Current() []domain.Element { return t.current() }

func (t *Track) current() []domain.Element {
	return append([]domain.Element(nil), t.snaps[t.index].Elements...)
}

func (t *Track) CanUndo() bool { return t.index > 0 }
func (t *Track) CanRedo() bool { return t.index < len(t.snaps)-1 }
func (t *Track) Index() int    { return t.index }
func (t *Track) Len() int      { return len(t.snaps) }

func (t *Track) elementCount() int {
	n := 0
	for _, s := range t.snaps {
		n += len(s.Elements)
	}
	return n
}

// dropOldest removes the oldest snapshot if that does not touch the current one.
func (t *Track) dropOldest() bool {
	if t.index == 0 {
		return false
	}
	t.snaps = append([]Snapshot{}, t.snaps[1:]...)
	t.index--
	return true
}

// Config controls depth and memory caps.
type Config struct {
	// MaxPerPage limits the snapshots kept per page (0 means unlimited).
	MaxPerPage int
	// MaxElements is a soft cap on the element copies held across all pages;
	// the oldest snapshots are pruned first when it is exceeded (0 means unlimited).
	MaxElements int
}

// Manager keeps one Track per page, keyed by the page's stable ID.
// It is safe for concurrent use.
type Manager struct {
	cfg    Config
	mu     sync.Mutex
	tracks map[string]*Track
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxPerPage < 0 {
		cfg.MaxPerPage = 0
	}
	return &Manager{cfg: cfg, tracks: make(map[string]*Track)}
}

// Open creates a track for pageID seeded with initial. An existing track is
// kept as is, so returning to a page restores its own history.
func (m *Manager) Open(pageID string, initial []domain.Element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tracks[pageID]; ok {
		return
	}
	m.tracks[pageID] = NewTrack(initial, m.cfg.MaxPerPage)
}

// Record appends elems to the page's track, opening one if needed.
func (m *Manager) Record(pageID string, elems []domain.Element) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[pageID]
	if !ok {
		t = NewTrack(nil, m.cfg.MaxPerPage)
		m.tracks[pageID] = t
	}
	t.Record(elems)
	m.enforceCapsLocked()
}

// Undo steps the page's track back and returns the list to apply.
func (m *Manager) Undo(pageID string) ([]domain.Element, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tracks[pageID]; ok {
		return t.Undo()
	}
	return nil, false
}

// Redo steps the page's track forward and returns the list to apply.
func (m *Manager) Redo(pageID string) ([]domain.Element, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tracks[pageID]; ok {
		return t.Redo()
	}
	return nil, false
}

func (m *Manager) CanUndo(pageID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[pageID]
	return ok && t.CanUndo()
}

func (m *Manager) CanRedo(pageID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[pageID]
	return ok && t.CanRedo()
}

// Position returns the page's current index and snapshot count.
func (m *Manager) Position(pageID string) (index, length int, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tracks[pageID]
	if !ok {
		return 0, 0, false
	}
	return t.Index(), t.Len(), true
}

// Drop discards the page's track, e.g. when the page is deleted.
func (m *Manager) Drop(pageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tracks, pageID)
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (elements int, pages int, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pages = len(m.tracks)
	for _, t := range m.tracks {
		totalSnapshots += t.Len()
		elements += t.elementCount()
	}
	return elements, pages, totalSnapshots
}

func (m *Manager) enforceCapsLocked() {
	if m.cfg.MaxElements <= 0 {
		return
	}
	total := 0
	for _, t := range m.tracks {
		total += t.elementCount()
	}
	for total > m.cfg.MaxElements {
		var oldest *Track
		var oldestTS time.Time
		for _, t := range m.tracks {
			if !t.CanUndo() {
				continue
			}
			if oldest == nil || t.snaps[0].TS.Before(oldestTS) {
				oldest = t
				oldestTS = t.snaps[0].TS
			}
		}
		if oldest == nil {
			break
		}
		n := len(oldest.snaps[0].Elements)
		oldest.dropOldest()
		total -= n
	}
}
