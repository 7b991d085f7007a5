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
	"log/slog"
)

// PageCount returns the number of pages.
func (e *Editor) PageCount() int { return len(e.pages) }

// ActivePage returns the index of the page being edited.
func (e *Editor) ActivePage() int { return e.active }

// PageID returns the stable id of the page at index i.
func (e *Editor) PageID(i int) (string, bool) {
	if i < 0 || i >= len(e.pages) {
		return "", false
	}
	return e.pages[i].id, true
}

// AddPage appends an empty page with its own history and makes it active.
func (e *Editor) AddPage() (int, error) {
	if err := e.guard(); err != nil {
		return 0, err
	}
	e.settle()
	e.setSelection("")
	p := e.newPage("", nil)
	e.pages = append(e.pages, p)
	e.active = len(e.pages) - 1
	e.log.InfoContext(e.logContext(p), "page added", slog.Int("pages", len(e.pages)))
	e.emit(Event{Kind: EventPage, PageID: p.id})
	return e.active, nil
}

// DeletePage removes page i and its history. The only page cannot be
// deleted. The active page moves to the one before the previous active page.
func (e *Editor) DeletePage(i int) error {
	if err := e.guard(); err != nil {
		return err
	}
	if i < 0 || i >= len(e.pages) {
		return fmt.Errorf("delete page %d: %w", i, ErrPageIndex)
	}
	if len(e.pages) == 1 {
		e.log.Warn("refusing to delete the last page")
		return ErrLastPage
	}
	e.settle()
	e.setSelection("")
	gone := e.pages[i]
	e.pages = append(e.pages[:i:i], e.pages[i+1:]...)
	e.history.Drop(gone.id)
	e.active = max(0, e.active-1)
	if e.active >= len(e.pages) {
		e.active = len(e.pages) - 1
	}
	e.log.InfoContext(e.logContext(gone), "page deleted", slog.Int("pages", len(e.pages)))
	e.emit(Event{Kind: EventPage, PageID: e.cur().id})
	return nil
}

// SwitchPage activates page i. Each page keeps its own history, so
// returning to a page restores its undo and redo state.
func (e *Editor) SwitchPage(i int) error {
	if err := e.guard(); err != nil {
		return err
	}
	if i < 0 || i >= len(e.pages) {
		return fmt.Errorf("switch page %d: %w", i, ErrPageIndex)
	}
	if i == e.active {
		return nil
	}
	e.settle()
	e.setSelection("")
	e.active = i
	e.emit(Event{Kind: EventPage, PageID: e.cur().id})
	return nil
}
