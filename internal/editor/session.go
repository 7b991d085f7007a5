/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"doccanvas/internal/scene"
)

// Save validates the document and hands it to the save callback. After a
// successful save the session is closed. A callback error keeps the session
// open so the user can retry. Staged property edits that fail validation
// block the save and stay staged.
func (e *Editor) Save() error {
	if err := e.guard(); err != nil {
		return err
	}
	if e.state == StateDragging {
		e.finishDrag()
		e.state = StateIdle
		e.drag = dragState{}
	}
	if len(e.staged) > 0 {
		err := e.commitStaged()
		var ve *ValidationError
		if errors.As(err, &ve) {
			return err
		}
		clear(e.staged)
	}
	e.settle()
	if strings.TrimSpace(e.name) == "" {
		return &ValidationError{Field: "name", Msg: "document name is required"}
	}
	doc := e.Document()
	doc.Name = strings.TrimSpace(doc.Name)
	if e.onSave != nil {
		if err := e.onSave(doc); err != nil {
			e.log.Error("save failed", slog.String("doc", doc.ID), slog.String("err", err.Error()))
			return fmt.Errorf("save %q: %w", doc.Name, err)
		}
	}
	e.close()
	e.log.Info("document saved", slog.String("doc", doc.ID), slog.Int("pages", len(doc.Pages)), slog.Int("elements", doc.ElementCount()))
	e.emit(Event{Kind: EventSaved})
	return nil
}

// Cancel discards the session without saving.
func (e *Editor) Cancel() error {
	if err := e.guard(); err != nil {
		return err
	}
	e.close()
	e.pages = []*page{{id: e.pages[0].id, scene: scene.New(nil)}}
	e.active = 0
	if e.onCancel != nil {
		e.onCancel()
	}
	e.log.Info("editing cancelled", slog.String("doc", e.id))
	e.emit(Event{Kind: EventCancelled})
	return nil
}

func (e *Editor) close() {
	e.closed = true
	e.state = StateIdle
	e.drag = dragState{}
	e.guides = nil
	e.selected = ""
	clear(e.staged)
	clear(e.held)
	e.clip.Clear()
	for _, p := range e.pages {
		e.history.Drop(p.id)
	}
}
