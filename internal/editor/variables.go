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
)

// Variables returns the externally supplied variable names.
func (e *Editor) Variables() []string { return append([]string(nil), e.vars...) }

// SetVariables replaces the variable list. Existing bindings are kept even
// when their name disappears from the list.
func (e *Editor) SetVariables(names []string) { e.vars = cleanVariables(names) }

// InsertVariable adds a variable element bound to name and selects it.
func (e *Editor) InsertVariable(name string) (string, error) {
	if err := e.guard(); err != nil {
		return "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "variable", Msg: "variable name must not be empty"}
	}
	e.settle()
	el := scene.NewElement(scene.Item{Kind: domain.KindVariable})
	el.Content = domain.VariableContent(name)
	var id string
	e.commit("variable", func(s *scene.Scene) bool {
		id = s.Add(el)
		return true
	})
	e.setSelection(id)
	return id, nil
}

// BindVariable rebinds the selected text element to name.
func (e *Editor) BindVariable(name string) error {
	if err := e.guard(); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return &ValidationError{Field: "variable", Msg: "variable name must not be empty"}
	}
	el, ok := e.Selection()
	if !ok {
		return ErrNoSelection
	}
	if !el.IsText() {
		return &ValidationError{Field: "variable", Msg: "only text elements can be bound"}
	}
	e.settle()
	content := domain.VariableContent(name)
	e.commit("bind", func(s *scene.Scene) bool { return s.Update(el.ID, scene.Patch{Content: &content}) })
	return nil
}

// Bindings lists the variable names referenced across all pages, in first-use order.
func (e *Editor) Bindings() []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range e.pages {
		for _, el := range p.scene.PaintOrder() {
			if n, ok := domain.VariableName(el.Content); ok && !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}
