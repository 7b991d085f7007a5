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
	"testing"

	"doccanvas/internal/domain"
	"doccanvas/internal/scene"
)

func TestInsertAndBindVariable(t *testing.T) {
	e := newTestEditor(t, func(o *Options) { o.Variables = []string{"customer", " customer", "", "total"} })
	if vs := e.Variables(); len(vs) != 2 || vs[1] != "total" {
		t.Fatalf("variables = %v", vs)
	}
	id, err := e.InsertVariable("customer")
	if err != nil {
		t.Fatal(err)
	}
	el, _ := e.Element(id)
	if el.Kind != domain.KindVariable || el.Content != "{{customer}}" || e.SelectedID() != id {
		t.Fatalf("variable element = %+v", el)
	}
	if err := e.BindVariable("total"); err != nil {
		t.Fatal(err)
	}
	el, _ = e.Element(id)
	if el.Content != "{{total}}" {
		t.Fatalf("rebind content = %q", el.Content)
	}
	// names outside the supplied list are accepted; existence is not checked
	tb := mustAdd(t, e, textbox)
	if err := e.BindVariable("unlisted"); err != nil {
		t.Fatal(err)
	}
	if el, _ := e.Element(tb); el.Content != "{{unlisted}}" {
		t.Fatalf("textbox bind = %q", el.Content)
	}
	if got := e.Bindings(); len(got) != 2 || got[0] != "total" || got[1] != "unlisted" {
		t.Fatalf("bindings = %v", got)
	}
}

func TestBindVariableRejects(t *testing.T) {
	e := newTestEditor(t)
	if err := e.BindVariable("x"); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	mustAdd(t, e, scene.Item{Kind: domain.KindShape, Shape: domain.ShapeArrow})
	var ve *ValidationError
	if err := e.BindVariable("x"); !errors.As(err, &ve) {
		t.Fatalf("shape bind should be a validation error, got %v", err)
	}
	if _, err := e.InsertVariable("  "); !errors.As(err, &ve) {
		t.Fatalf("empty name should be a validation error, got %v", err)
	}
}
