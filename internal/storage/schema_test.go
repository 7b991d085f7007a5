/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"strings"
	"testing"
)

func TestManifestConformsToSchema(t *testing.T) {
	data, err := Encode(sampleDocument())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := ValidateDocument(data); err != nil {
		t.Fatalf("manifest does not conform to schema: %v", err)
	}
}

func TestSchemaRejects(t *testing.T) {
	cases := map[string]string{
		"no pages":      `{"id":"d","name":"n","format":"pptx","pages":[],"canvasSize":{"width":800,"height":600},"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}`,
		"bad format":    `{"id":"d","name":"n","format":"odt","pages":[{"id":"p","elements":[]}],"canvasSize":{"width":800,"height":600},"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}`,
		"negative x":    `{"id":"d","name":"n","format":"pptx","pages":[{"id":"p","elements":[{"id":"e","type":"textbox","x":-1,"y":0,"width":1,"height":1,"zIndex":0,"style":{"fontSize":14,"fontFamily":"Arial","color":"#000000","backgroundColor":"transparent","borderColor":"#94a3b8","borderWidth":1,"bold":false,"italic":false,"underline":false,"textAlign":"left"}}]}],"canvasSize":{"width":800,"height":600},"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}`,
		"shape no kind": `{"id":"d","name":"n","format":"pptx","pages":[{"id":"p","elements":[{"id":"e","type":"shape","x":0,"y":0,"width":1,"height":1,"zIndex":0,"style":{"fontSize":14,"fontFamily":"Arial","color":"#000000","backgroundColor":"transparent","borderColor":"#94a3b8","borderWidth":1,"bold":false,"italic":false,"underline":false,"textAlign":"left"}}]}],"canvasSize":{"width":800,"height":600},"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}`,
		"missing style": `{"id":"d","name":"n","format":"pptx","pages":[{"id":"p","elements":[{"id":"e","type":"image","x":0,"y":0,"width":1,"height":1,"zIndex":0}]}],"canvasSize":{"width":800,"height":600},"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}`,
		"null elements": `{"id":"d","name":"n","format":"pptx","pages":[{"id":"p","elements":null}],"canvasSize":{"width":800,"height":600},"createdAt":"2026-01-01T00:00:00Z","updatedAt":"2026-01-01T00:00:00Z"}`,
	}
	for name, doc := range cases {
		err := ValidateDocument([]byte(doc))
		if !IsSchemaError(err) {
			t.Errorf("%s: expected schema error, got %v", name, err)
		}
	}
}

func TestValidateDocumentMalformedJSON(t *testing.T) {
	err := ValidateDocument([]byte("{ nope"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if IsSchemaError(err) {
		t.Fatalf("malformed JSON should not be reported as a schema violation")
	}
}

func TestSchemaErrorListsProblems(t *testing.T) {
	err := ValidateDocument([]byte(`{"id":""}`))
	if !IsSchemaError(err) {
		t.Fatalf("expected schema error, got %v", err)
	}
	if !strings.Contains(err.Error(), "name") {
		t.Fatalf("expected missing name in message: %v", err)
	}
}

func TestDocumentSchemaIsCopy(t *testing.T) {
	a := DocumentSchema()
	a[0] = 'X'
	if DocumentSchema()[0] == 'X' {
		t.Fatalf("DocumentSchema exposes internal buffer")
	}
}
