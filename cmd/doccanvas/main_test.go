/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"strings"
	"testing"

	"doccanvas/internal/domain"
	"doccanvas/internal/storage"
	"doccanvas/internal/stylepack"
)

func TestParseExportArgs(t *testing.T) {
	vals, out, err := parseExportArgs([]string{"client=ACME", "build/out", "date=2025-01-02"})
	if err != nil {
		t.Fatal(err)
	}
	if out != "build/out" || vals["client"] != "ACME" || vals["date"] != "2025-01-02" {
		t.Fatalf("got out=%q vals=%v", out, vals)
	}
	if _, _, err := parseExportArgs([]string{"a", "b"}); !errors.Is(err, errUsage) {
		t.Fatalf("two outputs: err = %v", err)
	}
	if _, _, err := parseExportArgs([]string{"=x"}); !errors.Is(err, errUsage) {
		t.Fatalf("empty name: err = %v", err)
	}
}

func TestDocumentVariables(t *testing.T) {
	doc := domain.Document{Pages: []domain.Page{
		{Elements: []domain.Element{
			{Kind: domain.KindVariable, Content: "{{client}}"},
			{Kind: domain.KindTextbox, Content: "{{ignored}}"},
		}},
		{Elements: []domain.Element{
			{Kind: domain.KindVariable, Content: "{{ date }}"},
			{Kind: domain.KindVariable, Content: "{{client}}"},
		}},
	}}
	got := documentVariables(doc)
	if strings.Join(got, ",") != "client,date" {
		t.Fatalf("got %v", got)
	}
}

func TestRunRejectsUnknownCommand(t *testing.T) {
	c := &cli{}
	if err := c.run("frobnicate", nil); !errors.Is(err, errUsage) {
		t.Fatalf("err = %v", err)
	}
	if err := c.run("export", []string{"dir"}); !errors.Is(err, errUsage) {
		t.Fatalf("export without format: err = %v", err)
	}
}

func TestRenderSummaryListsPages(t *testing.T) {
	doc := domain.Document{
		Name:   "Report",
		Format: domain.FormatXlsx,
		Pages: []domain.Page{
			{ID: "p1", Elements: []domain.Element{{Kind: domain.KindShape, ShapeKind: domain.ShapeCircle}, {Kind: domain.KindTextbox}}},
			{ID: "p2"},
		},
	}
	out := renderSummary("/tmp/report", doc)
	for _, want := range []string{"Report", "Page 1", "Page 2", "1 circle", "1 textbox", "empty", "1000×600"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary misses %q:\n%s", want, out)
		}
	}
	if !strings.Contains(renderSearch(nil), "No matches") {
		t.Error("empty search output")
	}
	out = renderPresets([]stylepack.Preset{{Name: "Headline", Properties: map[string]string{"bold": "true", "fontSize": "32"}}})
	if !strings.Contains(out, "Headline") || !strings.Contains(out, "bold=true fontSize=32") {
		t.Errorf("presets output:\n%s", out)
	}
	if !strings.Contains(renderRevisions([]storage.Revision{{ID: 3, Name: "Report", Pages: 2}}), "Report") {
		t.Error("revision row missing")
	}
}
