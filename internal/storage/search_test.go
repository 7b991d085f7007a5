/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestSearchByTextKindAndPage(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := UpdateIndex(ctx, root, sampleDocument()); err != nil {
		t.Fatalf("UpdateIndex: %v", err)
	}

	res, err := Search(ctx, root, SearchQuery{Text: "reading"})
	if err != nil {
		t.Fatalf("search 1: %v", err)
	}
	if len(res) != 1 || res[0].ElementID != "el_outro" || res[0].PageIndex != 1 || res[0].PageID != "page_two" {
		t.Fatalf("unexpected FTS result: %+v", res)
	}
	if !strings.Contains(res[0].Snippet, "[reading]") {
		t.Fatalf("snippet = %q, want highlighted match", res[0].Snippet)
	}

	res, err = Search(ctx, root, SearchQuery{Kinds: []string{RowText}})
	if err != nil {
		t.Fatalf("search 2: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected 2 text rows, got %+v", res)
	}
	if res[0].PageIndex != 0 || res[1].PageIndex != 1 {
		t.Fatalf("results not ordered by page: %+v", res)
	}

	res, err = Search(ctx, root, SearchQuery{PageID: "page_one"})
	if err != nil {
		t.Fatalf("search 3: %v", err)
	}
	if len(res) != 2 {
		t.Fatalf("expected title and variable rows on page one, got %+v", res)
	}

	res, err = Search(ctx, root, SearchQuery{Kinds: []string{RowDocumentName}})
	if err != nil {
		t.Fatalf("search 4: %v", err)
	}
	if len(res) != 1 || res[0].PageIndex != -1 || res[0].Text != "Quarterly Report" {
		t.Fatalf("unexpected document name row: %+v", res)
	}

	res, err = Search(ctx, root, SearchQuery{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("search 5: %v", err)
	}
	if len(res) != 1 {
		t.Fatalf("pagination: expected 1 row past offset 4, got %d", len(res))
	}
}

func TestVariableUsage(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()
	doc := sampleDocument()
	// A textbox rebound to the same variable counts too
	doc.Pages[1].Elements[1].Content = "{{ client }}"
	if err := UpdateIndex(ctx, root, doc); err != nil {
		t.Fatalf("UpdateIndex: %v", err)
	}
	res, err := VariableUsage(ctx, root, "client")
	if err != nil {
		t.Fatalf("VariableUsage: %v", err)
	}
	if len(res) != 2 || res[0].ElementID != "el_client" || res[1].ElementID != "el_outro" {
		t.Fatalf("unexpected usage: %+v", res)
	}
	if _, err := VariableUsage(ctx, root, " "); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

func TestPlaceholders(t *testing.T) {
	if placeholders(0) != "" || placeholders(3) != "?,?,?" {
		t.Fatalf("unexpected placeholders: %q %q", placeholders(0), placeholders(3))
	}
}

func BenchmarkSearchFTS(b *testing.B) {
	root := b.TempDir()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RebuildIndex(ctx, root, sampleDocument()); err != nil {
		b.Fatalf("RebuildIndex: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Search(ctx, root, SearchQuery{Text: "Revenue"}); err != nil {
			b.Fatalf("Search: %v", err)
		}
	}
}
