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
	"testing"
	"time"
)

func TestRevisionsAppendListLoadPrune(t *testing.T) {
	h, err := InitDocument(t.TempDir(), sampleDocument())
	if err != nil {
		t.Fatalf("InitDocument: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	var ids []int64
	for i, name := range []string{"v1", "v2", "v3"} {
		h.Document.Name = name
		id, err := AppendRevision(ctx, h, base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("AppendRevision %s: %v", name, err)
		}
		ids = append(ids, id)
	}

	revs, err := ListRevisions(ctx, h, 10)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revs) != 3 || revs[0].Name != "v3" || revs[2].Name != "v1" {
		t.Fatalf("unexpected revisions order: %+v", revs)
	}
	if revs[0].Pages != 2 || revs[0].Elements != 5 {
		t.Fatalf("unexpected counts: %+v", revs[0])
	}
	if !revs[2].TS.Equal(base) {
		t.Fatalf("ts = %v, want %v", revs[2].TS, base)
	}

	doc, ok, err := LoadRevision(ctx, h, ids[1])
	if err != nil || !ok {
		t.Fatalf("LoadRevision: ok=%v err=%v", ok, err)
	}
	if doc.Name != "v2" || doc.ElementCount() != 5 {
		t.Fatalf("loaded revision mismatch: %+v", doc)
	}
	if _, ok, err := LoadRevision(ctx, h, 9999); ok || err != nil {
		t.Fatalf("missing revision: ok=%v err=%v", ok, err)
	}

	n, err := PruneRevisions(ctx, h, 1)
	if err != nil {
		t.Fatalf("PruneRevisions: %v", err)
	}
	if n != 2 {
		t.Fatalf("pruned %d, want 2", n)
	}
	revs, _ = ListRevisions(ctx, h, 10)
	if len(revs) != 1 || revs[0].Name != "v3" {
		t.Fatalf("unexpected revisions after prune: %+v", revs)
	}
}

func TestRevisionsNilHandle(t *testing.T) {
	ctx := context.Background()
	if _, err := AppendRevision(ctx, nil, time.Now()); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := ListRevisions(ctx, nil, 1); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := PruneRevisions(ctx, nil, 1); err == nil {
		t.Fatalf("expected error")
	}
}
