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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// An index from schema 1 gains the lookup indexes and an FTS table that can
// produce snippets for rows indexed before the upgrade.
func TestMigrationsUpgradeFromV1(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Dir(IndexPath(root)), 0o755); err != nil {
		t.Fatalf("mk .dcv: %v", err)
	}
	db := openRaw(t, root)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE IF NOT EXISTS elements (row_id INTEGER PRIMARY KEY, kind TEXT NOT NULL, page_index INTEGER, page_id TEXT, element_id TEXT, text TEXT);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_elements USING fts5(text, content='', tokenize='unicode61');`,
		`INSERT INTO elements(row_id, kind, page_index, page_id, element_id, text) VALUES(1, 'text', 0, 'p1', 'e1', 'Quarterly invoice total');`,
		`INSERT INTO fts_elements(rowid, text) VALUES(1, 'Quarterly invoice total');`,
		`CREATE TABLE IF NOT EXISTS revisions (id INTEGER PRIMARY KEY, ts TEXT NOT NULL, name TEXT NOT NULL, pages INTEGER NOT NULL, elements INTEGER NOT NULL, doc_blob BLOB NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS previews (id INTEGER PRIMARY KEY, page_id TEXT NOT NULL, kind TEXT NOT NULL DEFAULT 'thumb', w INTEGER NOT NULL DEFAULT 0, h INTEGER NOT NULL DEFAULT 0, blob BLOB, size INTEGER NOT NULL DEFAULT 0, updated_at TEXT NOT NULL);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	_ = db.Close()

	mdb, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	defer mdb.Close()
	var schema int
	if err := mdb.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&schema); err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if schema != schemaVersion {
		t.Fatalf("schema = %d after migration, want %d", schema, schemaVersion)
	}
	var cnt int
	if err := mdb.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name IN ('idx_elements_element','idx_revisions_ts')`).Scan(&cnt); err != nil {
		t.Fatalf("query indexes: %v", err)
	}
	if cnt != 2 {
		t.Fatalf("expected migration indexes, got %d", cnt)
	}
	// The v1 previews table gains last_access
	if _, err := mdb.ExecContext(ctx, `SELECT last_access FROM previews LIMIT 1`); err != nil {
		t.Fatalf("last_access column missing: %v", err)
	}
	res, err := searchDB(ctx, mdb, SearchQuery{Text: "invoice"})
	if err != nil {
		t.Fatalf("search after migration: %v", err)
	}
	if len(res) != 1 || res[0].ElementID != "e1" || !strings.Contains(res[0].Snippet, "[invoice]") {
		t.Fatalf("search after migration = %+v", res)
	}
}

func TestMigrationsDoNotDowngrade(t *testing.T) {
	root := t.TempDir()
	db, err := InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	}
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `UPDATE version SET schema=99 WHERE id=1`); err != nil {
		t.Fatalf("bump schema: %v", err)
	}
	_ = db.Close()
	db, err = InitOrOpenIndex(root)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()
	var schema int
	_ = db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&schema)
	if schema != 99 {
		t.Fatalf("schema = %d, want 99 untouched", schema)
	}
}
