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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"doccanvas/internal/domain"
)

// language=SQL
// dialect=SQLite
const insertRevisionSQL = `INSERT INTO revisions(ts, name, pages, elements, doc_blob) VALUES (?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const listRevisionsSQL = `SELECT id, ts, name, pages, elements FROM revisions ORDER BY id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const selectRevisionSQL = `SELECT doc_blob FROM revisions WHERE id = ?`

// language=SQL
// dialect=SQLite
const pruneRevisionsSQL = `DELETE FROM revisions WHERE id NOT IN (
	SELECT id FROM revisions ORDER BY id DESC LIMIT ?
)`

// Revision describes one stored save of the document.
type Revision struct {
	ID       int64
	TS       time.Time
	Name     string
	Pages    int
	Elements int
}

// AppendRevision stores the full document as a new revision and returns its id.
func AppendRevision(ctx context.Context, h *DocumentHandle, ts time.Time) (int64, error) {
	if h == nil {
		return 0, errors.New("nil DocumentHandle")
	}
	blob, err := json.Marshal(h.Document)
	if err != nil {
		return 0, fmt.Errorf("marshal revision: %w", err)
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, insertRevisionSQL, ts.UTC().Format(time.RFC3339Nano), h.Document.Name,
		len(h.Document.Pages), h.Document.ElementCount(), blob)
	if err != nil {
		return 0, fmt.Errorf("insert revision: %w", err)
	}
	return res.LastInsertId()
}

// ListRevisions returns up to limit most recent revisions, newest first.
func ListRevisions(ctx context.Context, h *DocumentHandle, limit int) ([]Revision, error) {
	if h == nil {
		return nil, errors.New("nil DocumentHandle")
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()
	rows, err := db.QueryContext(ctx, listRevisionsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []Revision
	for rows.Next() {
		var r Revision
		var tsStr string
		if err := rows.Scan(&r.ID, &tsStr, &r.Name, &r.Pages, &r.Elements); err != nil {
			return nil, err
		}
		r.TS, _ = time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadRevision returns the document stored under id. The second result is
// false when no such revision exists.
func LoadRevision(ctx context.Context, h *DocumentHandle, id int64) (domain.Document, bool, error) {
	if h == nil {
		return domain.Document{}, false, errors.New("nil DocumentHandle")
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return domain.Document{}, false, err
	}
	defer func() { _ = db.Close() }()
	var blob []byte
	err = db.QueryRowContext(ctx, selectRevisionSQL, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Document{}, false, nil
	}
	if err != nil {
		return domain.Document{}, false, err
	}
	var doc domain.Document
	if err := json.Unmarshal(blob, &doc); err != nil {
		return domain.Document{}, false, fmt.Errorf("parse revision %d: %w", id, err)
	}
	return doc, true, nil
}

// PruneRevisions keeps at most keepLast revisions and deletes older ones.
func PruneRevisions(ctx context.Context, h *DocumentHandle, keepLast int) (int64, error) {
	if h == nil {
		return 0, errors.New("nil DocumentHandle")
	}
	if keepLast <= 0 {
		return 0, nil
	}
	db, err := InitOrOpenIndex(h.Root)
	if err != nil {
		return 0, err
	}
	defer func() { _ = db.Close() }()
	res, err := db.ExecContext(ctx, pruneRevisionsSQL, keepLast)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
