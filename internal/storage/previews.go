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
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Preview kinds stored in the previews table.
// - thumb: PNG thumbnail of a whole page
// - geom: geometry cache blob (JSON element boxes, used for hit-testing without decoding the page)
const (
	PreviewKindThumb = "thumb"
	PreviewKindGeom  = "geom"
)

// EnvPreviewsMaxBytes caps the preview cache size.
const EnvPreviewsMaxBytes = "DCV_PREVIEWS_MAX_BYTES"

const defaultPreviewsMaxBytes = 64 * 1024 * 1024

// accessLayout has fixed-width fractions so last_access sorts lexically.
const accessLayout = "2006-01-02T15:04:05.000000000Z"

// PreviewKey identifies one cached preview variant.
type PreviewKey struct {
	PageID string
	Kind   string
	W, H   int
}

// EnsurePreviewsMigrated guarantees the previews table has the columns needed for
// caching variants and LRU tracking. It is safe to call multiple times.
func EnsurePreviewsMigrated(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS previews (
		id           INTEGER PRIMARY KEY,
		page_id      TEXT    NOT NULL,
		kind         TEXT    NOT NULL DEFAULT 'thumb',
		w            INTEGER NOT NULL DEFAULT 0,
		h            INTEGER NOT NULL DEFAULT 0,
		blob         BLOB,
		size         INTEGER NOT NULL DEFAULT 0,
		updated_at   TEXT    NOT NULL
	);`); err != nil {
		return fmt.Errorf("ensure previews table: %w", err)
	}
	rows, err := db.QueryContext(ctx, `PRAGMA table_info(previews);`)
	if err != nil {
		return fmt.Errorf("table_info previews: %w", err)
	}
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			_ = rows.Close()
			return err
		}
		cols[name] = true
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	if err := rows.Close(); err != nil {
		return err
	}
	// last_access arrived after the first release; add it to older caches
	if !cols["last_access"] {
		if _, err := db.ExecContext(ctx, `ALTER TABLE previews ADD COLUMN last_access TEXT`); err != nil {
			return fmt.Errorf("add last_access: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS ux_previews_variant ON previews(page_id, kind, w, h)`); err != nil {
		return fmt.Errorf("create variant index: %w", err)
	}
	_, _ = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_previews_access ON previews(last_access)`)
	return nil
}

func validKind(kind string) bool { return kind == PreviewKindThumb || kind == PreviewKindGeom }

// GetPreview returns the blob for key and updates its last access time.
// A missing preview yields (nil, nil).
func GetPreview(ctx context.Context, root string, key PreviewKey) ([]byte, error) {
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	var blob []byte
	err = db.QueryRowContext(ctx, `SELECT blob FROM previews WHERE page_id=? AND kind=? AND w=? AND h=?`,
		key.PageID, key.Kind, key.W, key.H).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preview: %w", err)
	}
	now := time.Now().UTC().Format(accessLayout)
	_, _ = db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE page_id=? AND kind=? AND w=? AND h=?`,
		now, key.PageID, key.Kind, key.W, key.H)
	return blob, nil
}

// PutPreview upserts a preview blob and enforces the cache size cap via LRU eviction.
func PutPreview(ctx context.Context, root string, key PreviewKey, blob []byte) error {
	if !validKind(key.Kind) {
		return fmt.Errorf("invalid kind: %s", key.Kind)
	}
	if strings.TrimSpace(key.PageID) == "" {
		return errors.New("page id is required")
	}
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return err
	}
	defer db.Close()
	now := time.Now().UTC().Format(accessLayout)
	_, err = db.ExecContext(ctx, `INSERT INTO previews(page_id,kind,w,h,blob,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(page_id,kind,w,h) DO UPDATE SET blob=excluded.blob, size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		key.PageID, key.Kind, key.W, key.H, blob, len(blob), now, now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if capBytes := MaxPreviewsBytesFromEnv(); capBytes > 0 {
		if err := EvictPreviewsToFit(ctx, db, capBytes); err != nil {
			return err
		}
	}
	return nil
}

// GetOrCreatePreview fetches a preview or generates and stores it using gen.
func GetOrCreatePreview(ctx context.Context, root string, key PreviewKey, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	if b, err := GetPreview(ctx, root, key); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	if gen == nil {
		return nil, nil
	}
	data, err := gen(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	if err := PutPreview(ctx, root, key, data); err != nil {
		return nil, err
	}
	return data, nil
}

// InvalidatePreviews drops every cached variant for a page. An empty pageID clears the cache.
func InvalidatePreviews(ctx context.Context, root string, pageID string) (int64, error) {
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	var res sql.Result
	if pageID == "" {
		res, err = db.ExecContext(ctx, `DELETE FROM previews`)
	} else {
		res, err = db.ExecContext(ctx, `DELETE FROM previews WHERE page_id=?`, pageID)
	}
	if err != nil {
		return 0, fmt.Errorf("invalidate previews: %w", err)
	}
	return res.RowsAffected()
}

// EvictPreviewsToFit deletes least-recently-used rows until total size <= capBytes.
func EvictPreviewsToFit(ctx context.Context, db *sql.DB, capBytes int64) error {
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return fmt.Errorf("sum previews size: %w", err)
	}
	if total <= capBytes {
		return nil
	}
	rows, err := db.QueryContext(ctx, `SELECT id, size FROM previews ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	toDelete := make([]any, 0, 32)
	cur := total
	for rows.Next() {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		toDelete = append(toDelete, id)
		cur -= sz
		if cur <= capBytes {
			break
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// Close the cursor before writing; the pool holds a single connection.
	if err := rows.Close(); err != nil {
		return err
	}
	if len(toDelete) == 0 {
		return nil
	}
	q := `DELETE FROM previews WHERE id IN (` + placeholders(len(toDelete)) + `)`
	if _, err := db.ExecContext(ctx, q, toDelete...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

// TotalPreviewBytes returns total bytes tracked by previews.size.
func TotalPreviewBytes(ctx context.Context, root string) (int64, error) {
	db, err := InitOrOpenIndex(root)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	var total int64
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// MaxPreviewsBytesFromEnv reads DCV_PREVIEWS_MAX_BYTES, defaulting to 64MB if unset or invalid.
func MaxPreviewsBytesFromEnv() int64 {
	v := os.Getenv(EnvPreviewsMaxBytes)
	if v == "" {
		return defaultPreviewsMaxBytes
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return defaultPreviewsMaxBytes
	}
	return n
}
