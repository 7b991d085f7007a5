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
	"log/slog"
	"time"

	"doccanvas/internal/domain"
	applog "doccanvas/internal/log"
)

// PersistOptions controls the index side effects of Persist.
type PersistOptions struct {
	// Index updates the search rows, appends a revision and clears stale previews.
	Index bool
	// KeepRevisions prunes older revisions when > 0.
	KeepRevisions int
}

// Persist stores doc through h: the manifest write is authoritative and its
// error is returned, while index maintenance failures are only logged because
// the index can always be rebuilt from the manifest.
func Persist(ctx context.Context, h *DocumentHandle, doc domain.Document, opt PersistOptions) error {
	h.Document = doc
	if err := Save(h); err != nil {
		return err
	}
	if !opt.Index {
		return nil
	}
	ctx = applog.WithDocument(ctx, doc.ID)
	l := applog.WithOperation(applog.WithComponent("storage"), "persist")
	if err := UpdateIndex(ctx, h.Root, doc); err != nil {
		l.WarnContext(ctx, "index update failed", slog.Any("err", err))
		return nil
	}
	rev, err := AppendRevision(ctx, h, time.Now())
	if err != nil {
		l.WarnContext(ctx, "append revision failed", slog.Any("err", err))
	}
	if opt.KeepRevisions > 0 {
		if _, err := PruneRevisions(ctx, h, opt.KeepRevisions); err != nil {
			l.WarnContext(ctx, "prune revisions failed", slog.Any("err", err))
		}
	}
	if _, err := InvalidatePreviews(ctx, h.Root, ""); err != nil {
		l.WarnContext(ctx, "invalidate previews failed", slog.Any("err", err))
	}
	l.DebugContext(ctx, "persisted", slog.Int64("revision", rev), slog.Int("pages", len(doc.Pages)))
	return nil
}
