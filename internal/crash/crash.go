/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in the editor or CLI into a crash report and an
// autosave of the live document, then exits with status 2.
package crash

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"doccanvas/internal/domain"
	applog "doccanvas/internal/log"
	"doccanvas/internal/storage"
	"doccanvas/internal/telemetry"
)

// ExitCode is the process status after a recovered panic.
const ExitCode = 2

var exitFn = os.Exit

// Snapshotter returns the latest in-memory document for the crash autosave.
// The editor's Document method fits; nil keeps the handle's document.
type Snapshotter func() domain.Document

// Recover must be deferred directly:
//
//	defer crash.Recover(h, ed.Document)
//
// h may be nil when no document folder is open.
func Recover(h *storage.DocumentHandle, latest Snapshotter) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	rep := newReport(r, debug.Stack())
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(rep.Stack)))

	if h != nil && latest != nil {
		refresh(h, latest)
	}
	rep.describe(h)

	path, err := writeReport(h, rep)
	if err != nil {
		l.Error("write crash report failed", slog.String("path", path), slog.Any("err", err))
	}
	if h != nil {
		if snap, err := storage.AutosaveCrashSnapshot(h); err != nil {
			l.Error("crash autosave failed", slog.Any("err", err))
		} else {
			rep.Autosave = snap
			l.Info("crash autosave written", slog.String("path", snap))
		}
	}

	telemetry.UploadCrash(rep.Bytes())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	telemetry.Flush(ctx)
	cancel()

	if _, err := fmt.Fprint(os.Stderr, rep.Notice(path)); err != nil {
		l.Error("write crash notice failed", slog.Any("err", err))
	}
	exitFn(ExitCode)
}

// refresh copies the live document into the handle. A second panic while
// reading editor state must not prevent the report from being written.
func refresh(h *storage.DocumentHandle, latest Snapshotter) {
	defer func() {
		if r := recover(); r != nil {
			applog.WithComponent("crash").Warn("snapshot of live document failed", slog.Any("panic", r))
		}
	}()
	h.Document = latest()
}
