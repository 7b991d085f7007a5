/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"doccanvas/internal/domain"
	"doccanvas/internal/storage"
)

// trap swaps stderr and exitFn for the duration of fn and returns what was
// printed and the exit code requested.
func trap(t *testing.T, fn func()) (string, int) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	oldStderr, oldExit := os.Stderr, exitFn
	code := -1
	os.Stderr = w
	exitFn = func(c int) { code = c }
	defer func() {
		os.Stderr, exitFn = oldStderr, oldExit
	}()

	out := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		out <- buf.String()
	}()
	fn()
	_ = w.Close()
	return <-out, code
}

func backups(t *testing.T, root string) (report, autosave string) {
	t.Helper()
	dir := filepath.Join(root, storage.BackupsDirName)
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read backups: %v", err)
	}
	for _, e := range ents {
		switch name := e.Name(); {
		case strings.HasPrefix(name, storage.CrashFilePrefix):
			autosave = filepath.Join(dir, name)
		case strings.HasPrefix(name, "crash-") && strings.HasSuffix(name, ".log"):
			report = filepath.Join(dir, name)
		}
	}
	return report, autosave
}

func TestRecoverAutosavesLiveDocument(t *testing.T) {
	root := t.TempDir()
	h := &storage.DocumentHandle{Root: root, ManifestPath: filepath.Join(root, storage.ManifestFileName)}
	live := domain.Document{ID: "doc_live", Name: "Live", Format: domain.FormatPptx,
		Pages: []domain.Page{{ID: "p1", Elements: []domain.Element{{ID: "e1", Kind: domain.KindTextbox}}}}}

	stderr, code := trap(t, func() {
		defer Recover(h, func() domain.Document { return live })
		panic("boom")
	})
	if code != ExitCode {
		t.Fatalf("exit code = %d", code)
	}

	report, autosave := backups(t, root)
	if report == "" || autosave == "" {
		t.Fatalf("report=%q autosave=%q", report, autosave)
	}
	b, _ := os.ReadFile(report)
	if !bytes.Contains(b, []byte("Panic: boom")) || !bytes.Contains(b, []byte("Format: pptx Pages: 1 Elements: 1")) {
		t.Fatalf("report:\n%s", b)
	}
	sb, _ := os.ReadFile(autosave)
	if !bytes.Contains(sb, []byte("doc_live")) {
		t.Fatalf("autosave does not hold the live document: %s", sb)
	}
	if !strings.Contains(stderr, report) || !strings.Contains(stderr, autosave) {
		t.Fatalf("notice does not name both files: %q", stderr)
	}
}

func TestRecoverSurvivesPanickingSnapshotter(t *testing.T) {
	root := t.TempDir()
	h := &storage.DocumentHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, storage.ManifestFileName),
		Document:     domain.Document{ID: "doc_stale", Format: domain.FormatDocx},
	}
	_, code := trap(t, func() {
		defer Recover(h, func() domain.Document { panic("editor state broken") })
		panic("first")
	})
	if code != ExitCode {
		t.Fatalf("exit code = %d", code)
	}
	_, autosave := backups(t, root)
	sb, _ := os.ReadFile(autosave)
	if !bytes.Contains(sb, []byte("doc_stale")) {
		t.Fatalf("autosave should fall back to the handle document: %s", sb)
	}
}

func TestRecoverWithoutPanicDoesNothing(t *testing.T) {
	_, code := trap(t, func() {
		defer Recover(nil, nil)
	})
	if code != -1 {
		t.Fatalf("exit requested without a panic: %d", code)
	}
}
