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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"doccanvas/internal/domain"
	"doccanvas/internal/storage"
	"doccanvas/internal/version"
)

// Report is the plain text crash report. It names the document folder and
// counts but never includes element content.
type Report struct {
	Time     time.Time
	Panic    string
	Stack    []byte
	Root     string
	Manifest string
	Format   domain.Format
	Pages    []int // element count per page
	Autosave string
}

func newReport(panicVal any, stack []byte) *Report {
	return &Report{Time: time.Now(), Panic: fmt.Sprint(panicVal), Stack: stack}
}

func (r *Report) describe(h *storage.DocumentHandle) {
	if h == nil {
		return
	}
	r.Root = h.Root
	r.Manifest = h.ManifestPath
	r.Format = h.Document.Format
	r.Pages = r.Pages[:0]
	for _, p := range h.Document.Pages {
		r.Pages = append(r.Pages, len(p.Elements))
	}
}

// Bytes renders the report.
func (r *Report) Bytes() []byte {
	var b bytes.Buffer
	b.WriteString("DocCanvas Crash Report\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", r.Time.Format(time.RFC3339))
	fmt.Fprintf(&b, "Version: %s\n", version.String())
	fmt.Fprintf(&b, "OS/Arch: %s/%s Go: %s\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
	if r.Root != "" {
		fmt.Fprintf(&b, "DocumentRoot: %s\n", r.Root)
		fmt.Fprintf(&b, "Manifest: %s\n", r.Manifest)
		total := 0
		for _, n := range r.Pages {
			total += n
		}
		fmt.Fprintf(&b, "Format: %s Pages: %d Elements: %d\n", r.Format, len(r.Pages), total)
		for i, n := range r.Pages {
			fmt.Fprintf(&b, "  page %d: %d elements\n", i+1, n)
		}
	}
	fmt.Fprintf(&b, "\nPanic: %s\n\nStack:\n%s\n", r.Panic, r.Stack)
	return b.Bytes()
}

// Notice is the message printed to stderr before exiting.
func (r *Report) Notice(reportPath string) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "DocCanvas stopped after an internal error (%s).\n", r.Panic)
	if reportPath != "" {
		fmt.Fprintf(&b, "Crash report: %s\n", reportPath)
	}
	if r.Autosave != "" {
		fmt.Fprintf(&b, "Unsaved work was written to: %s\n", r.Autosave)
	}
	fmt.Fprintf(&b, "Version: %s (%s/%s)\n", version.String(), runtime.GOOS, runtime.GOARCH)
	return b.String()
}

// writeReport stores the report in the document's backups folder, or the
// temp dir when no document is open.
func writeReport(h *storage.DocumentHandle, r *Report) (string, error) {
	dir := os.TempDir()
	if h != nil && h.Root != "" {
		dir = filepath.Join(h.Root, storage.BackupsDirName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			dir = os.TempDir()
		}
	}
	path := filepath.Join(dir, "crash-"+r.Time.Format("20060102-150405")+".log")
	if err := os.WriteFile(path, r.Bytes(), 0o644); err != nil {
		return path, err
	}
	return path, nil
}
