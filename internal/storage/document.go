/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"doccanvas/internal/domain"
)

const (
	ManifestFileName = "document.json"
	BackupsDirName   = "backups"
	CrashFilePrefix  = "crash-autosave"
)

// Standard subfolders created next to the manifest.
var standardSubDirs = []string{
	"assets",
	"exports",
	BackupsDirName,
}

// DocumentHandle keeps track of a document loaded from or saved to disk.
// Root is the directory containing document.json and subfolders.
type DocumentHandle struct {
	Root         string
	ManifestPath string
	Document     domain.Document
	// Recovered is set when Open fell back to the latest backup.
	Recovered bool
}

// InitDocument creates a new document directory at root (creating it if it doesn't exist),
// scaffolds the standard subfolders, and writes the given manifest transactionally.
func InitDocument(root string, doc domain.Document) (*DocumentHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := scaffold(root); err != nil {
		return nil, err
	}
	h := &DocumentHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Document:     doc,
	}
	if err := Save(h); err != nil {
		return nil, err
	}
	return h, nil
}

func scaffold(root string) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create document root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	return nil
}

// Open loads an existing document from the given root directory.
// If the current manifest cannot be read, parsed or validated, it falls back to the latest backup.
func Open(root string) (*DocumentHandle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err == nil {
		var doc domain.Document
		if err = decodeManifest(b, &doc); err == nil {
			return &DocumentHandle{Root: root, ManifestPath: mpath, Document: doc}, nil
		}
	}
	doc, berr := openFromLatestBackup(root)
	if berr != nil {
		return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
	}
	return &DocumentHandle{Root: root, ManifestPath: mpath, Document: *doc, Recovered: true}, nil
}

func decodeManifest(b []byte, doc *domain.Document) error {
	if err := ValidateDocument(b); err != nil {
		return err
	}
	if err := json.Unmarshal(b, doc); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	return nil
}

// Encode marshals a document in the on-disk form. Nil element lists are
// written as empty arrays so the output always satisfies the schema.
func Encode(doc domain.Document) ([]byte, error) {
	doc = doc.Clone()
	for i := range doc.Pages {
		if doc.Pages[i].Elements == nil {
			doc.Pages[i].Elements = []domain.Element{}
		}
	}
	if doc.Pages == nil {
		doc.Pages = []domain.Page{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes DocumentHandle.Document to disk with transactional semantics
// and a timestamped backup of the previous manifest (if present).
// The document is validated against the embedded schema before anything is written.
func Save(h *DocumentHandle) error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	if h.Root == "" || h.ManifestPath == "" {
		return errors.New("invalid DocumentHandle: missing paths")
	}
	data, err := Encode(h.Document)
	if err != nil {
		return err
	}
	if err := ValidateDocument(data); err != nil {
		return err
	}

	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(h.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp))
		if cerr := copyFile(h.ManifestPath, bpath); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}
	return writeAtomic(h.ManifestPath, data)
}

// writeAtomic writes to a temp file in the same directory, then renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", base, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

// SaveAs writes the manifest to a new root folder, scaffolding structure if needed, and updates the handle.
func SaveAs(h *DocumentHandle, newRoot string) error {
	if h == nil {
		return errors.New("nil DocumentHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := scaffold(newRoot); err != nil {
		return err
	}
	h.Root = newRoot
	h.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	h.Recovered = false
	return Save(h)
}

// AutosaveCrashSnapshot writes the in-memory document to a timestamped file in
// the backups folder without touching the manifest. It skips schema validation
// so that whatever state exists at crash time is preserved.
func AutosaveCrashSnapshot(h *DocumentHandle) (string, error) {
	if h == nil {
		return "", errors.New("nil DocumentHandle")
	}
	if h.Root == "" {
		return "", errors.New("invalid DocumentHandle: missing root")
	}
	data, err := Encode(h.Document)
	if err != nil {
		return "", err
	}
	bdir := filepath.Join(h.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405.000")
	path := filepath.Join(bdir, fmt.Sprintf("%s-%s.json", CrashFilePrefix, stamp))
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

// ListBackups returns manifest backup paths, oldest first.
func ListBackups(root string) ([]string, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out, nil
}

// PruneBackups deletes all but the newest keep manifest backups.
func PruneBackups(root string, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	all, err := ListBackups(root)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := 0; i < len(all)-keep; i++ {
		if err := os.Remove(all[i]); err != nil {
			return n, fmt.Errorf("remove backup: %w", err)
		}
		n++
	}
	return n, nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}

// openFromLatestBackup tries backups newest first and returns the first that parses.
func openFromLatestBackup(root string) (*domain.Document, error) {
	candidates, err := ListBackups(root)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	var lastErr error
	for i := len(candidates) - 1; i >= 0; i-- {
		b, err := os.ReadFile(candidates[i])
		if err != nil {
			lastErr = fmt.Errorf("read backup: %w", err)
			continue
		}
		var doc domain.Document
		if err := decodeManifest(b, &doc); err != nil {
			lastErr = err
			continue
		}
		return &doc, nil
	}
	return nil, fmt.Errorf("no usable backup: %w", lastErr)
}
