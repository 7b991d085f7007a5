/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package stylepack manages style presets of a document and moves them
// between documents as zip packs.
package stylepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "doccanvas/internal/log"
)

// ManifestName is the human readable entry at the root of every pack.
const ManifestName = "stylepack.manifest.txt"

// maxPresetBytes bounds a single preset entry when installing.
const maxPresetBytes = 1 << 20

func log() *slog.Logger { return applog.WithComponent("stylepack") }

// ExportPack zips the presets of the document at root into destZipPath. The
// archive holds styles/<name>.yaml entries plus a small manifest. A document
// without presets still yields a pack with only the manifest.
func ExportPack(root string, destZipPath string) (n int, err error) {
	l := applog.WithOperation(log(), "export").With(slog.String("doc", root))
	if strings.TrimSpace(root) == "" {
		return 0, errors.New("root is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return 0, errors.New("destZipPath is required")
	}
	presets, err := List(root)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return 0, fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return 0, fmt.Errorf("create zip: %w", err)
	}
	defer func() {
		if cerr := zf.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	zw := zip.NewWriter(zf)

	var b strings.Builder
	fmt.Fprintf(&b, "DocCanvas Style Pack\nCreated: %s\n\n", time.Now().Format(time.RFC3339))
	for _, p := range presets {
		fmt.Fprintf(&b, "%s\t%s\n", p.Name, p.Description)
	}
	w, err := zw.Create(ManifestName)
	if err != nil {
		return 0, fmt.Errorf("add manifest: %w", err)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return 0, fmt.Errorf("write manifest: %w", err)
	}

	for _, p := range presets {
		data, err := os.ReadFile(presetPath(root, p.Name))
		if err != nil {
			return n, err
		}
		fw, err := zw.Create(path.Join(StylesDir, p.Name+presetExt))
		if err != nil {
			return n, err
		}
		if _, err := fw.Write(data); err != nil {
			return n, err
		}
		n++
	}
	if err := zw.Close(); err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return n, fmt.Errorf("build zip: %w", err)
	}
	l.Info("style pack exported", slog.Int("presets", n), slog.String("zip", destZipPath))
	return n, nil
}

// InstallPack copies the presets of a pack into the document at root.
// Presets that already exist are kept; entries that are not valid presets
// are skipped. It returns the number of presets installed.
func InstallPack(root string, packZipPath string) (int, error) {
	l := applog.WithOperation(log(), "install").With(slog.String("doc", root))
	if strings.TrimSpace(root) == "" {
		return 0, errors.New("root is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name, ok := entryPresetName(f.Name)
		if !ok {
			if f.Name != ManifestName && !f.FileInfo().IsDir() {
				l.Warn("skip entry", slog.String("entry", f.Name))
			}
			continue
		}
		if _, err := os.Stat(presetPath(root, name)); err == nil {
			l.Warn("skip existing preset", slog.String("name", name))
			continue
		}
		p, err := readPreset(f, name)
		if err != nil {
			l.Warn("skip invalid preset", slog.String("entry", f.Name), slog.Any("err", err))
			continue
		}
		if err := Save(root, p); err != nil {
			return installed, err
		}
		installed++
	}
	l.Info("style pack installed", slog.Int("presets", installed))
	return installed, nil
}

// entryPresetName accepts styles/<name>.yaml or <name>.yaml. Any other path,
// including ones that climb out of the archive, is rejected.
func entryPresetName(entry string) (string, bool) {
	clean := path.Clean(strings.ReplaceAll(entry, `\`, "/"))
	dir, file := path.Split(clean)
	if dir != "" && dir != StylesDir+"/" {
		return "", false
	}
	if !strings.HasSuffix(file, presetExt) {
		return "", false
	}
	name := strings.TrimSuffix(file, presetExt)
	return name, presetName.MatchString(name)
}

func readPreset(f *zip.File, name string) (Preset, error) {
	rc, err := f.Open()
	if err != nil {
		return Preset{}, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(io.LimitReader(rc, maxPresetBytes+1))
	if err != nil {
		return Preset{}, err
	}
	if len(data) > maxPresetBytes {
		return Preset{}, errors.New("preset too large")
	}
	p := Preset{Name: name}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, err
	}
	return p, p.Validate()
}
