/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"doccanvas/internal/domain"
	"doccanvas/internal/storage"
)

// ArchiveFile packages the selected pages as PNG images plus the document
// manifest into a single ZIP at outPath. A missing .zip extension is added.
// Pages are numbered with zero padding so readers sort them correctly.
func ArchiveFile(doc domain.Document, outPath string, opt Options) (string, error) {
	pages, err := selectPages(doc, opt.Pages)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(strings.ToLower(outPath), ".zip") {
		outPath += ".zip"
	}
	zw, f, err := createZip(outPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	pad := len(fmt.Sprint(len(pages)))
	imgBuf := &bytes.Buffer{}
	for i, idx := range pages {
		img, err := RenderPage(doc, idx, opt)
		if err != nil {
			return "", err
		}
		imgBuf.Reset()
		if err := png.Encode(imgBuf, img); err != nil {
			return "", fmt.Errorf("encode png: %w", err)
		}
		name := fmt.Sprintf("pages/%0*d.png", pad, i+1)
		if err := addZipFile(zw, name, imgBuf.Bytes()); err != nil {
			return "", fmt.Errorf("zip add image: %w", err)
		}
	}

	manifest, err := storage.Encode(doc)
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	if err := addZipFile(zw, storage.ManifestFileName, manifest); err != nil {
		return "", fmt.Errorf("zip add manifest: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("close zip: %w", err)
	}
	return outPath, nil
}

func createZip(outPath string) (*zip.Writer, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create archive: %w", err)
	}
	return zip.NewWriter(f), f, nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
