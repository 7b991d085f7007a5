/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"doccanvas/internal/domain"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls a multi-format export of one document.
//
// Path semantics:
//   - OutDir defaults to <exports>/<preset>; relative paths are resolved
//     against ExportsDir.
//   - PDF and archive outputs are single files named after the document.
//   - PNG and SVG outputs are page-<n>.(png|svg) under png/ or svg/.
type BatchOptions struct {
	Preset     PresetName
	Formats    []string // pdf, png, svg, zip; empty means preset defaults
	ExportsDir string   // base for relative OutDir values
	OutDir     string
	Render     Options
}

// Batch runs each requested format and returns every written path.
func Batch(doc domain.Document, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	base := opt.OutDir
	if base == "" {
		base = string(opt.Preset)
		if base == "" {
			base = "batch"
		}
	}
	if !filepath.IsAbs(base) {
		base = filepath.Join(opt.ExportsDir, base)
	}
	render := opt.Render
	if render.Scale == 0 {
		render.Scale = presetScale(opt.Preset)
	}
	stem := fileStem(doc)

	var out []string
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "pdf":
			p := filepath.Join(base, "pdf", stem+".pdf")
			if err := PDFFile(doc, p, render); err != nil {
				return out, fmt.Errorf("pdf: %w", err)
			}
			out = append(out, p)
		case "png":
			paths, err := PNGPages(doc, filepath.Join(base, "png"), render)
			out = append(out, paths...)
			if err != nil {
				return out, fmt.Errorf("png: %w", err)
			}
		case "svg":
			paths, err := SVGPages(doc, filepath.Join(base, "svg"), render)
			out = append(out, paths...)
			if err != nil {
				return out, fmt.Errorf("svg: %w", err)
			}
		case "zip":
			p, err := ArchiveFile(doc, filepath.Join(base, "zip", stem+".zip"), render)
			if err != nil {
				return out, fmt.Errorf("zip: %w", err)
			}
			out = append(out, p)
		default:
			return out, fmt.Errorf("unknown format: %s", f)
		}
	}
	return out, nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg", "zip"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"pdf"}
	}
}

// presetScale picks the raster scale: screen size for web, 2x for print.
func presetScale(p PresetName) float64 {
	if p == PresetPrint {
		return 2
	}
	return 1
}

// fileStem turns the document name into a safe file name.
func fileStem(doc domain.Document) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(doc.Name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}
