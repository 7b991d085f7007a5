/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"
	"strings"
)

// Format is the document flavour. It only drives canvas size and grid size.
type Format string

const (
	FormatDocx Format = "docx" // word-like
	FormatPptx Format = "pptx" // slide-like
	FormatXlsx Format = "xlsx" // sheet-like
)

// DefaultFormat is used when neither the caller nor the config picks one.
const DefaultFormat = FormatPptx

// CanvasSpec describes the fixed canvas for a format.
type CanvasSpec struct {
	Width  float64
	Height float64
	Grid   float64
}

var canvasSpecs = map[Format]CanvasSpec{
	FormatDocx: {Width: 800, Height: 1000, Grid: 10},
	FormatPptx: {Width: 800, Height: 600, Grid: 10},
	FormatXlsx: {Width: 1000, Height: 600, Grid: 20},
}

// Canvas returns the canvas spec for f, falling back to the default format.
func (f Format) Canvas() CanvasSpec {
	if c, ok := canvasSpecs[f]; ok {
		return c
	}
	return canvasSpecs[DefaultFormat]
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	_, ok := canvasSpecs[f]
	return ok
}

// Label is a human-friendly name used by the CLI and UI.
func (f Format) Label() string {
	switch f {
	case FormatDocx:
		return "Word Document (.docx)"
	case FormatXlsx:
		return "Excel Spreadsheet (.xlsx)"
	default:
		return "PowerPoint (.pptx)"
	}
}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown format %q (want docx, pptx or xlsx)", s)
	}
	return f, nil
}

// Formats lists the supported formats in display order.
func Formats() []Format { return []Format{FormatDocx, FormatPptx, FormatXlsx} }
