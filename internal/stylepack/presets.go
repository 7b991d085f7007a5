/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package stylepack

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"doccanvas/internal/editor"
)

// StylesDir is the folder next to the manifest that holds presets.
const StylesDir = "styles"

const presetExt = ".yaml"

// styleFields are the properties a preset may carry. Geometry and content
// are per element and never part of a preset.
var styleFields = []editor.Field{
	editor.FieldFontSize, editor.FieldFontFamily, editor.FieldColor,
	editor.FieldBackground, editor.FieldBorderColor, editor.FieldBorderWidth,
	editor.FieldBold, editor.FieldItalic, editor.FieldUnderline, editor.FieldTextAlign,
}

var presetName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _-]*$`)

// Preset is a named set of style properties stored as styles/<name>.yaml.
type Preset struct {
	Name        string            `yaml:"-"`
	Description string            `yaml:"description,omitempty"`
	Properties  map[string]string `yaml:"properties"`
}

// Validate checks the name and that every property is a style field.
func (p Preset) Validate() error {
	if !presetName.MatchString(p.Name) {
		return fmt.Errorf("invalid preset name %q", p.Name)
	}
	if len(p.Properties) == 0 {
		return fmt.Errorf("preset %q has no properties", p.Name)
	}
	for k := range p.Properties {
		f, err := editor.ParseField(k)
		if err != nil {
			return fmt.Errorf("preset %q: %w", p.Name, err)
		}
		if !isStyleField(f) {
			return fmt.Errorf("preset %q: %s is not a style property", p.Name, k)
		}
	}
	return nil
}

func isStyleField(f editor.Field) bool {
	for _, s := range styleFields {
		if s == f {
			return true
		}
	}
	return false
}

func presetPath(root, name string) string {
	return filepath.Join(root, StylesDir, name+presetExt)
}

// Save writes p below root, replacing a preset of the same name.
func Save(root string, p Preset) error {
	if strings.TrimSpace(root) == "" {
		return errors.New("root is required")
	}
	if err := p.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(root, StylesDir), 0o755); err != nil {
		return fmt.Errorf("ensure styles dir: %w", err)
	}
	return os.WriteFile(presetPath(root, p.Name), data, 0o644)
}

// Load reads one preset by name.
func Load(root, name string) (Preset, error) {
	data, err := os.ReadFile(presetPath(root, name))
	if err != nil {
		return Preset{}, err
	}
	p := Preset{Name: name}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("parse preset %s: %w", name, err)
	}
	return p, p.Validate()
}

// List returns every valid preset below root sorted by name. Unreadable or
// invalid files are skipped. A missing styles folder is not an error.
func List(root string) ([]Preset, error) {
	entries, err := os.ReadDir(filepath.Join(root, StylesDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []Preset
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), presetExt) {
			continue
		}
		p, err := Load(root, strings.TrimSuffix(e.Name(), presetExt))
		if err != nil {
			log().Warn("skip preset", slog.String("file", e.Name()), slog.Any("err", err))
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Capture builds a preset from the style of the selected element.
func Capture(ed *editor.Editor, name string) (Preset, error) {
	el, ok := ed.Selection()
	if !ok {
		return Preset{}, editor.ErrNoSelection
	}
	p := Preset{Name: name, Properties: map[string]string{}}
	for _, f := range editor.Fields(el) {
		if !isStyleField(f) {
			continue
		}
		if v, ok := ed.Property(f); ok {
			p.Properties[string(f)] = v
		}
	}
	return p, p.Validate()
}

// Apply stages every preset property that the selected element supports and
// commits them together, so the change is one undo step. Properties the
// element does not show (text styling on a shape) are ignored. Edits already
// staged by the form are committed with it. It reports
// how many properties were applied.
func Apply(ed *editor.Editor, p Preset) (int, error) {
	el, ok := ed.Selection()
	if !ok {
		return 0, editor.ErrNoSelection
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}
	n := 0
	for _, f := range editor.Fields(el) {
		v, ok := p.Properties[string(f)]
		if !ok || !isStyleField(f) {
			continue
		}
		if err := ed.Stage(f, v); err != nil {
			ed.DiscardProperties()
			return 0, err
		}
		n++
	}
	if n == 0 {
		return 0, nil
	}
	if err := ed.CommitProperties(); err != nil {
		ed.DiscardProperties()
		return 0, err
	}
	return n, nil
}
