/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package clipboard holds the single copied element used for paste.
package clipboard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	sysclip "github.com/atotto/clipboard"

	"doccanvas/internal/domain"
)

// mimeTag prefixes the JSON payload written to the system clipboard so a
// foreign text is never mistaken for an element.
const mimeTag = "doccanvas/element+json:"

// ErrNoPayload is returned by Import when the system clipboard holds no element.
var ErrNoPayload = errors.New("clipboard: no element payload")

// Mirror publishes copies outside the process. Implementations must not block.
type Mirror interface {
	Write(text string) error
	Read() (string, error)
}

// System mirrors to the OS clipboard through atotto/clipboard.
type System struct{}

func (System) Write(text string) error { return sysclip.WriteAll(text) }
func (System) Read() (string, error)   { return sysclip.ReadAll() }

// Available reports whether the platform has a clipboard utility.
func (System) Available() bool { return !sysclip.Unsupported }

// Clipboard is a single slot. Copy stores a value copy; copying again overwrites.
type Clipboard struct {
	mu     sync.Mutex
	el     domain.Element
	has    bool
	mirror Mirror
}

// New returns an empty clipboard. mirror may be nil.
func New(mirror Mirror) *Clipboard {
	return &Clipboard{mirror: mirror}
}

// Copy stores el. A mirror failure is returned but the in-process copy is kept.
func (c *Clipboard) Copy(el domain.Element) error {
	c.mu.Lock()
	c.el, c.has = el, true
	m := c.mirror
	c.mu.Unlock()
	if m == nil {
		return nil
	}
	text, err := Encode(el)
	if err != nil {
		return err
	}
	if err := m.Write(text); err != nil {
		return fmt.Errorf("mirror clipboard: %w", err)
	}
	return nil
}

// Payload returns the stored element.
func (c *Clipboard) Payload() (domain.Element, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.el, c.has
}

// Has reports whether a payload exists.
func (c *Clipboard) Has() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.has
}

// Clear empties the slot.
func (c *Clipboard) Clear() {
	c.mu.Lock()
	c.el, c.has = domain.Element{}, false
	c.mu.Unlock()
}

// Import replaces the slot with an element read back from the mirror, which
// lets a copy made in another editor window be pasted here.
func (c *Clipboard) Import() error {
	c.mu.Lock()
	m := c.mirror
	c.mu.Unlock()
	if m == nil {
		return ErrNoPayload
	}
	text, err := m.Read()
	if err != nil {
		return fmt.Errorf("read clipboard: %w", err)
	}
	el, err := Decode(text)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.el, c.has = el, true
	c.mu.Unlock()
	return nil
}

// Encode renders el as tagged JSON text.
func Encode(el domain.Element) (string, error) {
	b, err := json.Marshal(el)
	if err != nil {
		return "", fmt.Errorf("encode element: %w", err)
	}
	return mimeTag + string(b), nil
}

// Decode parses text written by Encode.
func Decode(text string) (domain.Element, error) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(text), mimeTag)
	if !ok {
		return domain.Element{}, ErrNoPayload
	}
	var el domain.Element
	if err := json.Unmarshal([]byte(raw), &el); err != nil {
		return domain.Element{}, fmt.Errorf("decode element: %w", err)
	}
	return el, nil
}

// Offset returns a copy of el moved by (dx, dy) with geometry clamped to >= 0.
func Offset(el domain.Element, dx, dy float64) domain.Element {
	el.X += dx
	el.Y += dy
	if el.X < 0 {
		el.X = 0
	}
	if el.Y < 0 {
		el.Y = 0
	}
	return el
}
