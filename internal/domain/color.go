/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Transparent is the style keyword for "no paint".
const Transparent = "transparent"

// ParseColor converts a style color ("#rrggbb", "#rgb" or "transparent") to RGBA.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, Transparent) || s == "" {
		return color.RGBA{}, true
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, false
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, true
}

// NormalizeColor returns the canonical lower-case "#rrggbb" form, or
// "transparent". The second result is false for malformed input.
func NormalizeColor(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, Transparent) {
		return Transparent, true
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", false
	}
	return c.Hex(), true
}
