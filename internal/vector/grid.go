/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "math"

// SnapToGrid rounds v to the nearest multiple of grid. Halfway values round
// away from zero, so 15 snaps to 20 on a 10px grid. A non-positive grid
// disables snapping.
func SnapToGrid(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// SnapPt snaps both coordinates of p.
func SnapPt(p Pt, grid float64) Pt {
	return Pt{SnapToGrid(p.X, grid), SnapToGrid(p.Y, grid)}
}

// ClampNonNegative replaces negative coordinates with zero.
func ClampNonNegative(p Pt) Pt {
	return Pt{math.Max(0, p.X), math.Max(0, p.Y)}
}

// DragOrigin computes the new top-left corner for a dragged box: pointer minus
// the grab offset, snapped when grid > 0, then clamped to the page.
func DragOrigin(pointer, grab Pt, grid float64) Pt {
	p := pointer.Sub(grab)
	if grid > 0 {
		p = SnapPt(p, grid)
	}
	return ClampNonNegative(p)
}
