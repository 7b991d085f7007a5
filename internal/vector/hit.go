/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Hit testing for the outlines an element can have. Boxes are in page
// coordinates; elements carry no transforms.

import "math"

// Outline selects the hit-test geometry for a box.
type Outline uint8

const (
	OutlineBox Outline = iota
	OutlineEllipse
	OutlineTriangle // apex at top-center, base along the bottom edge
	OutlineSegment  // horizontal stroke through the vertical center
)

// SegmentTolerance is the minimum half-thickness used when hitting thin strokes.
const SegmentTolerance = 4

// Hit reports whether p lies inside the outline fitted to r.
func Hit(o Outline, r Rect, p Pt) bool {
	switch o {
	case OutlineEllipse:
		return hitEllipse(r, p)
	case OutlineTriangle:
		return hitTriangle(r, p)
	case OutlineSegment:
		return hitSegment(r, p)
	default:
		return r.Contains(p)
	}
}

// HitBox reports whether p lies in r, widening a side thinner than two
// SegmentTolerance around its center so zero-size boxes stay hittable.
func HitBox(r Rect, p Pt) bool {
	if min := 2.0 * SegmentTolerance; r.W < min {
		r.X -= (min - r.W) / 2
		r.W = min
	}
	if min := 2.0 * SegmentTolerance; r.H < min {
		r.Y -= (min - r.H) / 2
		r.H = min
	}
	return r.Contains(p)
}

func hitEllipse(r Rect, p Pt) bool {
	// ((x-cx)/rx)^2 + ((y-cy)/ry)^2 <= 1
	rx, ry := r.W/2, r.H/2
	if rx == 0 || ry == 0 {
		return false
	}
	c := r.Center()
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

func hitTriangle(r Rect, p Pt) bool {
	if !r.Contains(p) || r.H == 0 {
		return false
	}
	// half-width of the triangle at height p.Y grows linearly from apex to base
	t := (p.Y - r.Y) / r.H
	half := t * r.W / 2
	cx := r.X + r.W/2
	return math.Abs(p.X-cx) <= half
}

func hitSegment(r Rect, p Pt) bool {
	half := math.Max(r.H/2, SegmentTolerance)
	cy := r.Y + r.H/2
	return p.X >= r.X && p.X <= r.X+r.W && math.Abs(p.Y-cy) <= half
}
