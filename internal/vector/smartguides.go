/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Smart guides for dragging elements: the moving box is compared against the
// canvas and sibling elements and the closest edge/center alignment per axis
// is reported. The editor renders guides only; grid snapping stays in charge
// of the committed position.

import "math"

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Threshold is the maximum distance in pixels at which a guide is reported.
	Threshold float64
	// Snap to edges (left, right, top, bottom)
	SnapToEdges bool
	// Snap to centers (cx, cy)
	SnapToCenters bool
}

// Anchor is a static reference rect (the canvas or another element).
// Weight biases selection when distances tie (higher = preferred).
type Anchor struct {
	Rect   Rect
	Weight float64
}

// GuideLine describes a visual guide generated during an alignment.
// Orientation is "vertical" or "horizontal"; Kind is "edge" or "center".
// Position is the x (vertical) or y (horizontal) coordinate of the guide.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

// ComputeSmartGuides returns the aligned rectangle and the guide lines for a
// moving rectangle against a set of anchors. X and Y are handled independently.
func ComputeSmartGuides(moving Rect, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}
	var guides []GuideLine

	bestX := candidate{dist: math.Inf(1)}
	bestY := candidate{dist: math.Inf(1)}

	mxL, mxR, mxT, mxB := moving.X, moving.X+moving.W, moving.Y, moving.Y+moving.H
	mxCX, mxCY := moving.X+moving.W/2, moving.Y+moving.H/2

	for _, a := range anchors {
		axL, axR, axT, axB := a.Rect.X, a.Rect.X+a.Rect.W, a.Rect.Y, a.Rect.Y+a.Rect.H
		axCX, axCY := a.Rect.X+a.Rect.W/2, a.Rect.Y+a.Rect.H/2

		if opts.SnapToEdges {
			bestX.consider(mxL-axL, opts.Threshold, a.Weight, guideForVertical(axL, moving, a.Rect, "edge"))
			bestX.consider(mxR-axR, opts.Threshold, a.Weight, guideForVertical(axR, moving, a.Rect, "edge"))
			// abutting edges
			bestX.consider(mxL-axR, opts.Threshold, a.Weight, guideForVertical(axR, moving, a.Rect, "edge"))
			bestX.consider(mxR-axL, opts.Threshold, a.Weight, guideForVertical(axL, moving, a.Rect, "edge"))

			bestY.consider(mxT-axT, opts.Threshold, a.Weight, guideForHorizontal(axT, moving, a.Rect, "edge"))
			bestY.consider(mxB-axB, opts.Threshold, a.Weight, guideForHorizontal(axB, moving, a.Rect, "edge"))
			bestY.consider(mxT-axB, opts.Threshold, a.Weight, guideForHorizontal(axB, moving, a.Rect, "edge"))
			bestY.consider(mxB-axT, opts.Threshold, a.Weight, guideForHorizontal(axT, moving, a.Rect, "edge"))
		}
		if opts.SnapToCenters {
			bestX.consider(mxCX-axCX, opts.Threshold, a.Weight, guideForVertical(axCX, moving, a.Rect, "center"))
			bestY.consider(mxCY-axCY, opts.Threshold, a.Weight, guideForHorizontal(axCY, moving, a.Rect, "center"))
		}
	}

	snapped := moving
	if bestX.dist <= opts.Threshold {
		snapped.X = FloatRound(moving.X-bestX.delta, 3)
		guides = append(guides, bestX.guide)
	}
	if bestY.dist <= opts.Threshold {
		snapped.Y = FloatRound(moving.Y-bestY.delta, 3)
		guides = append(guides, bestY.guide)
	}
	return snapped, guides
}

type candidate struct {
	delta float64
	dist  float64
	guide GuideLine
}

func (c *candidate) consider(delta, threshold, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	score := dist / math.Max(1, weight)
	if score < c.dist {
		c.dist = dist
		c.delta = delta
		c.guide = g
	}
}

func guideForVertical(x float64, a Rect, b Rect, kind string) GuideLine {
	minY := math.Min(a.Y, b.Y)
	maxY := math.Max(a.Y+a.H, b.Y+b.H)
	x = FloatRound(x, 3)
	return GuideLine{
		Orientation: "vertical",
		Kind:        kind,
		Position:    x,
		From:        Pt{x, minY},
		To:          Pt{x, maxY},
	}
}

func guideForHorizontal(y float64, a Rect, b Rect, kind string) GuideLine {
	minX := math.Min(a.X, b.X)
	maxX := math.Max(a.X+a.W, b.X+b.W)
	y = FloatRound(y, 3)
	return GuideLine{
		Orientation: "horizontal",
		Kind:        kind,
		Position:    y,
		From:        Pt{minX, y},
		To:          Pt{maxX, y},
	}
}
