/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "testing"

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
	if c := r.Center(); c.X != 60 || c.Y != 45 {
		t.Fatalf("unexpected center: %+v", c)
	}
}

func TestGeometry_Union_MinMax_FloatRound(t *testing.T) {
	a := R(0, 0, 10, 10)
	b := R(5, -5, 5, 10)
	u := a.Union(b)
	if u.X != 0 || u.Y != -5 || u.W != 10 || u.H != 15 {
		t.Fatalf("unexpected union: %+v", u)
	}
	if m := a.Max(); m.X != 10 || m.Y != 10 {
		t.Fatalf("max wrong: %+v", m)
	}
	if FloatRound(1.23456, 2) != 1.23 {
		t.Fatalf("float round fail")
	}
	if FloatRound(1.23456, -1) != 1.23456 {
		t.Fatalf("negative places should be no-op")
	}
}

func TestSnapToGridRoundsToNearest(t *testing.T) {
	cases := []struct {
		in, grid, want float64
	}{
		{15, 10, 20},
		{14.9, 10, 10},
		{4, 10, 0},
		{25, 20, 20},
		{30, 20, 40},
		{37, 0, 37},
		{-4, 10, 0},
	}
	for _, c := range cases {
		if got := SnapToGrid(c.in, c.grid); got != c.want && !(got == 0 && c.want == 0) {
			t.Fatalf("SnapToGrid(%v, %v) = %v, want %v", c.in, c.grid, got, c.want)
		}
	}
}

func TestSnapResultIsAlwaysAGridMultiple(t *testing.T) {
	for _, grid := range []float64{10, 20} {
		for v := -100.0; v <= 1000; v += 0.7 {
			s := SnapToGrid(v, grid)
			if r := s / grid; r != float64(int64(r)) {
				t.Fatalf("SnapToGrid(%v, %v) = %v is not a multiple", v, grid, s)
			}
			if d := s - v; d > grid/2 || d < -grid/2 {
				t.Fatalf("SnapToGrid(%v, %v) = %v moved more than half a cell", v, grid, s)
			}
		}
	}
}

func TestDragOriginClampsAndSnaps(t *testing.T) {
	got := DragOrigin(Pt{35, 35}, Pt{20, 20}, 10)
	if got != (Pt{20, 20}) {
		t.Fatalf("DragOrigin snapped = %+v, want {20 20}", got)
	}
	got = DragOrigin(Pt{5, 3}, Pt{40, 40}, 0)
	if got.X != 0 || got.Y != 0 {
		t.Fatalf("DragOrigin should clamp negatives, got %+v", got)
	}
	got = DragOrigin(Pt{5, 3}, Pt{40, 40}, 10)
	if got.X < 0 || got.Y < 0 {
		t.Fatalf("DragOrigin should clamp after snapping, got %+v", got)
	}
}
