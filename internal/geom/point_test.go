/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"
)

func TestRotatePointRoundTrip(t *testing.T) {
	center := Pt{10, 5}
	p := Pt{23, -4}
	for _, deg := range []float64{0, 15, 90, 180, -45, 360, 720, -720, 359.999} {
		r := RotatePoint(p, center, deg)
		back := RotatePoint(r, center, -deg)
		if math.Abs(back.X-p.X) > 1e-10 || math.Abs(back.Y-p.Y) > 1e-10 {
			t.Fatalf("deg=%v: round trip mismatch got %+v want %+v", deg, back, p)
		}
	}
}

func TestRotatePointIdempotentUnder360(t *testing.T) {
	center := Pt{0, 0}
	p := Pt{3, 4}
	a := RotatePoint(p, center, 37)
	b := RotatePoint(p, center, 37+360)
	if math.Abs(a.X-b.X) > 1e-9 || math.Abs(a.Y-b.Y) > 1e-9 {
		t.Fatalf("expected 360deg-periodic result, got %+v vs %+v", a, b)
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}
	b := Rect{X: 5, Y: 5, W: 10, H: 10}
	u := a.Union(b)
	if u.X != 0 || u.Y != 0 || u.W != 15 || u.H != 15 {
		t.Fatalf("unexpected union: %+v", u)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 100, H: 50}
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points contained")
	}
	if r.Contains(Pt{200, 200}) {
		t.Fatalf("far point should not be contained")
	}
}
