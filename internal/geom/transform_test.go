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

// TestTransformBoundsEnclosesRotated checks that bounds(apply(t, s))
// encloses transform(bounds(s), t) within tolerance, for a rotated
// rectangle.
func TestTransformBoundsEnclosesRotated(t *testing.T) {
	local := Rect{X: 0, Y: 0, W: 100, H: 50}
	tr := Transform2D{ScaleX: 1, ScaleY: 1, RotationDeg: 15}
	b := TransformBounds(local, tr)

	corners := []Pt{local.Min(), {local.X + local.W, local.Y}, {local.X, local.Y + local.H}, local.Max()}
	for _, c := range corners {
		p := tr.Apply(c)
		if !b.Contains(p) {
			t.Fatalf("rotated corner %+v -> %+v not contained in bounds %+v", c, p, b)
		}
	}
	if b.W <= local.W || b.H <= local.H {
		t.Fatalf("rotated bounds should be larger than the unrotated rect, got %+v", b)
	}
}

func TestAffineMulAndApply(t *testing.T) {
	t1 := Transform2D{TX: 10, TY: 5, ScaleX: 2, ScaleY: 3}
	p := t1.Apply(Pt{1, 1})
	if math.Abs(p.X-12) > 1e-9 || math.Abs(p.Y-8) > 1e-9 {
		t.Fatalf("unexpected transform result: %+v", p)
	}
}

func TestComposePreservesOrder(t *testing.T) {
	a := Transform2D{ScaleX: 1, ScaleY: 1, RotationDeg: 90}
	b := Transform2D{TX: 5, ScaleX: 1, ScaleY: 1}
	c := a.Compose(b)
	if c.RotationDeg != 90 {
		t.Fatalf("expected rotation preserved, got %v", c.RotationDeg)
	}
}
