/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// Transform2D is an affine matrix:
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
//
// Rotation is always stored in degrees (RotationDeg) and composed into the
// matrix form lazily via Matrix(); trig primitives see radians only at the
// point of use. A point is scaled, then rotated (both about the origin),
// then translated (M = T·R·S), matching how Apply and shape parametric forms
// expect it.
type Transform2D struct {
	TX, TY      float64
	RotationDeg float64
	ScaleX      float64
	ScaleY      float64
}

// IdentityTransform is the no-op transform.
var IdentityTransform = Transform2D{ScaleX: 1, ScaleY: 1}

// Matrix resolves the transform to its affine matrix form.
func (t Transform2D) Matrix() Affine {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	rad := t.RotationDeg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	// scale, then rotate, then translate
	return Affine{
		A: c * sx, B: s * sx,
		C: -s * sy, D: c * sy,
		E: t.TX, F: t.TY,
	}
}

// Apply transforms a single point.
func (t Transform2D) Apply(p Pt) Pt { return t.Matrix().Apply(p) }

// ApplyAll transforms a slice of points, returning a new slice.
func (t Transform2D) ApplyAll(pts []Pt) []Pt {
	m := t.Matrix()
	out := make([]Pt, len(pts))
	for i, p := range pts {
		out[i] = m.Apply(p)
	}
	return out
}

// Compose bakes o on top of t: the result applies t first, then o. Used by
// apply_transform to fold a new transform into a shape's existing placement
// rather than replacing it.
func (t Transform2D) Compose(o Transform2D) Transform2D {
	m := o.Matrix().Mul(t.Matrix()) // o ∘ t: t is applied to a point first
	return Transform2D{
		TX:          m.E,
		TY:          m.F,
		RotationDeg: normalizeDegrees(t.RotationDeg + o.RotationDeg),
		ScaleX:      nz(t.ScaleX) * nz(o.ScaleX),
		ScaleY:      nz(t.ScaleY) * nz(o.ScaleY),
	}
}

func nz(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// Affine is the resolved 6-parameter matrix form used for point application
// and composition. Stored column-major as [A B C D E F].
type Affine struct{ A, B, C, D, E, F float64 }

var IdentityAffine = Affine{A: 1, D: 1}

func (m Affine) Mul(n Affine) Affine {
	return Affine{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// TransformBounds computes bounds(apply(t, s)) by transforming the four
// corners of a local rect and taking their union. This always encloses (⊇)
// transform(bounds(s), t) within Tolerance, as required by the rotate/bounds
// invariant, because bounds-of-transformed-corners is exact for rotation
// while transform-of-bounds is only a valid lower bound for non-axis-aligned
// rotations.
func TransformBounds(local Rect, t Transform2D) Rect {
	m := t.Matrix()
	corners := []Pt{
		{local.X, local.Y},
		{local.X + local.W, local.Y},
		{local.X, local.Y + local.H},
		{local.X + local.W, local.Y + local.H},
	}
	return BoundsOfPoints(m.ApplyToSlice(corners))
}

// ApplyToSlice transforms each point in pts.
func (m Affine) ApplyToSlice(pts []Pt) []Pt {
	out := make([]Pt, len(pts))
	for i, p := range pts {
		out[i] = m.Apply(p)
	}
	return out
}

// BoundsOfPoints returns the axis-aligned bounding rect of a point set.
// Returns the zero Rect for an empty set.
func BoundsOfPoints(pts []Pt) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
