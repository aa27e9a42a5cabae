/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom is the pure 2D math kernel: points, transforms, bounds,
// boolean ops, offsetting, and tessellation. No I/O, no mutable state.
// All coordinates are millimeters stored as float64.
package geom

import "math"

// Tolerance is the absolute comparison tolerance, in mm, used throughout the
// kernel for equality and degeneracy checks.
const Tolerance = 1e-7

// Pt is a point in design space (Cartesian, y-up). The y-flip for display is
// applied only at the UI boundary, never here.
type Pt struct{ X, Y float64 }

func (p Pt) Add(o Pt) Pt { return Pt{p.X + o.X, p.Y + o.Y} }
func (p Pt) Sub(o Pt) Pt { return Pt{p.X - o.X, p.Y - o.Y} }
func (p Pt) Scale(s float64) Pt { return Pt{p.X * s, p.Y * s} }

func (p Pt) Dist(o Pt) float64 {
	dx, dy := p.X-o.X, p.Y-o.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// AlmostEqual reports whether two points are within Tolerance of mm.
func (p Pt) AlmostEqual(o Pt) bool {
	return math.Abs(p.X-o.X) <= Tolerance && math.Abs(p.Y-o.Y) <= Tolerance
}

// Rect is an axis-aligned bounding rectangle in mm.
type Rect struct {
	X, Y, W, H float64
}

// NewRect builds a normalized rect from two corner points.
func NewRect(a, b Pt) Rect {
	x0, x1 := math.Min(a.X, b.X), math.Max(a.X, b.X)
	y0, y1 := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func (r Rect) Min() Pt { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt { return Pt{r.X + r.W, r.Y + r.H} }

func (r Rect) IsEmpty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X-Tolerance && p.Y >= r.Y-Tolerance &&
		p.X <= r.X+r.W+Tolerance && p.Y <= r.Y+r.H+Tolerance
}

// Intersects reports whether r and o overlap (touching edges count).
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.X+o.W && o.X <= r.X+r.W && r.Y <= o.Y+o.H && o.Y <= r.Y+r.H
}

// Union returns the minimal rect enclosing both r and o. An empty r or o is
// ignored so Union can be folded over a sequence starting from the zero Rect.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Inset grows (negative dx/dy) or shrinks (positive) the rect on all sides.
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Center returns the rect's midpoint.
func (r Rect) Center() Pt { return Pt{r.X + r.W/2, r.Y + r.H/2} }

// UnionRects folds Union over a slice of rects, skipping empties.
func UnionRects(rs []Rect) Rect {
	var out Rect
	for _, r := range rs {
		out = out.Union(r)
	}
	return out
}

// RotatePoint rotates p about center by degrees (degrees in, radians only at
// the trig call site). Idempotent under 360 degree multiples, correct for
// negative angles, accurate to within Tolerance of input scale.
func RotatePoint(p, center Pt, degrees float64) Pt {
	rad := degrees * math.Pi / 180
	s, c := math.Sin(rad), math.Cos(rad)
	dx, dy := p.X-center.X, p.Y-center.Y
	return Pt{
		X: center.X + dx*c - dy*s,
		Y: center.Y + dx*s + dy*c,
	}
}
