/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"math"

	"gcodekit5/internal/geom"
	"gcodekit5/internal/textpath"
)

const defaultTessellateTolerance = 0.05

// LocalPath returns the shape's outline in its own local coordinate space,
// before Transform is applied. Group and Image return an empty path; callers
// that need a group's extent should use Bounds with a resolver instead.
func (s Shape) LocalPath() geom.Path {
	var p geom.Path
	switch s.Kind {
	case KindRectangle:
		w, h, r := s.Rectangle.Width, s.Rectangle.Height, s.Rectangle.CornerRadius
		if r <= 0 {
			p.MoveTo(0, 0)
			p.LineTo(w, 0)
			p.LineTo(w, h)
			p.LineTo(0, h)
			p.Close()
			return p
		}
		if r > w/2 {
			r = w / 2
		}
		if r > h/2 {
			r = h / 2
		}
		p.MoveTo(r, 0)
		p.LineTo(w-r, 0)
		p.ArcTo(geom.Pt{X: w - r, Y: r}, r, 270, 360, true)
		p.LineTo(w, h-r)
		p.ArcTo(geom.Pt{X: w - r, Y: h - r}, r, 0, 90, true)
		p.LineTo(r, h)
		p.ArcTo(geom.Pt{X: r, Y: h - r}, r, 90, 180, true)
		p.LineTo(0, r)
		p.ArcTo(geom.Pt{X: r, Y: r}, r, 180, 270, true)
		p.Close()
		return p
	case KindCircle:
		c := geom.Pt{X: s.Circle.Radius, Y: s.Circle.Radius}
		p.MoveTo(s.Circle.Radius*2, s.Circle.Radius)
		p.ArcTo(c, s.Circle.Radius, 0, 360, true)
		p.Close()
		return p
	case KindEllipse:
		rx, ry := s.Ellipse.RadiusX, s.Ellipse.RadiusY
		const steps = 64
		for i := 0; i <= steps; i++ {
			a := 2 * math.Pi * float64(i) / steps
			x, y := rx+rx*math.Cos(a), ry+ry*math.Sin(a)
			if i == 0 {
				p.MoveTo(x, y)
			} else {
				p.LineTo(x, y)
			}
		}
		p.Close()
		return p
	case KindLine:
		p.MoveTo(s.Line.From.X, s.Line.From.Y)
		p.LineTo(s.Line.To.X, s.Line.To.Y)
		return p
	case KindPath:
		p = s.Path.Local
		return p
	case KindText:
		glyphs, _, err := textpath.TextPath(s.Text.Content, s.Text.SizeMM)
		if err != nil {
			return p
		}
		return glyphs
	default:
		return p
	}
}

// Bounds returns the shape's axis-aligned bounding rect in parent-group
// (pre-Transform) space, then maps it through Transform.
func (s Shape) Bounds() geom.Rect {
	var local geom.Rect
	switch s.Kind {
	case KindGroup, KindImage:
		if s.Kind == KindImage {
			local = geom.Rect{X: 0, Y: 0, W: s.Image.Width, H: s.Image.Height}
		}
	case KindText:
		b, err := textpath.Bounds(s.Text.Content, s.Text.SizeMM, defaultTessellateTolerance)
		if err != nil {
			// Embedded-typeface parse failure is the only realistic cause and
			// never happens in practice; fall back to a thin box rather than
			// panicking on a display computation.
			local = geom.Rect{X: 0, Y: 0, W: s.Text.SizeMM, H: s.Text.SizeMM}
		} else {
			local = b
		}
	default:
		p := s.LocalPath()
		local = p.Bounds(defaultTessellateTolerance)
	}
	return geom.TransformBounds(local, s.Transform)
}

// HitTest reports whether point (in parent space) falls on or within
// tolerance mm of the shape's outline, or inside its fill for closed shapes.
func (s Shape) HitTest(point geom.Pt, tolerance float64) bool {
	b := s.Bounds()
	expanded := geom.Rect{X: b.X - tolerance, Y: b.Y - tolerance, W: b.W + 2*tolerance, H: b.H + 2*tolerance}
	if !expanded.Contains(point) {
		return false
	}
	switch s.Kind {
	case KindGroup:
		return true // callers resolve children individually
	case KindLine:
		local := s.inverseApply(point)
		return distToSegment(local, s.Line.From, s.Line.To) <= tolerance
	default:
		local := s.inverseApply(point)
		path := s.LocalPath()
		poly := geom.Polygon(geom.Tessellate(&path, defaultTessellateTolerance))
		if pointInRing(local, poly) {
			return true
		}
		return distToRing(local, poly) <= tolerance
	}
}

// inverseApply maps a parent-space point into this shape's local space.
func (s Shape) inverseApply(p geom.Pt) geom.Pt {
	t := s.Transform
	dx, dy := p.X-t.TX, p.Y-t.TY
	rad := -t.RotationDeg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	rx := dx*cos - dy*sin
	ry := dx*sin + dy*cos
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return geom.Pt{X: rx / sx, Y: ry / sy}
}

func distToSegment(p, a, b geom.Pt) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	len2 := abx*abx + aby*aby
	if len2 == 0 {
		return a.Dist(p)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / len2
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	proj := geom.Pt{X: a.X + t*abx, Y: a.Y + t*aby}
	return proj.Dist(p)
}

func distToRing(p geom.Pt, ring geom.Polygon) float64 {
	if len(ring) == 0 {
		return math.MaxFloat64
	}
	best := math.MaxFloat64
	for i := range ring {
		j := (i + 1) % len(ring)
		d := distToSegment(p, ring[i], ring[j])
		if d < best {
			best = d
		}
	}
	return best
}

func pointInRing(p geom.Pt, ring geom.Polygon) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			xint := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < xint {
				inside = !inside
			}
		}
	}
	return inside
}

// ApplyTransform returns a copy of s with t composed after its existing
// Transform (t is applied in parent space, on top of the current placement).
func (s Shape) ApplyTransform(t geom.Transform2D) Shape {
	out := s
	out.Transform = s.Transform.Compose(t)
	return out
}

// AsCSG resolves the shape to a closed region suitable for boolean
// operations, in parent (post-Transform) space. Open shapes (Line) and
// non-geometric kinds (Text, Group, Image) return ok=false.
func (s Shape) AsCSG() (geom.Region, bool) {
	switch s.Kind {
	case KindLine, KindGroup, KindImage, KindText:
		return geom.Region{}, false
	}
	path := s.LocalPath()
	rings := geom.TessellateRings(&path, defaultTessellateTolerance)
	if len(rings) == 0 || len(rings[0]) < 3 {
		return geom.Region{}, false
	}
	m := s.Transform.Matrix()
	transformed := make([]geom.Polygon, len(rings))
	for i, r := range rings {
		pts := make(geom.Polygon, len(r))
		for j, p := range r {
			pts[j] = m.Apply(p)
		}
		transformed[i] = pts
	}
	region := geom.Region{Outer: transformed[0]}
	if len(transformed) > 1 {
		region.Holes = transformed[1:]
	}
	return region, true
}

// Properties lists the shape's editable numeric fields for a property panel.
func (s Shape) Properties() []Property {
	switch s.Kind {
	case KindRectangle:
		return []Property{
			{Name: "width", Value: s.Rectangle.Width, Min: 0},
			{Name: "height", Value: s.Rectangle.Height, Min: 0},
			{Name: "corner_radius", Value: s.Rectangle.CornerRadius, Min: 0},
			{Name: "rotation", Value: s.Transform.RotationDeg, IsAngle: true},
		}
	case KindCircle:
		return []Property{
			{Name: "radius", Value: s.Circle.Radius, Min: 0},
		}
	case KindEllipse:
		return []Property{
			{Name: "radius_x", Value: s.Ellipse.RadiusX, Min: 0},
			{Name: "radius_y", Value: s.Ellipse.RadiusY, Min: 0},
			{Name: "rotation", Value: s.Transform.RotationDeg, IsAngle: true},
		}
	case KindLine:
		return []Property{
			{Name: "from_x", Value: s.Line.From.X},
			{Name: "from_y", Value: s.Line.From.Y},
			{Name: "to_x", Value: s.Line.To.X},
			{Name: "to_y", Value: s.Line.To.Y},
		}
	case KindText:
		return []Property{
			{Name: "size_mm", Value: s.Text.SizeMM, Min: 0.1},
			{Name: "rotation", Value: s.Transform.RotationDeg, IsAngle: true},
		}
	default:
		return []Property{
			{Name: "rotation", Value: s.Transform.RotationDeg, IsAngle: true},
		}
	}
}
