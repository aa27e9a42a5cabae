/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a design's stock, shapes, and CAM operations to
// printable/shareable setup sheets (SVG, PDF) and a raster preview (PNG).
package export

import (
	"fmt"
	"math"

	"gcodekit5/internal/domain"
)

// point is a flattened 2D coordinate in document millimeters.
type point struct{ X, Y float64 }

// rgba is a renderer-neutral color; callers convert to the target format's
// own representation.
type rgba struct{ R, G, B, A uint8 }

func colorFromArray(c [4]uint8) rgba { return rgba{R: c[0], G: c[1], B: c[2], A: c[3]} }

// applyTransform rotates+scales a local-space point about the origin, then
// translates it, matching domain.Transform's TX/TY/RotationDeg/ScaleX/ScaleY.
func applyTransform(t domain.Transform, p point) point {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	x := p.X * sx
	y := p.Y * sy
	rad := t.RotationDeg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return point{
		X: x*cos-y*sin + t.TX,
		Y: x*sin+y*cos + t.TY,
	}
}

// shapeOutline flattens a shape's local geometry into one or more closed or
// open polylines, with the shape's own transform already applied, in
// document mm coordinates. Group and image shapes contribute no outline of
// their own — groups are rendered through their member shapes, and a raster
// image has no vector boundary worth drawing on a setup sheet.
func shapeOutline(s domain.Shape) [][]point {
	local := shapeLocalOutline(s)
	if len(local) == 0 {
		return nil
	}
	out := make([][]point, len(local))
	for i, ring := range local {
		pts := make([]point, len(ring))
		for j, p := range ring {
			pts[j] = applyTransform(s.Transform, p)
		}
		out[i] = pts
	}
	return out
}

func shapeLocalOutline(s domain.Shape) [][]point {
	switch {
	case s.Rectangle != nil:
		w, h := s.Rectangle.Width, s.Rectangle.Height
		return [][]point{{{0, 0}, {w, 0}, {w, h}, {0, h}}}
	case s.Circle != nil:
		return [][]point{circlePoints(0, 0, s.Circle.Radius, s.Circle.Radius, 48)}
	case s.Ellipse != nil:
		return [][]point{circlePoints(0, 0, s.Ellipse.RadiusX, s.Ellipse.RadiusY, 48)}
	case s.Line != nil:
		l := s.Line
		return [][]point{{{l.FromX, l.FromY}, {l.ToX, l.ToY}}}
	case s.Path != nil:
		return pathPoints(s.Path)
	case s.Text != nil:
		w := 0.6 * s.Text.SizeMM * float64(len([]rune(s.Text.Content)))
		h := s.Text.SizeMM
		if w <= 0 {
			w = s.Text.SizeMM
		}
		return [][]point{{{0, 0}, {w, 0}, {w, h}, {0, h}}}
	default:
		return nil
	}
}

func circlePoints(cx, cy, rx, ry float64, n int) []point {
	pts := make([]point, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = point{cx + rx*math.Cos(a), cy + ry*math.Sin(a)}
	}
	return pts
}

// pathPoints walks the op-coded PathShape (M/L/Q/C/Z over pairs of
// coordinates) into one polyline per subpath. Curve control points are
// skipped in favor of their endpoints — adequate for a setup-sheet overview,
// not for toolpath generation (internal/cam owns that).
func pathPoints(p *domain.PathShape) [][]point {
	var rings [][]point
	var cur []point
	ci := 0
	next := func() point {
		x, y := p.Coords[ci], p.Coords[ci+1]
		ci += 2
		return point{x, y}
	}
	for _, op := range p.Ops {
		switch op {
		case "M":
			if len(cur) > 0 {
				rings = append(rings, cur)
			}
			cur = []point{next()}
		case "L":
			cur = append(cur, next())
		case "Q":
			next() // control point, discarded
			cur = append(cur, next())
		case "C":
			next()
			next()
			cur = append(cur, next())
		case "Z":
			if len(cur) > 0 {
				cur = append(cur, cur[0])
			}
		}
	}
	if len(cur) > 0 {
		rings = append(rings, cur)
	}
	return rings
}

// shapeByID finds a shape by its id within a document.
func shapeByID(d domain.Document, id uint64) (domain.Shape, bool) {
	for _, s := range d.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Shape{}, false
}

// toolByID finds a tool preset by its id within a document.
func toolByID(d domain.Document, id string) (domain.Tool, bool) {
	for _, t := range d.Tools {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Tool{}, false
}

// opCentroid returns the mean vertex of all shapes an operation touches, used
// to place its callout label on the setup sheet.
func opCentroid(d domain.Document, op domain.CAMOp) (point, bool) {
	var sum point
	var n int
	for _, sid := range op.ShapeIDs {
		s, ok := shapeByID(d, sid)
		if !ok {
			continue
		}
		for _, ring := range shapeOutline(s) {
			for _, p := range ring {
				sum.X += p.X
				sum.Y += p.Y
				n++
			}
		}
	}
	if n == 0 {
		return point{}, false
	}
	return point{sum.X / float64(n), sum.Y / float64(n)}, true
}

// opLabel renders a short callout string for an operation, e.g. "1. pocket (t1)".
func opLabel(seq int, op domain.CAMOp) string {
	tool := op.ToolID
	if tool == "" {
		tool = "—"
	}
	return fmt.Sprintf("%d. %s (%s)", seq, op.Kind, tool)
}

// toolTableRow renders a single tool-library line for the table printed on
// every setup sheet.
func toolTableRow(t domain.Tool) string {
	kind := "mill"
	if t.IsLaser {
		kind = "laser"
	}
	return fmt.Sprintf("%-6s %-24s %6.2fmm  %-5s feed %6.0f  plunge %6.0f  %6dRPM",
		t.ID, t.Name, t.DiameterMM, kind, t.FeedMMPerMin, t.PlungeMMPerMin, t.SpindleRPM)
}
