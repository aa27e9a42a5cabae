/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cam

import (
	"math"

	"gcodekit5/internal/camerr"
	"gcodekit5/internal/geom"
)

// PocketStrategy selects how a pocket's interior is filled once the
// boundary has been established.
type PocketStrategy int

const (
	OffsetSpiral PocketStrategy = iota
	Zigzag
	Raster
)

// PocketParams adds fill strategy and raster-specific settings.
type PocketParams struct {
	Params
	Strategy      PocketStrategy
	RasterAngle   float64 // degrees, Raster only
	Bidirectional bool    // Raster/Zigzag: serpentine vs one-way
}

// Pocket clears the interior of ring (its boundary, offset inward by
// tool_radius to keep the wall intact) using Strategy, one pass per
// StepDownMM.
func Pocket(ring geom.Polygon, p PocketParams) (Program, error) {
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	if len(ring) < 3 {
		return Program{}, camerr.New(camerr.KindValidation, "Pocket", camerr.ErrEmptySelection)
	}

	w := newWriter(axesOrDefault(p.Axes))
	w.comment("pocket")
	depths := p.passDepths()
	if len(depths) == 0 {
		depths = []float64{p.CutDepthMM}
	}

	boundary := ring
	if !boundary.IsCCW() {
		boundary = boundary.Reversed()
	}
	inner := geom.Offset(boundary, -p.Tool.Radius())
	if len(inner) == 0 {
		return Program{}, camerr.New(camerr.KindGeometry, "Pocket", camerr.ErrInvalidGeometry)
	}
	wallRing := inner[0]

	stepover := p.Tool.DiameterMM * p.StepOverPct / 100
	if stepover <= 0 {
		stepover = p.Tool.DiameterMM * 0.4
	}

	first := true
	for _, z := range depths {
		var fill []geom.Polygon
		switch p.Strategy {
		case OffsetSpiral:
			fill = spiralRings(wallRing, stepover)
		case Zigzag:
			fill = nil // zigzag path is a single polyline, handled below
		case Raster:
			fill = nil
		}

		safeZ := p.SafeZMM
		if first {
			w.rapid(wallRing[0].X, wallRing[0].Y, &safeZ)
			first = false
		}
		w.feedZ(z, p.Tool.PlungeMMPerMin)

		switch p.Strategy {
		case OffsetSpiral:
			for _, r := range fill {
				for i := 0; i <= len(r); i++ {
					pt := r[i%len(r)]
					w.feed(pt.X, pt.Y, nil, p.Tool.FeedMMPerMin)
				}
			}
		case Zigzag:
			for _, pt := range zigzagPath(wallRing, stepover, 0, p.Bidirectional) {
				w.feed(pt.X, pt.Y, nil, p.Tool.FeedMMPerMin)
			}
		case Raster:
			for _, pt := range zigzagPath(wallRing, stepover, p.RasterAngle, p.Bidirectional) {
				w.feed(pt.X, pt.Y, nil, p.Tool.FeedMMPerMin)
			}
		}
	}
	w.rapidZ(p.SafeZMM)

	return w.program(), nil
}

// maxSpiralPasses bounds spiralRings' inward stepping so a pathological
// ring (one that keeps resplitting instead of shrinking to nothing) can't
// loop forever.
const maxSpiralPasses = 10000

// spiralRings produces successive inward offsets of ring at spacing until
// every branch collapses, i.e. the OffsetSpiral strategy. A concave ring
// can split into more than one sub-loop partway through (Offset repairs a
// self-intersecting miter offset by dividing it into its simple pieces), so
// every surviving ring from one pass is offset again on the next, not just
// the first.
func spiralRings(ring geom.Polygon, spacing float64) []geom.Polygon {
	var rings []geom.Polygon
	frontier := []geom.Polygon{ring}
	for pass := 0; len(frontier) > 0 && pass < maxSpiralPasses; pass++ {
		rings = append(rings, frontier...)
		var next []geom.Polygon
		for _, r := range frontier {
			for _, o := range geom.Offset(r, -spacing) {
				if len(o) < 3 {
					continue
				}
				next = append(next, o)
			}
		}
		frontier = next
	}
	return rings
}

// zigzagPath sweeps parallel lines across ring's bounds at the given angle
// (degrees) spaced by stepover, clipped to the ring interior, connecting
// each pass serpentine when bidirectional or returning to the start edge
// otherwise.
func zigzagPath(ring geom.Polygon, stepover, angleDeg float64, bidirectional bool) []geom.Pt {
	b := ring.Bounds()
	if b.IsEmpty() || stepover <= 0 {
		return nil
	}
	rad := angleDeg * math.Pi / 180
	sin, cos := math.Sincos(rad)

	diag := b.W + b.H
	var lines []geom.Pt
	reverse := false
	for off := -diag; off <= diag; off += stepover {
		// line direction (cos,sin), offset perpendicular by off along (-sin,cos)
		cx := b.Center().X + off*(-sin)
		cy := b.Center().Y + off*cos
		p0 := geom.Pt{X: cx - diag*cos, Y: cy - diag*sin}
		p1 := geom.Pt{X: cx + diag*cos, Y: cy + diag*sin}
		seg := clipSegmentToPolygon(p0, p1, ring)
		if seg == nil {
			continue
		}
		if bidirectional && reverse {
			seg[0], seg[1] = seg[1], seg[0]
		}
		lines = append(lines, seg[0], seg[1])
		reverse = !reverse
	}
	return lines
}

// clipSegmentToPolygon intersects an (effectively infinite, but pre-bounded
// by the caller's diag extension) segment with ring's edges and returns the
// first and last crossings along p0->p1 (for a concave ring the span
// between them can pass outside the ring), or nil if fewer than two edges
// are crossed.
func clipSegmentToPolygon(p0, p1 geom.Pt, ring geom.Polygon) []geom.Pt {
	var hits []geom.Pt
	n := len(ring)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		if pt, ok := segmentIntersection(p0, p1, a, b); ok {
			hits = append(hits, pt)
		}
	}
	if len(hits) < 2 {
		return nil
	}
	// pick the two extreme hits along p0->p1
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	var minT, maxT = 1e18, -1e18
	var minP, maxP geom.Pt
	for _, h := range hits {
		t := (h.X-p0.X)*dx + (h.Y-p0.Y)*dy
		if t < minT {
			minT = t
			minP = h
		}
		if t > maxT {
			maxT = t
			maxP = h
		}
	}
	return []geom.Pt{minP, maxP}
}

func segmentIntersection(a0, a1, b0, b1 geom.Pt) (geom.Pt, bool) {
	d1x, d1y := a1.X-a0.X, a1.Y-a0.Y
	d2x, d2y := b1.X-b0.X, b1.Y-b0.Y
	denom := d1x*d2y - d1y*d2x
	if denom == 0 {
		return geom.Pt{}, false
	}
	t := ((b0.X-a0.X)*d2y - (b0.Y-a0.Y)*d2x) / denom
	u := ((b0.X-a0.X)*d1y - (b0.Y-a0.Y)*d1x) / denom
	if u < 0 || u > 1 {
		return geom.Pt{}, false
	}
	return geom.Pt{X: a0.X + t*d1x, Y: a0.Y + t*d1y}, true
}
