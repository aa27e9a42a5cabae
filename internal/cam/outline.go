/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cam

import (
	"gcodekit5/internal/camerr"
	"gcodekit5/internal/geom"
)

// OutlineSide picks which side of the drawn line the tool cuts: Outside
// (tool center offset outward by tool_radius), Inside (offset inward), or
// OnLine (no offset — the drawn line is the tool centerline).
type OutlineSide int

const (
	OutlineOnLine OutlineSide = iota
	OutlineOutside
	OutlineInside
)

// OutlineParams adds the side selection to the common Params.
type OutlineParams struct {
	Params
	Side OutlineSide
}

// Outline offsets each input ring by +-tool_radius per Side, emits a closed
// path per ring with tabs cut as bridge segments, descending one pass per
// StepDownMM with a ramped entry of RampLengthMM at every pass transition
// when Ramping is set.
func Outline(rings []geom.Polygon, p OutlineParams) (Program, error) {
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	if len(rings) == 0 {
		return Program{}, camerr.New(camerr.KindValidation, "Outline", camerr.ErrEmptySelection)
	}

	w := newWriter(axesOrDefault(p.Axes))
	w.comment("outline")
	depths := p.passDepths()
	if len(depths) == 0 {
		depths = []float64{p.CutDepthMM}
	}

	for _, ring := range rings {
		offset := offsetDistance(p.Side, p.Tool.Radius())
		path := ring
		if offset != 0 {
			offs := geom.Offset(ring, offset)
			if len(offs) == 0 {
				return Program{}, camerr.New(camerr.KindGeometry, "Outline", camerr.ErrInvalidGeometry)
			}
			path = offs[0]
		}
		if len(path) < 3 {
			return Program{}, camerr.New(camerr.KindGeometry, "Outline", camerr.ErrInvalidGeometry)
		}

		segs := tabSegments(path, p.Tabs)
		safeZ := p.SafeZMM

		for passIdx, z := range depths {
			// Every pass starts from safe Z over the ring's start point, even
			// the first, keeping the per-pass move sequence uniform instead
			// of special-casing pass 0.
			w.rapid(path[0].X, path[0].Y, &safeZ)
			w.feedZ(z, p.Tool.PlungeMMPerMin)
			emitRingPass(w, path, segs, z, p.Tabs.HeightMM, p.Tool.FeedMMPerMin, p.Ramping, p.RampLengthMM)
			if passIdx < len(depths)-1 {
				w.rapidZ(safeZ)
			}
		}
		w.rapidZ(safeZ)
	}

	return w.program(), nil
}

func offsetDistance(side OutlineSide, radius float64) float64 {
	switch side {
	case OutlineOutside:
		return radius
	case OutlineInside:
		return -radius
	default:
		return 0
	}
}

// tabSegment marks an index range [from,to) of a closed ring's point list
// as a held bridge: cut floor rises to HeightMM instead of the pass depth.
type tabSegment struct{ from, to int }

// tabSegments distributes t.Count evenly spaced bridge segments (each
// spanning roughly t.WidthMM of ring perimeter) around the ring. A zero
// count yields no segments, i.e. a fully-cut loop.
func tabSegments(ring geom.Polygon, t Tabs) []tabSegment {
	if t.Count <= 0 || len(ring) < 2 {
		return nil
	}
	perim := ring.Length()
	if perim <= 0 {
		return nil
	}
	step := perim / float64(t.Count)
	var segs []tabSegment
	for i := 0; i < t.Count; i++ {
		center := step * float64(i)
		from := indexAtDistance(ring, center-t.WidthMM/2, perim)
		to := indexAtDistance(ring, center+t.WidthMM/2, perim)
		segs = append(segs, tabSegment{from: from, to: to})
	}
	return segs
}

func indexAtDistance(ring geom.Polygon, dist, perim float64) int {
	for dist < 0 {
		dist += perim
	}
	for dist >= perim {
		dist -= perim
	}
	acc := 0.0
	n := len(ring)
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		seg := a.Dist(b)
		if acc+seg >= dist {
			return i
		}
		acc += seg
	}
	return n - 1
}

func inTab(i int, segs []tabSegment, n int) bool {
	for _, s := range segs {
		if s.from <= s.to {
			if i >= s.from && i < s.to {
				return true
			}
		} else { // wraps past index 0
			if i >= s.from || i < s.to {
				return true
			}
		}
	}
	return false
}

// emitRingPass feeds the full ring at depth z, rising to tabHeight (above
// the cut floor, i.e. a less-negative Z) across any segment marked as a tab.
func emitRingPass(w *writer, ring geom.Polygon, segs []tabSegment, z, tabHeight, feed float64, ramping bool, rampLen float64) {
	n := len(ring)
	traveled := 0.0
	for i := 0; i <= n; i++ {
		p := ring[i%n]
		targetZ := z
		if inTab(i%n, segs, n) {
			targetZ = z + tabHeight
		}
		if ramping && i > 0 {
			prev := ring[(i-1)%n]
			traveled += prev.Dist(p)
			if traveled < rampLen && rampLen > 0 {
				frac := traveled / rampLen
				targetZ = z*frac + 0*(1-frac)
			}
		}
		w.feed(p.X, p.Y, &targetZ, feed)
	}
}
