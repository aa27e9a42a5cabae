/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

import (
	"math"

	"gcodekit5/internal/geom"
)

// SnapOptions controls which guide candidates are considered and the
// threshold, in mm, at which a drag snaps.
type SnapOptions struct {
	Threshold     float64
	SnapToEdges   bool
	SnapToCenters bool
}

// SnapAnchor is a static reference rect (another shape's bounds, or the
// stock boundary) a moving rect can align against. Weight biases which
// candidate wins on a near-tie; 1 is neutral.
type SnapAnchor struct {
	Rect   geom.Rect
	Weight float64
}

// GuideLine is a visual alignment guide produced by a successful snap.
type GuideLine struct {
	Vertical bool // true: a vertical line at X=Position; false: horizontal at Y=Position
	Center   bool // true: snapped to a center, false: an edge
	Position float64
	From, To geom.Pt
}

// ComputeSnap finds the best X and Y snap independently and returns the
// adjusted rect plus guide lines to render. moving.X/Y are adjusted only
// when a candidate falls within Threshold; otherwise the axis passes
// through unchanged.
func ComputeSnap(moving geom.Rect, anchors []SnapAnchor, opts SnapOptions) (geom.Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 2
	}
	var guides []GuideLine
	bestDX, bestDXDist := 0.0, math.MaxFloat64
	var bestDXGuide GuideLine
	bestDY, bestDYDist := 0.0, math.MaxFloat64
	var bestDYGuide GuideLine

	mL, mR := moving.X, moving.X+moving.W
	mT, mB := moving.Y, moving.Y+moving.H
	mCX, mCY := moving.X+moving.W/2, moving.Y+moving.H/2

	for _, a := range anchors {
		aL, aR := a.Rect.X, a.Rect.X+a.Rect.W
		aT, aB := a.Rect.Y, a.Rect.Y+a.Rect.H
		aCX, aCY := a.Rect.X+a.Rect.W/2, a.Rect.Y+a.Rect.H/2
		weight := a.Weight
		if weight <= 0 {
			weight = 1
		}

		if opts.SnapToEdges {
			considerAxis(&bestDX, &bestDXDist, &bestDXGuide, mL-aL, opts.Threshold, weight, vGuide(aL, moving, a.Rect, false))
			considerAxis(&bestDX, &bestDXDist, &bestDXGuide, mR-aR, opts.Threshold, weight, vGuide(aR, moving, a.Rect, false))
			considerAxis(&bestDX, &bestDXDist, &bestDXGuide, mL-aR, opts.Threshold, weight, vGuide(aR, moving, a.Rect, false))
			considerAxis(&bestDX, &bestDXDist, &bestDXGuide, mR-aL, opts.Threshold, weight, vGuide(aL, moving, a.Rect, false))

			considerAxis(&bestDY, &bestDYDist, &bestDYGuide, mT-aT, opts.Threshold, weight, hGuide(aT, moving, a.Rect, false))
			considerAxis(&bestDY, &bestDYDist, &bestDYGuide, mB-aB, opts.Threshold, weight, hGuide(aB, moving, a.Rect, false))
			considerAxis(&bestDY, &bestDYDist, &bestDYGuide, mT-aB, opts.Threshold, weight, hGuide(aB, moving, a.Rect, false))
			considerAxis(&bestDY, &bestDYDist, &bestDYGuide, mB-aT, opts.Threshold, weight, hGuide(aT, moving, a.Rect, false))
		}
		if opts.SnapToCenters {
			considerAxis(&bestDX, &bestDXDist, &bestDXGuide, mCX-aCX, opts.Threshold, weight, vGuide(aCX, moving, a.Rect, true))
			considerAxis(&bestDY, &bestDYDist, &bestDYGuide, mCY-aCY, opts.Threshold, weight, hGuide(aCY, moving, a.Rect, true))
		}
	}

	snapped := moving
	if bestDXDist <= opts.Threshold {
		snapped.X = moving.X - bestDX
		guides = append(guides, bestDXGuide)
	}
	if bestDYDist <= opts.Threshold {
		snapped.Y = moving.Y - bestDY
		guides = append(guides, bestDYGuide)
	}
	return snapped, guides
}

func considerAxis(best, bestDist *float64, bestGuide *GuideLine, delta, threshold, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	score := dist / weight
	if score < *bestDist {
		*bestDist = score
		*best = delta
		*bestGuide = g
	}
}

func vGuide(x float64, a, b geom.Rect, center bool) GuideLine {
	minY := math.Min(a.Y, b.Y)
	maxY := math.Max(a.Y+a.H, b.Y+b.H)
	return GuideLine{Vertical: true, Center: center, Position: x, From: geom.Pt{X: x, Y: minY}, To: geom.Pt{X: x, Y: maxY}}
}

func hGuide(y float64, a, b geom.Rect, center bool) GuideLine {
	minX := math.Min(a.X, b.X)
	maxX := math.Max(a.X+a.W, b.X+b.W)
	return GuideLine{Vertical: false, Center: center, Position: y, From: geom.Pt{X: minX, Y: y}, To: geom.Pt{X: maxX, Y: y}}
}
