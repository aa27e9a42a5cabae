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

// BoxParams sizes a finger-jointed tabbed box.
type BoxParams struct {
	Params
	WidthMM, DepthMM, HeightMM float64
	MaterialThicknessMM        float64
	KerfMM                     float64
}

// BoxPanel is one of the box's six flat panels with its finger-joint
// outline ready to cut.
type BoxPanel struct {
	Name  string
	Outer geom.Polygon
}

// TabbedBox lays out six finger-joint panels (top, bottom, front, back,
// left, right) for a W x D x H box in MaterialThicknessMM stock, with
// finger counts rounded to the nearest odd integer (so opposite panels'
// fingers interleave symmetrically) and each panel outline offset outward
// by half of KerfMM.
func TabbedBox(p BoxParams) ([]BoxPanel, error) {
	if p.WidthMM <= 0 || p.DepthMM <= 0 || p.HeightMM <= 0 || p.MaterialThicknessMM <= 0 {
		return nil, camerr.New(camerr.KindValidation, "TabbedBox", camerr.ErrInvalidGeometry)
	}

	panels := []BoxPanel{
		{Name: "top", Outer: fingerRect(p.WidthMM, p.DepthMM, p)},
		{Name: "bottom", Outer: fingerRect(p.WidthMM, p.DepthMM, p)},
		{Name: "front", Outer: fingerRect(p.WidthMM, p.HeightMM, p)},
		{Name: "back", Outer: fingerRect(p.WidthMM, p.HeightMM, p)},
		{Name: "left", Outer: fingerRect(p.DepthMM, p.HeightMM, p)},
		{Name: "right", Outer: fingerRect(p.DepthMM, p.HeightMM, p)},
	}
	return panels, nil
}

// fingerCount picks the number of fingers along an edge of the given
// length, targeting roughly one finger per material thickness (at least 3)
// and rounded to the nearest odd integer so both ends of the edge sit on
// the same level.
func fingerCount(length, thickness float64) int {
	n := int(length / thickness)
	if n < 3 {
		n = 3
	}
	if n%2 == 0 {
		n++
	}
	return n
}

// fingerRect builds a rectangular panel outline with alternating
// finger/notch segments on each edge, compensated by KerfMM (every point,
// on tabs and notches alike, moved outward by half the kerf).
func fingerRect(w, h float64, p BoxParams) geom.Polygon {
	nFingersW := fingerCount(w, p.MaterialThicknessMM)
	nFingersH := fingerCount(h, p.MaterialThicknessMM)

	var ring geom.Polygon
	ring = append(ring, edgeFingers(geom.Pt{X: 0, Y: 0}, geom.Pt{X: w, Y: 0}, nFingersW, p.MaterialThicknessMM, p.KerfMM)...)
	ring = append(ring, edgeFingers(geom.Pt{X: w, Y: 0}, geom.Pt{X: w, Y: h}, nFingersH, p.MaterialThicknessMM, p.KerfMM)...)
	ring = append(ring, edgeFingers(geom.Pt{X: w, Y: h}, geom.Pt{X: 0, Y: h}, nFingersW, p.MaterialThicknessMM, p.KerfMM)...)
	ring = append(ring, edgeFingers(geom.Pt{X: 0, Y: h}, geom.Pt{X: 0, Y: 0}, nFingersH, p.MaterialThicknessMM, p.KerfMM)...)
	return ring
}

// edgeFingers returns the polyline points along one edge from a to b,
// stepping out by depth on every other finger (a square-wave finger joint),
// with the whole edge offset outward by kerf/2.
func edgeFingers(a, b geom.Pt, count int, depth, kerf float64) geom.Polygon {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := a.Dist(b)
	if length == 0 || count <= 0 {
		return geom.Polygon{a}
	}
	nx, ny := dy/length, -dx/length // outward normal of the CCW panel ring
	step := length / float64(count)
	comp := kerf / 2

	var pts geom.Polygon
	for i := 0; i < count; i++ {
		out := 0.0
		if i%2 == 1 {
			out = depth
		}
		for _, t := range []float64{step * float64(i), step * float64(i+1)} {
			base := geom.Pt{X: a.X + dx/length*t, Y: a.Y + dy/length*t}
			pts = append(pts, geom.Pt{X: base.X + nx*(out+comp), Y: base.Y + ny*(out+comp)})
		}
	}
	return pts
}
