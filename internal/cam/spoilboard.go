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

// SurfacingParams sizes a raster-fill surfacing pass over a rectangle.
type SurfacingParams struct {
	Params
	WidthMM, HeightMM float64
}

// SurfaceSpoilboard raster-fills a WidthMM x HeightMM rectangle at
// StepOverPct of tool diameter, serpentine, at a single CutDepthMM pass
// (surfacing removes a skim, not a stepped pocket).
func SurfaceSpoilboard(p SurfacingParams) (Program, error) {
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	if p.WidthMM <= 0 || p.HeightMM <= 0 {
		return Program{}, camerr.New(camerr.KindValidation, "SurfaceSpoilboard", camerr.ErrInvalidGeometry)
	}

	stepover := p.Tool.DiameterMM * p.StepOverPct / 100
	if stepover <= 0 {
		stepover = p.Tool.DiameterMM * 0.8
	}

	w := newWriter(axesOrDefault(p.Axes))
	w.comment("spoilboard surfacing")
	safeZ := p.SafeZMM
	first := true
	reverse := false
	for y := 0.0; y <= p.HeightMM; y += stepover {
		x0, x1 := 0.0, p.WidthMM
		if reverse {
			x0, x1 = x1, x0
		}
		if first {
			w.rapid(x0, y, &safeZ)
			w.feedZ(p.CutDepthMM, p.Tool.PlungeMMPerMin)
			first = false
		} else {
			w.feed(x0, y, nil, p.Tool.FeedMMPerMin)
		}
		w.feed(x1, y, nil, p.Tool.FeedMMPerMin)
		reverse = !reverse
	}
	w.rapidZ(safeZ)

	return w.program(), nil
}

// GridParams sizes a drill grid over a rectangle at a fixed pitch.
type GridParams struct {
	Params
	WidthMM, HeightMM float64
	PitchMM           float64
}

// DrillGrid returns the hole centers of a grid spaced PitchMM apart across
// a WidthMM x HeightMM rectangle, starting at the origin; callers pass the
// result to Drill to emit the actual cycles.
func DrillGrid(p GridParams) ([]geom.Pt, error) {
	if p.PitchMM <= 0 || p.WidthMM <= 0 || p.HeightMM <= 0 {
		return nil, camerr.New(camerr.KindValidation, "DrillGrid", camerr.ErrInvalidGeometry)
	}
	var pts []geom.Pt
	for y := 0.0; y <= p.HeightMM; y += p.PitchMM {
		for x := 0.0; x <= p.WidthMM; x += p.PitchMM {
			pts = append(pts, geom.Pt{X: x, Y: y})
		}
	}
	return pts, nil
}
