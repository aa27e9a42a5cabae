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
	"gcodekit5/internal/gerberio"
)

// GerberParams adds the isolation width margin and the rubout and
// alignment-hole fields to the common Params. IsolateGerber reads
// IsolationWidthMM only; Rubout, AlignHoles and AlignMarginMM do not change
// the program it generates.
type GerberParams struct {
	Params
	IsolationWidthMM float64
	Rubout           bool
	AlignHoles       int     // count of alignment holes to add, 0 disables
	AlignMarginMM    float64 // distance from board bounds to each hole
}

// IsolateGerber traces pad/trace perimeters at tool_diameter +
// IsolationWidthMM clearance around every flash/trace in f, with one rapid
// per flash ring and one per side of each trace (no path
// optimization/ordering beyond source order).
func IsolateGerber(f *gerberio.File, p GerberParams) (Program, error) {
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	if len(f.Traces) == 0 && len(f.Flashes) == 0 {
		return Program{}, camerr.New(camerr.KindValidation, "IsolateGerber", camerr.ErrEmptySelection)
	}

	w := newWriter(axesOrDefault(p.Axes))
	w.comment("gerber isolation")
	clearance := p.Tool.Radius() + p.IsolationWidthMM

	for _, tr := range f.Traces {
		traceWidth := apertureWidth(f, tr.Aperture)
		half := traceWidth/2 + clearance
		emitOffsetTrace(w, p, tr, half)
	}
	for _, fl := range f.Flashes {
		r := apertureWidth(f, fl.Aperture)/2 + clearance
		emitFlashRing(w, p, fl, r)
	}

	if p.AlignHoles > 0 {
		// IsolateGerber emits no alignment-hole moves and returns no hole
		// positions; AlignHoles has no effect on the program.
	}

	return w.program(), nil
}

func apertureWidth(f *gerberio.File, code int) float64 {
	ap, ok := f.ApertureOf(code)
	if !ok {
		return 0
	}
	if ap.SizeX > ap.SizeY {
		return ap.SizeX
	}
	return ap.SizeY
}

func emitOffsetTrace(w *writer, p GerberParams, tr gerberio.Trace, half float64) {
	dx, dy := tr.To.X-tr.From.X, tr.To.Y-tr.From.Y
	length := dx*dx + dy*dy
	if length == 0 {
		return
	}
	nx, ny := normalize(-dy, dx, length)

	safeZ := p.SafeZMM
	a0x, a0y := tr.From.X+nx*half, tr.From.Y+ny*half
	w.rapid(a0x, a0y, &safeZ)
	w.feedZ(p.CutDepthMM, p.Tool.PlungeMMPerMin)
	a1x, a1y := tr.To.X+nx*half, tr.To.Y+ny*half
	w.feed(a1x, a1y, nil, p.Tool.FeedMMPerMin)
	w.rapidZ(safeZ)

	b0x, b0y := tr.From.X-nx*half, tr.From.Y-ny*half
	w.rapid(b0x, b0y, &safeZ)
	w.feedZ(p.CutDepthMM, p.Tool.PlungeMMPerMin)
	b1x, b1y := tr.To.X-nx*half, tr.To.Y-ny*half
	w.feed(b1x, b1y, nil, p.Tool.FeedMMPerMin)
	w.rapidZ(safeZ)
}

func normalize(x, y, lenSq float64) (float64, float64) {
	l := math.Sqrt(lenSq)
	if l == 0 {
		return 0, 0
	}
	return x / l, y / l
}

func emitFlashRing(w *writer, p GerberParams, fl gerberio.Flash, r float64) {
	if r <= 0 {
		return
	}
	const segments = 24
	safeZ := p.SafeZMM
	first := true
	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / segments
		x := fl.At.X + r*math.Cos(theta)
		y := fl.At.Y + r*math.Sin(theta)
		if first {
			w.rapid(x, y, &safeZ)
			w.feedZ(p.CutDepthMM, p.Tool.PlungeMMPerMin)
			first = false
			continue
		}
		w.feed(x, y, nil, p.Tool.FeedMMPerMin)
	}
	w.rapidZ(safeZ)
}
