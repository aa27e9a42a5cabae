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

// VectorParams is the common engraving cut depth/feed plus an optional
// laser power; PowerS of 0 means no S word is emitted (spindle router cut
// rather than a laser).
type VectorParams struct {
	Params
	PowerS float64
}

// EngraveVector tessellates each path (already parsed from SVG/DXF via
// internal/importer) and emits an ordered G1 traversal, paths visited in
// input order with no path-reordering optimization.
func EngraveVector(paths []*geom.Path, p VectorParams) (Program, error) {
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	if len(paths) == 0 {
		return Program{}, camerr.New(camerr.KindValidation, "EngraveVector", camerr.ErrEmptySelection)
	}

	w := newWriter(axesOrDefault(p.Axes))
	w.comment("vector engrave")
	for _, path := range paths {
		pts := geom.Tessellate(path, 0.05)
		if len(pts) < 2 {
			continue
		}
		safeZ := p.SafeZMM
		w.rapid(pts[0].X, pts[0].Y, &safeZ)
		w.feedZ(p.CutDepthMM, p.Tool.PlungeMMPerMin)
		for _, pt := range pts[1:] {
			if p.PowerS > 0 {
				w.feedS(pt.X, pt.Y, p.Tool.FeedMMPerMin, p.PowerS)
			} else {
				w.feed(pt.X, pt.Y, nil, p.Tool.FeedMMPerMin)
			}
		}
		w.rapidZ(p.SafeZMM)
	}
	return w.program(), nil
}
