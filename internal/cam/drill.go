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

// DrillParams adds a per-hole dwell at the bottom of the cycle.
type DrillParams struct {
	Params
	DwellSeconds float64
}

// Drill emits a rapid->Z_safe, rapid->(X,Y), feed->Z_target, optional
// dwell, rapid->Z_safe cycle for each point, in input order.
func Drill(points []geom.Pt, p DrillParams) (Program, error) {
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	if len(points) == 0 {
		return Program{}, camerr.New(camerr.KindValidation, "Drill", camerr.ErrEmptySelection)
	}

	w := newWriter(axesOrDefault(p.Axes))
	w.comment("drill")
	safeZ := p.SafeZMM
	for _, pt := range points {
		w.rapidZ(safeZ)
		w.rapid(pt.X, pt.Y, nil)
		w.feedZ(p.CutDepthMM, p.Tool.PlungeMMPerMin)
		if p.DwellSeconds > 0 {
			w.dwell(p.DwellSeconds)
		}
		w.rapidZ(safeZ)
	}
	return w.program(), nil
}
