/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cam

import "gcodekit5/internal/camerr"

// ToolKind names the physical cutter/beam a Tool describes.
type ToolKind int

const (
	ToolEndMill ToolKind = iota
	ToolDrill
	ToolVBit
	ToolLaser
)

// Tool is the subset of a toollib preset a generator actually consumes.
// Generators take Tool by value so callers can override a library preset's
// feed/plunge/RPM per job without mutating the shared preset.
type Tool struct {
	Name           string
	DiameterMM     float64
	Kind           ToolKind
	FeedMMPerMin   float64
	PlungeMMPerMin float64
	SpindleRPM     float64
}

func (t Tool) Radius() float64 { return t.DiameterMM / 2 }

// Tabs describes bridge segments left uncut to hold a part to stock.
type Tabs struct {
	Count      int
	WidthMM    float64
	HeightMM   float64 // measured up from the cut floor
}

// Params are the common parameters shared by every toolpath generator,
// specified per-operation in spec but uniform in meaning.
type Params struct {
	Tool Tool

	CutDepthMM  float64 // negative, below stock surface
	SafeZMM     float64
	StepDownMM  float64 // per pass; 0 means single pass to CutDepthMM
	StepOverPct float64 // percentage of tool diameter, pocket/raster/spoilboard

	LeadInMM    float64
	LeadOutMM   float64
	LeadAngle   float64
	Ramping     bool
	RampLengthMM float64

	MultipassCount int // 0 derives pass count from StepDownMM
	Tabs           Tabs

	Axes int // 2 or 3; governs G10 Z omission

	WCSIndex int
}

// Validate rejects parameter combinations a generator cannot act on.
func (p Params) Validate() error {
	if p.Tool.DiameterMM <= 0 {
		return camerr.New(camerr.KindValidation, "Params.Validate", camerr.ErrInvalidGeometry)
	}
	if p.CutDepthMM >= 0 {
		return camerr.New(camerr.KindValidation, "Params.Validate", camerr.ErrInvalidGeometry)
	}
	if p.SafeZMM <= 0 {
		return camerr.New(camerr.KindValidation, "Params.Validate", camerr.ErrInvalidGeometry)
	}
	return nil
}

// passDepths returns the Z target of each pass, deepest last, derived from
// StepDownMM (or MultipassCount when StepDownMM is 0).
func (p Params) passDepths() []float64 {
	total := -p.CutDepthMM // positive depth magnitude
	if total <= 0 {
		return nil
	}

	var step float64
	switch {
	case p.StepDownMM > 0:
		step = p.StepDownMM
	case p.MultipassCount > 0:
		step = total / float64(p.MultipassCount)
	default:
		step = total
	}

	var depths []float64
	d := step
	for d < total {
		depths = append(depths, -d)
		d += step
	}
	depths = append(depths, p.CutDepthMM)
	return depths
}

func axesOrDefault(a int) int {
	if a < 2 {
		return 3
	}
	return a
}
