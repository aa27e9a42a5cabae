/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gcode

import (
	"math"

	"gcodekit5/internal/geom"
)

// Metrics summarizes a command stream's physical extent and time cost: the
// cutting bounding rect (rapids excluded, since a rapid move's path isn't a
// cut), total cut and rapid path lengths, and an estimated run duration.
type Metrics struct {
	CuttingBounds geom.Rect
	HasCutting    bool
	CutLengthMM   float64
	RapidLengthMM float64
	EstimatedSec  float64
}

// defaultRapidFeed is the assumed traverse rate (mm/min) used to estimate
// rapid move duration when a controller's actual rapid rate isn't known.
const defaultRapidFeed = 5000.0

// toolChangeSec is a fixed estimate for manual tool-change dwell time.
const toolChangeSec = 15.0

// ComputeMetrics walks a command stream once and derives cut/rapid length,
// the cutting-only bounding rect, and an estimated run time. Dwell seconds
// are added directly; move durations are derived from path length and feed
// rate (or defaultRapidFeed for rapids).
func ComputeMetrics(cmds []GCommand) Metrics {
	var m Metrics
	var rects []geom.Rect

	for _, c := range cmds {
		switch c.Kind {
		case CmdMove:
			length := dist(c.Start, c.End)
			if c.Move == MoveRapid {
				m.RapidLengthMM += length
				m.EstimatedSec += length / defaultRapidFeed * 60
				continue
			}
			m.CutLengthMM += length
			m.HasCutting = true
			rects = append(rects, segmentRect(c.Start, c.End))
			if c.Feed > 0 {
				m.EstimatedSec += length / c.Feed * 60
			}
		case CmdArc:
			length := arcLength(c.Start, c.End, c.Center, c.Clockwise)
			m.CutLengthMM += length
			m.HasCutting = true
			rects = append(rects, arcBounds(c.Start, c.End, c.Center))
			if c.Feed > 0 {
				m.EstimatedSec += length / c.Feed * 60
			}
		case CmdDwell:
			m.EstimatedSec += c.DwellSeconds
		case CmdToolChange:
			m.EstimatedSec += toolChangeSec
		}
	}

	if len(rects) > 0 {
		m.CuttingBounds = geom.UnionRects(rects)
	}
	return m
}

func dist(a, b geom.Pt) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	return math.Hypot(dx, dy)
}

func segmentRect(a, b geom.Pt) geom.Rect {
	minX, maxX := a.X, b.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := a.Y, b.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return geom.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// arcBounds over-approximates an arc's extent by the bounding square of its
// radius around the center, unioned with the endpoint segment rect; callers
// needing exact arc bounds should tessellate through internal/geom instead.
func arcBounds(start, end, center geom.Pt) geom.Rect {
	r := dist(center, start)
	square := geom.Rect{X: center.X - r, Y: center.Y - r, W: 2 * r, H: 2 * r}
	return square.Union(segmentRect(start, end))
}

// arcLength estimates the travelled arc length from the subtended angle.
func arcLength(start, end, center geom.Pt, clockwise bool) float64 {
	r := dist(center, start)
	if r == 0 {
		return dist(start, end)
	}
	a0 := math.Atan2(start.Y-center.Y, start.X-center.X)
	a1 := math.Atan2(end.Y-center.Y, end.X-center.X)
	var sweep float64
	if clockwise {
		sweep = a0 - a1
	} else {
		sweep = a1 - a0
	}
	for sweep < 0 {
		sweep += 2 * math.Pi
	}
	if sweep == 0 {
		sweep = 2 * math.Pi // full circle (start == end)
	}
	return r * sweep
}
