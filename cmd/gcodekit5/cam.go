/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"math"

	"gcodekit5/internal/cam"
	"gcodekit5/internal/domain"
	"gcodekit5/internal/geom"
	"gcodekit5/internal/toollib"
)

// shapeRings flattens one document shape's transformed outline into closed
// polygon rings, the same local-geometry-then-transform approach
// internal/export uses for setup sheets, but returning geom types so the
// rings can feed straight into internal/cam's generators.
func shapeRings(s domain.Shape) []geom.Polygon {
	local := shapeLocalRing(s)
	if len(local) == 0 {
		return nil
	}
	t := domainTransform(s.Transform)
	m := t.Matrix()
	out := make([]geom.Polygon, len(local))
	for i, ring := range local {
		pts := make(geom.Polygon, len(ring))
		for j, p := range ring {
			pts[j] = m.Apply(p)
		}
		out[i] = pts
	}
	return out
}

func domainTransform(t domain.Transform) geom.Transform2D {
	return geom.Transform2D{TX: t.TX, TY: t.TY, RotationDeg: t.RotationDeg, ScaleX: t.ScaleX, ScaleY: t.ScaleY}
}

func shapeLocalRing(s domain.Shape) []geom.Polygon {
	switch {
	case s.Rectangle != nil:
		w, h := s.Rectangle.Width, s.Rectangle.Height
		return []geom.Polygon{{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}}
	case s.Circle != nil:
		return []geom.Polygon{circleRing(s.Circle.Radius, s.Circle.Radius, 64)}
	case s.Ellipse != nil:
		return []geom.Polygon{circleRing(s.Ellipse.RadiusX, s.Ellipse.RadiusY, 64)}
	case s.Path != nil:
		return pathRings(s.Path)
	default:
		return nil
	}
}

func circleRing(rx, ry float64, n int) geom.Polygon {
	pts := make(geom.Polygon, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geom.Pt{X: rx * math.Cos(a), Y: ry * math.Sin(a)}
	}
	return pts
}

// pathRings walks the op-coded PathShape the same way export.pathPoints
// does, discarding curve control points in favor of endpoints — sufficient
// for ring-based toolpath generators, which only need the boundary.
func pathRings(p *domain.PathShape) []geom.Polygon {
	var rings []geom.Polygon
	var cur geom.Polygon
	ci := 0
	next := func() geom.Pt {
		x, y := p.Coords[ci], p.Coords[ci+1]
		ci += 2
		return geom.Pt{X: x, Y: y}
	}
	for _, op := range p.Ops {
		switch op {
		case "M":
			if len(cur) > 0 {
				rings = append(rings, cur)
			}
			cur = geom.Polygon{next()}
		case "L":
			cur = append(cur, next())
		case "Q":
			next()
			cur = append(cur, next())
		case "C":
			next()
			next()
			cur = append(cur, next())
		case "Z":
			// ring is already closed by construction once tessellated
		}
	}
	if len(cur) > 0 {
		rings = append(rings, cur)
	}
	return rings
}

func findOp(doc domain.Document, opID uint64) (domain.CAMOp, bool) {
	for _, op := range doc.Operations {
		if op.ID == opID {
			return op, true
		}
	}
	return domain.CAMOp{}, false
}

func findTool(doc domain.Document, toolID string) (domain.Tool, bool) {
	for _, t := range doc.Tools {
		if t.ID == toolID {
			return t, true
		}
	}
	return domain.Tool{}, false
}

func opRings(doc domain.Document, op domain.CAMOp) []geom.Polygon {
	var rings []geom.Polygon
	for _, sid := range op.ShapeIDs {
		for _, s := range doc.Shapes {
			if s.ID == sid {
				rings = append(rings, shapeRings(s)...)
			}
		}
	}
	return rings
}

func paramFloat(p map[string]float64, key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func baseParams(doc domain.Document, op domain.CAMOp) (cam.Params, error) {
	tool, ok := findTool(doc, op.ToolID)
	if !ok {
		return cam.Params{}, fmt.Errorf("operation %d references unknown tool %q", op.ID, op.ToolID)
	}
	preset := toollib.Preset{Tool: tool}
	p := op.Params
	return cam.Params{
		Tool:        preset.ToCAMTool(),
		CutDepthMM:  paramFloat(p, "cut_depth_mm", -tool.MaxDepthMM),
		SafeZMM:     paramFloat(p, "safe_z_mm", 5),
		StepDownMM:  paramFloat(p, "step_down_mm", 0),
		StepOverPct: paramFloat(p, "step_over_pct", 40),
		Ramping:     op.Flags["ramping"],
		Axes:        doc.Stock.Axes,
	}, nil
}

// runCAMOp resolves an operation's shapes, tool, and parameters and
// generates its G-code program. Only the ring-based operations (outline,
// pocket) and point-based drill are wired here; the raster/vector-engrave,
// gerber-isolate, tabbed-box, jigsaw, and spoilboard-surfacing generators
// take image/gerber/panel inputs this flat CLI path doesn't construct from
// a design.json — those remain reachable only from in-process callers (the
// desktop UI would build the bitmap/gerber/panel inputs interactively).
func runCAMOp(doc domain.Document, op domain.CAMOp) (cam.Program, error) {
	params, err := baseParams(doc, op)
	if err != nil {
		return cam.Program{}, err
	}
	rings := opRings(doc, op)
	switch op.Kind {
	case "outline":
		return cam.Outline(rings, cam.OutlineParams{Params: params, Side: cam.OutlineOutside})
	case "pocket":
		if len(rings) == 0 {
			return cam.Program{}, fmt.Errorf("operation %d has no resolvable shape rings", op.ID)
		}
		return cam.Pocket(rings[0], cam.PocketParams{Params: params, Strategy: cam.OffsetSpiral})
	case "drill":
		var pts []geom.Pt
		for _, ring := range rings {
			if len(ring) > 0 {
				pts = append(pts, ring[0])
			}
		}
		return cam.Drill(pts, cam.DrillParams{Params: params})
	default:
		return cam.Program{}, fmt.Errorf("operation kind %q is not generable from the CLI", op.Kind)
	}
}
