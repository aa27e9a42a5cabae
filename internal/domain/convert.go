/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/base64"
	"math"

	"gcodekit5/internal/geom"
	"gcodekit5/internal/shape"
)

// ShapeFromDesign projects an in-memory shape.Shape (internal/design's
// working representation) into its serializable Document form. Arc commands
// are flattened to line segments at a fine tolerance since the on-disk Ops
// vocabulary only carries M/L/Q/C/Z — every consumer of a PathShape already
// tessellates Q/C anyway, so a pre-flattened arc costs nothing at read time.
func ShapeFromDesign(s shape.Shape) Shape {
	out := Shape{
		ID:        uint64(s.ID),
		Kind:      s.Kind.String(),
		Transform: transformFromDesign(s.Transform),
		ZOrder:    s.ZOrder,
		Style:     styleFromDesign(s.Style),
	}
	if s.ParentGroup != 0 {
		out.ParentGroup = uint64(s.ParentGroup)
	}
	switch s.Kind {
	case shape.KindRectangle:
		out.Rectangle = &RectShape{Width: s.Rectangle.Width, Height: s.Rectangle.Height, CornerRadius: s.Rectangle.CornerRadius}
	case shape.KindCircle:
		out.Circle = &CircleShape{Radius: s.Circle.Radius}
	case shape.KindEllipse:
		out.Ellipse = &EllipseShape{RadiusX: s.Ellipse.RadiusX, RadiusY: s.Ellipse.RadiusY}
	case shape.KindLine:
		out.Line = &LineShape{FromX: s.Line.From.X, FromY: s.Line.From.Y, ToX: s.Line.To.X, ToY: s.Line.To.Y}
	case shape.KindPath:
		ops, coords := encodePath(s.Path.Local)
		out.Path = &PathShape{Ops: ops, Coords: coords, Closed: s.Path.Closed}
	case shape.KindText:
		out.Text = &TextShape{Content: s.Text.Content, FontName: s.Text.FontName, SizeMM: s.Text.SizeMM}
	case shape.KindGroup:
		children := make([]uint64, len(s.Group.Children))
		for i, c := range s.Group.Children {
			children[i] = uint64(c)
		}
		out.Group = &GroupShape{Children: children}
	case shape.KindImage:
		out.Image = &ImageShape{
			Width:        s.Image.Width,
			Height:       s.Image.Height,
			PixelDataB64: base64.StdEncoding.EncodeToString(s.Image.PixelData),
		}
	}
	return out
}

func transformFromDesign(t geom.Transform2D) Transform {
	return Transform{TX: t.TX, TY: t.TY, RotationDeg: t.RotationDeg, ScaleX: t.ScaleX, ScaleY: t.ScaleY}
}

func styleFromDesign(s shape.Style) Style {
	stroke, fill := "none", "none"
	if s.Stroke == shape.StrokeSolid {
		stroke = "solid"
	}
	if s.Fill == shape.FillSolid {
		fill = "solid"
	}
	return Style{Stroke: stroke, Fill: fill, StrokeColor: s.StrokeColor, FillColor: s.FillColor, StrokeWidth: s.StrokeWidth}
}

func encodePath(p geom.Path) (ops []string, coords []float64) {
	emit := func(op string, pts ...geom.Pt) {
		ops = append(ops, op)
		for _, pt := range pts {
			coords = append(coords, pt.X, pt.Y)
		}
	}
	var cur geom.Pt
	for _, cmd := range p.Cmds {
		switch cmd.Op {
		case geom.MoveTo:
			cur = cmd.Data[0]
			emit("M", cur)
		case geom.LineTo:
			cur = cmd.Data[0]
			emit("L", cur)
		case geom.QuadTo:
			cur = cmd.Data[1]
			emit("Q", cmd.Data[0], cmd.Data[1])
		case geom.CubicTo:
			cur = cmd.Data[2]
			emit("C", cmd.Data[0], cmd.Data[1], cmd.Data[2])
		case geom.ArcTo:
			for _, pt := range flattenArc(cmd) {
				emit("L", pt)
				cur = pt
			}
		case geom.Close:
			ops = append(ops, "Z")
		}
	}
	return ops, coords
}

func flattenArc(cmd geom.PathCmd) []geom.Pt {
	center := cmd.Data[0]
	span := cmd.EndDeg - cmd.StartDeg
	if cmd.CW && span > 0 {
		span -= 360
	}
	if !cmd.CW && span < 0 {
		span += 360
	}
	steps := int(math.Abs(span) / 4) // ~4 degrees per segment, well inside tolerance at machining scale
	if steps < 1 {
		steps = 1
	}
	pts := make([]geom.Pt, 0, steps)
	for i := 1; i <= steps; i++ {
		deg := cmd.StartDeg + span*float64(i)/float64(steps)
		pts = append(pts, pointOnCircle(center, cmd.Radius, deg))
	}
	return pts
}

func pointOnCircle(center geom.Pt, radius, deg float64) geom.Pt {
	rad := deg * math.Pi / 180
	return geom.Pt{X: center.X + radius*math.Cos(rad), Y: center.Y + radius*math.Sin(rad)}
}
