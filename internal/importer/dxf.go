/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package importer

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/rpaloschi/dxf-go/document"
	"github.com/rpaloschi/dxf-go/entities"

	"gcodekit5/internal/camerr"
	"gcodekit5/internal/geom"
	"gcodekit5/internal/idalloc"
	applog "gcodekit5/internal/log"
	"gcodekit5/internal/shape"
)

// ImportDXF parses r as a DXF document and converts each supported entity
// into a shape.Line (LINE), shape.Circle (CIRCLE), or shape.Path (ARC,
// LWPOLYLINE, POLYLINE).
// SPLINE and any other entity kind this subset doesn't model are skipped
// with a logged warning, matching ImportSVG's partial-import policy.
func ImportDXF(r io.Reader, alloc *idalloc.Allocator) ([]shape.Shape, error) {
	doc, err := document.DxfDocumentFromStream(r)
	if err != nil {
		return nil, camerr.New(camerr.KindResource, "importer.dxf", fmt.Errorf("parse dxf: %w", err))
	}
	log := applog.WithComponent("importer")

	var out []shape.Shape
	for _, ent := range doc.Entities.Entities {
		switch e := ent.(type) {
		case *entities.Line:
			out = append(out, shape.NewLine(alloc.Next(),
				geom.Pt{X: e.Start.X, Y: e.Start.Y},
				geom.Pt{X: e.End.X, Y: e.End.Y}))
		case *entities.Circle:
			s := shape.NewCircle(alloc.Next(), e.Radius)
			s.Transform = geom.Transform2D{TX: e.Center.X, TY: e.Center.Y, ScaleX: 1, ScaleY: 1}
			out = append(out, s)
		case *entities.Arc:
			var p geom.Path
			center := geom.Pt{X: e.Center.X, Y: e.Center.Y}
			p.ArcTo(geom.Pt{}, e.Radius, e.StartAngle, e.EndAngle, false)
			s := shape.NewPath(alloc.Next(), p, false)
			s.Transform = geom.Transform2D{TX: center.X, TY: center.Y, ScaleX: 1, ScaleY: 1}
			out = append(out, s)
		case *entities.LWPolyline:
			out = append(out, polylineShape(alloc, lwVertices(e), e.Closed))
		case *entities.Polyline:
			out = append(out, polylineShape(alloc, plVertices(e), e.Closed))
		default:
			log.Warn("skipping unsupported dxf entity", slog.String("type", fmt.Sprintf("%T", ent)))
		}
	}
	return out, nil
}

func lwVertices(e *entities.LWPolyline) []geom.Pt {
	pts := make([]geom.Pt, 0, len(e.Points))
	for _, v := range e.Points {
		pts = append(pts, geom.Pt{X: v.Point.X, Y: v.Point.Y})
	}
	return pts
}

func plVertices(e *entities.Polyline) []geom.Pt {
	pts := make([]geom.Pt, 0, len(e.Vertices))
	for _, v := range e.Vertices {
		pts = append(pts, geom.Pt{X: v.Location.X, Y: v.Location.Y})
	}
	return pts
}

func polylineShape(alloc *idalloc.Allocator, pts []geom.Pt, closed bool) shape.Shape {
	var p geom.Path
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt.X, pt.Y)
		} else {
			p.LineTo(pt.X, pt.Y)
		}
	}
	if closed {
		p.Close()
	}
	return shape.NewPath(alloc.Next(), p, closed)
}
