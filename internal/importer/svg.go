/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package importer converts external vector formats — SVG and DXF — into
// shapes a design can place directly: a primitive shape kind where the
// source element has one, a shape.Path otherwise. Unsupported entities are
// skipped with a logged warning rather than failing the whole import, since
// a partial import is more useful than none.
package importer

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"gcodekit5/internal/camerr"
	"gcodekit5/internal/geom"
	"gcodekit5/internal/idalloc"
	applog "gcodekit5/internal/log"
	"gcodekit5/internal/shape"
)

// svgDoc mirrors the subset of SVG this importer understands. Attributes
// outside this set (styling, gradients, clip paths) are ignored.
type svgDoc struct {
	XMLName  xml.Name    `xml:"svg"`
	Rects    []svgRect   `xml:"rect"`
	Circles  []svgCircle `xml:"circle"`
	Ellipses []svgEllipse `xml:"ellipse"`
	Lines    []svgLine   `xml:"line"`
	Polys    []svgPoly   `xml:"polyline"`
	Polygons []svgPoly   `xml:"polygon"`
	Paths    []svgPath   `xml:"path"`
	Texts    []svgText   `xml:"text"`
	Groups   []svgGroup  `xml:"g"`
}

type svgGroup struct {
	Rects    []svgRect    `xml:"rect"`
	Circles  []svgCircle  `xml:"circle"`
	Ellipses []svgEllipse `xml:"ellipse"`
	Lines    []svgLine    `xml:"line"`
	Polys    []svgPoly    `xml:"polyline"`
	Polygons []svgPoly    `xml:"polygon"`
	Paths    []svgPath    `xml:"path"`
	Texts    []svgText    `xml:"text"`
}

type svgRect struct {
	XAttr  string `xml:"x,attr"`
	YAttr  string `xml:"y,attr"`
	WAttr  string `xml:"width,attr"`
	HAttr  string `xml:"height,attr"`
	RxAttr string `xml:"rx,attr"`
}

type svgCircle struct {
	CxAttr string `xml:"cx,attr"`
	CyAttr string `xml:"cy,attr"`
	RAttr  string `xml:"r,attr"`
}

type svgEllipse struct {
	CxAttr string `xml:"cx,attr"`
	CyAttr string `xml:"cy,attr"`
	RxAttr string `xml:"rx,attr"`
	RyAttr string `xml:"ry,attr"`
}

type svgLine struct {
	X1Attr string `xml:"x1,attr"`
	Y1Attr string `xml:"y1,attr"`
	X2Attr string `xml:"x2,attr"`
	Y2Attr string `xml:"y2,attr"`
}

type svgPoly struct {
	PointsAttr string `xml:"points,attr"`
}

type svgPath struct {
	DAttr string `xml:"d,attr"`
}

type svgText struct {
	XAttr    string `xml:"x,attr"`
	YAttr    string `xml:"y,attr"`
	FontSize string `xml:"font-size,attr"`
	Content  string `xml:",chardata"`
}

func f64(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "px")
	s = strings.TrimSuffix(s, "mm")
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// ImportSVG parses r as an SVG document and returns one shape per supported
// top-level or grouped primitive: rect, circle, ellipse, line, and text
// become Rectangle, Circle, Ellipse, Line, and Text shapes; polyline,
// polygon, and path become Path shapes. alloc mints shape ids
// so imported shapes slot into an existing document without id collisions.
// Unsupported elements are skipped with a warning, never aborting the rest
// of the import.
func ImportSVG(r io.Reader, alloc *idalloc.Allocator) ([]shape.Shape, error) {
	var doc svgDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, camerr.New(camerr.KindResource, "importer.svg", fmt.Errorf("parse svg: %w", err))
	}
	log := applog.WithComponent("importer")

	var out []shape.Shape
	collect := func(rects []svgRect, circles []svgCircle, ellipses []svgEllipse, lines []svgLine, polys []svgPoly, polygons []svgPoly, paths []svgPath, texts []svgText) {
		for _, e := range rects {
			out = append(out, rectToShape(alloc, e))
		}
		for _, e := range circles {
			out = append(out, circleToShape(alloc, e))
		}
		for _, e := range ellipses {
			out = append(out, ellipseToShape(alloc, e))
		}
		for _, e := range lines {
			out = append(out, lineToShape(alloc, e))
		}
		for _, e := range polys {
			out = append(out, polyToShape(alloc, e, false))
		}
		for _, e := range polygons {
			out = append(out, polyToShape(alloc, e, true))
		}
		for _, e := range paths {
			s, err := pathToShape(alloc, e)
			if err != nil {
				log.Warn("skipping unparseable svg path", slog.String("d", e.DAttr), slog.Any("err", err))
				continue
			}
			out = append(out, s)
		}
		for _, e := range texts {
			s, ok := textToShape(alloc, e)
			if !ok {
				log.Warn("skipping empty svg text element")
				continue
			}
			out = append(out, s)
		}
	}
	collect(doc.Rects, doc.Circles, doc.Ellipses, doc.Lines, doc.Polys, doc.Polygons, doc.Paths, doc.Texts)
	for _, g := range doc.Groups {
		collect(g.Rects, g.Circles, g.Ellipses, g.Lines, g.Polys, g.Polygons, g.Paths, g.Texts)
	}
	return out, nil
}

func rectToShape(alloc *idalloc.Allocator, e svgRect) shape.Shape {
	s := shape.NewRectangle(alloc.Next(), f64(e.WAttr), f64(e.HAttr), f64(e.RxAttr))
	s.Transform = geom.Transform2D{TX: f64(e.XAttr), TY: f64(e.YAttr), ScaleX: 1, ScaleY: 1}
	return s
}

func circleToShape(alloc *idalloc.Allocator, e svgCircle) shape.Shape {
	s := shape.NewCircle(alloc.Next(), f64(e.RAttr))
	s.Transform = geom.Transform2D{TX: f64(e.CxAttr), TY: f64(e.CyAttr), ScaleX: 1, ScaleY: 1}
	return s
}

func ellipseToShape(alloc *idalloc.Allocator, e svgEllipse) shape.Shape {
	s := shape.NewEllipse(alloc.Next(), f64(e.RxAttr), f64(e.RyAttr))
	s.Transform = geom.Transform2D{TX: f64(e.CxAttr), TY: f64(e.CyAttr), ScaleX: 1, ScaleY: 1}
	return s
}

func lineToShape(alloc *idalloc.Allocator, e svgLine) shape.Shape {
	from := geom.Pt{X: f64(e.X1Attr), Y: f64(e.Y1Attr)}
	to := geom.Pt{X: f64(e.X2Attr), Y: f64(e.Y2Attr)}
	return shape.NewLine(alloc.Next(), from, to)
}

func polyToShape(alloc *idalloc.Allocator, e svgPoly, closed bool) shape.Shape {
	fields := strings.FieldsFunc(e.PointsAttr, func(r rune) bool { return r == ',' || r == ' ' })
	var p geom.Path
	for i := 0; i+1 < len(fields); i += 2 {
		x, y := f64(fields[i]), f64(fields[i+1])
		if i == 0 {
			p.MoveTo(x, y)
		} else {
			p.LineTo(x, y)
		}
	}
	if closed {
		p.Close()
	}
	return shape.NewPath(alloc.Next(), p, closed)
}

func textToShape(alloc *idalloc.Allocator, e svgText) (shape.Shape, bool) {
	content := strings.TrimSpace(e.Content)
	if content == "" {
		return shape.Shape{}, false
	}
	size := f64(e.FontSize)
	if size <= 0 {
		size = 12
	}
	s := shape.NewText(alloc.Next(), content, "", size)
	s.Transform = geom.Transform2D{TX: f64(e.XAttr), TY: f64(e.YAttr), ScaleX: 1, ScaleY: 1}
	return s, true
}

// pathToShape tokenizes an SVG path "d" attribute (M/L/H/V/C/Q/A/Z, absolute
// and relative) into a geom.Path. Arcs are converted to cubic Bezier
// segments via the standard SVG endpoint-to-center parameterization, since
// geom.Path's ArcTo only models circular (not elliptical) arcs.
func pathToShape(alloc *idalloc.Allocator, e svgPath) (shape.Shape, error) {
	toks := tokenizePathData(e.DAttr)
	if len(toks) == 0 {
		return shape.Shape{}, fmt.Errorf("empty path data")
	}
	var p geom.Path
	var cur, start geom.Pt
	closed := false
	i := 0
	nextNums := func(n int) ([]float64, error) {
		if i+n > len(toks) {
			return nil, fmt.Errorf("unexpected end of path data")
		}
		vals := make([]float64, n)
		for k := 0; k < n; k++ {
			v, err := strconv.ParseFloat(toks[i+k], 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q: %w", toks[i+k], err)
			}
			vals[k] = v
		}
		i += n
		return vals, nil
	}
	for i < len(toks) {
		cmd := toks[i]
		i++
		relative := cmd == strings.ToLower(cmd)
		switch strings.ToUpper(cmd) {
		case "M":
			n, err := nextNums(2)
			if err != nil {
				return shape.Shape{}, err
			}
			cur = applyRel(cur, n[0], n[1], relative)
			p.MoveTo(cur.X, cur.Y)
			start = cur
		case "L":
			n, err := nextNums(2)
			if err != nil {
				return shape.Shape{}, err
			}
			cur = applyRel(cur, n[0], n[1], relative)
			p.LineTo(cur.X, cur.Y)
		case "H":
			n, err := nextNums(1)
			if err != nil {
				return shape.Shape{}, err
			}
			x := n[0]
			if relative {
				x += cur.X
			}
			cur = geom.Pt{X: x, Y: cur.Y}
			p.LineTo(cur.X, cur.Y)
		case "V":
			n, err := nextNums(1)
			if err != nil {
				return shape.Shape{}, err
			}
			y := n[0]
			if relative {
				y += cur.Y
			}
			cur = geom.Pt{X: cur.X, Y: y}
			p.LineTo(cur.X, cur.Y)
		case "C":
			n, err := nextNums(6)
			if err != nil {
				return shape.Shape{}, err
			}
			c1 := applyRel(cur, n[0], n[1], relative)
			c2 := applyRel(cur, n[2], n[3], relative)
			end := applyRel(cur, n[4], n[5], relative)
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			cur = end
		case "Q":
			n, err := nextNums(4)
			if err != nil {
				return shape.Shape{}, err
			}
			c := applyRel(cur, n[0], n[1], relative)
			end := applyRel(cur, n[2], n[3], relative)
			p.QuadTo(c.X, c.Y, end.X, end.Y)
			cur = end
		case "A":
			n, err := nextNums(7)
			if err != nil {
				return shape.Shape{}, err
			}
			end := applyRel(cur, n[5], n[6], relative)
			appendArc(&p, cur, end, n[0], n[1], n[2], n[3] != 0, n[4] != 0)
			cur = end
		case "Z":
			p.Close()
			cur = start
			closed = true
		default:
			return shape.Shape{}, fmt.Errorf("unsupported path command %q", cmd)
		}
	}
	return shape.NewPath(alloc.Next(), p, closed), nil
}

func applyRel(cur geom.Pt, x, y float64, relative bool) geom.Pt {
	if relative {
		return geom.Pt{X: cur.X + x, Y: cur.Y + y}
	}
	return geom.Pt{X: x, Y: y}
}

// tokenizePathData splits a path "d" string into command letters and
// numbers, handling the common SVG shorthand of omitting separators between
// a decimal point and the next number (e.g. "10.5.5" == "10.5 .5").
func tokenizePathData(d string) []string {
	var toks []string
	var num strings.Builder
	flushNum := func() {
		if num.Len() > 0 {
			toks = append(toks, num.String())
			num.Reset()
		}
	}
	seenDot := false
	for _, r := range d {
		switch {
		case strings.ContainsRune("MmLlHhVvCcQqAaZz", r):
			flushNum()
			toks = append(toks, string(r))
			seenDot = false
		case r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flushNum()
			seenDot = false
		case r == '-' || r == '+':
			if num.Len() > 0 {
				last := num.String()[num.Len()-1]
				if last != 'e' && last != 'E' {
					flushNum()
					seenDot = false
				}
			}
			num.WriteRune(r)
		case r == '.':
			if seenDot {
				flushNum()
			}
			seenDot = true
			num.WriteRune(r)
		default:
			num.WriteRune(r)
		}
	}
	flushNum()
	return toks
}

// appendArc converts one SVG elliptical-arc segment into cubic Bezier
// curves appended to p, following the endpoint-to-center parameterization
// from the SVG 1.1 spec appendix F.6.
func appendArc(p *geom.Path, from, to geom.Pt, rx, ry, rotationDeg float64, largeArc, sweep bool) {
	if rx == 0 || ry == 0 || (from == to) {
		p.LineTo(to.X, to.Y)
		return
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	phi := rotationDeg * math.Pi / 180
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)

	dx2, dy2 := (from.X-to.X)/2, (from.Y-to.Y)/2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	lambda := (x1p*x1p)/(rx*rx) + (y1p*y1p)/(ry*ry)
	if lambda > 1 {
		scale := math.Sqrt(lambda)
		rx *= scale
		ry *= scale
	}

	sign := 1.0
	if largeArc == sweep {
		sign = -1
	}
	num := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	co := 0.0
	if den != 0 && num > 0 {
		co = sign * math.Sqrt(num/den)
	}
	cxp := co * (rx * y1p / ry)
	cyp := co * -(ry * x1p / rx)

	cx := cosPhi*cxp - sinPhi*cyp + (from.X+to.X)/2
	cy := sinPhi*cxp + cosPhi*cyp + (from.Y+to.Y)/2

	angle := func(ux, uy, vx, vy float64) float64 {
		dot := ux*vx + uy*vy
		lenProd := math.Hypot(ux, uy) * math.Hypot(vx, vy)
		a := math.Acos(clamp(dot/lenProd, -1, 1))
		if ux*vy-uy*vx < 0 {
			a = -a
		}
		return a
	}
	theta1 := angle(1, 0, (x1p-cxp)/rx, (y1p-cyp)/ry)
	dtheta := angle((x1p-cxp)/rx, (y1p-cyp)/ry, (-x1p-cxp)/rx, (-y1p-cyp)/ry)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}

	segments := int(math.Ceil(math.Abs(dtheta) / (math.Pi / 2)))
	if segments < 1 {
		segments = 1
	}
	delta := dtheta / float64(segments)
	t := 4.0 / 3.0 * math.Tan(delta/4)

	theta := theta1
	for s := 0; s < segments; s++ {
		cosT1, sinT1 := math.Cos(theta), math.Sin(theta)
		theta2 := theta + delta
		cosT2, sinT2 := math.Cos(theta2), math.Sin(theta2)

		p1 := ellipsePoint(cx, cy, rx, ry, cosPhi, sinPhi, cosT1, sinT1)
		p2 := ellipsePoint(cx, cy, rx, ry, cosPhi, sinPhi, cosT2, sinT2)
		d1 := ellipseDeriv(rx, ry, cosPhi, sinPhi, cosT1, sinT1)
		d2 := ellipseDeriv(rx, ry, cosPhi, sinPhi, cosT2, sinT2)

		c1 := geom.Pt{X: p1.X + t*d1.X, Y: p1.Y + t*d1.Y}
		c2 := geom.Pt{X: p2.X - t*d2.X, Y: p2.Y - t*d2.Y}
		p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p2.X, p2.Y)
		theta = theta2
	}
}

func ellipsePoint(cx, cy, rx, ry, cosPhi, sinPhi, cosT, sinT float64) geom.Pt {
	return geom.Pt{
		X: cx + rx*cosT*cosPhi - ry*sinT*sinPhi,
		Y: cy + rx*cosT*sinPhi + ry*sinT*cosPhi,
	}
}

func ellipseDeriv(rx, ry, cosPhi, sinPhi, cosT, sinT float64) geom.Pt {
	return geom.Pt{
		X: -rx*sinT*cosPhi - ry*cosT*sinPhi,
		Y: -rx*sinT*sinPhi + ry*cosT*cosPhi,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
