/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"fmt"

	"gcodekit5/internal/geom"
)

// NewRectangle builds a Rectangle shape. Commit-time validation (non-zero,
// non-negative size) is the caller's responsibility via Validate — creation
// itself allows a transient zero size so interactive drag previews work.
func NewRectangle(id ID, width, height, cornerRadius float64) Shape {
	return Shape{ID: id, Kind: KindRectangle, Transform: geom.IdentityTransform,
		Rectangle: RectangleParams{Width: width, Height: height, CornerRadius: cornerRadius}}
}

func NewCircle(id ID, radius float64) Shape {
	return Shape{ID: id, Kind: KindCircle, Transform: geom.IdentityTransform, Circle: CircleParams{Radius: radius}}
}

func NewEllipse(id ID, rx, ry float64) Shape {
	return Shape{ID: id, Kind: KindEllipse, Transform: geom.IdentityTransform, Ellipse: EllipseParams{RadiusX: rx, RadiusY: ry}}
}

func NewLine(id ID, from, to geom.Pt) Shape {
	return Shape{ID: id, Kind: KindLine, Transform: geom.IdentityTransform, Line: LineParams{From: from, To: to}}
}

func NewPath(id ID, p geom.Path, closed bool) Shape {
	return Shape{ID: id, Kind: KindPath, Transform: geom.IdentityTransform, Path: PathParams{Local: p, Closed: closed}}
}

func NewText(id ID, content, font string, sizeMM float64) Shape {
	return Shape{ID: id, Kind: KindText, Transform: geom.IdentityTransform, Text: TextParams{Content: content, FontName: font, SizeMM: sizeMM}}
}

func NewGroup(id ID, children []ID) Shape {
	return Shape{ID: id, Kind: KindGroup, Transform: geom.IdentityTransform, Group: GroupParams{Children: append([]ID(nil), children...)}}
}

// Validate enforces the data-model invariants for commit (not for a
// transient in-progress drag preview): non-negative dimensions, and no
// zero-size geometry for sizeable variants.
func (s Shape) Validate() error {
	switch s.Kind {
	case KindRectangle:
		if s.Rectangle.Width < 0 || s.Rectangle.Height < 0 || s.Rectangle.CornerRadius < 0 {
			return fmt.Errorf("rectangle: negative dimension")
		}
		if s.Rectangle.Width == 0 || s.Rectangle.Height == 0 {
			return fmt.Errorf("rectangle: zero-size shape on commit")
		}
	case KindCircle:
		if s.Circle.Radius < 0 {
			return fmt.Errorf("circle: negative radius")
		}
		if s.Circle.Radius == 0 {
			return fmt.Errorf("circle: zero-size shape on commit")
		}
	case KindEllipse:
		if s.Ellipse.RadiusX < 0 || s.Ellipse.RadiusY < 0 {
			return fmt.Errorf("ellipse: negative radius")
		}
		if s.Ellipse.RadiusX == 0 || s.Ellipse.RadiusY == 0 {
			return fmt.Errorf("ellipse: zero-size shape on commit")
		}
	case KindLine:
		if s.Line.From.AlmostEqual(s.Line.To) {
			return fmt.Errorf("line: zero-size shape on commit")
		}
	case KindPath:
		if len(s.Path.Local.Cmds) == 0 {
			return fmt.Errorf("path: empty path on commit")
		}
	case KindText:
		if s.Text.Content == "" {
			return fmt.Errorf("text: empty content on commit")
		}
		if s.Text.SizeMM <= 0 {
			return fmt.Errorf("text: non-positive size")
		}
	}
	return nil
}
