/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package shape is the closed, tagged shape variant plus its uniform
// capability set (render/bounds/hit/CSG/properties). New shape kinds are
// additive and force exhaustive handling at every switch in this package
// rather than a growing inheritance hierarchy.
package shape

import (
	"gcodekit5/internal/geom"
	"gcodekit5/internal/idalloc"
)

// ID identifies a shape, stable for the life of the design.
type ID = idalloc.ID

// Kind tags which parametric variant a Shape holds.
type Kind uint8

const (
	KindRectangle Kind = iota
	KindCircle
	KindEllipse
	KindLine
	KindPath
	KindText
	KindGroup
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindRectangle:
		return "rectangle"
	case KindCircle:
		return "circle"
	case KindEllipse:
		return "ellipse"
	case KindLine:
		return "line"
	case KindPath:
		return "path"
	case KindText:
		return "text"
	case KindGroup:
		return "group"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// StrokeKind and FillKind are display-only style attributes; the CAM layer
// never reads them.
type StrokeKind uint8

const (
	StrokeNone StrokeKind = iota
	StrokeSolid
)

type FillKind uint8

const (
	FillNone FillKind = iota
	FillSolid
)

// Style carries display-only stroke/fill attributes.
type Style struct {
	Stroke      StrokeKind
	Fill        FillKind
	StrokeColor [4]uint8
	FillColor   [4]uint8
	StrokeWidth float64
}

// Shape is the tagged variant. Only the fields relevant to Kind are
// meaningful; the New* constructors in construct.go populate the right
// subset. ParentGroup is 0 (ID zero value) for top-level shapes.
type Shape struct {
	ID          ID
	Kind        Kind
	Transform   geom.Transform2D
	ParentGroup ID
	ZOrder      int
	Style       Style

	// Parametric fields, populated per Kind.
	Rectangle RectangleParams
	Circle    CircleParams
	Ellipse   EllipseParams
	Line      LineParams
	Path      PathParams
	Text      TextParams
	Group     GroupParams
	Image     ImageParams
}

type RectangleParams struct {
	Width, Height, CornerRadius float64
}

type CircleParams struct {
	Radius float64
}

type EllipseParams struct {
	RadiusX, RadiusY float64
}

type LineParams struct {
	From, To geom.Pt
}

// PathParams holds a generic polygonal/curve path. Every boolean-op result
// collapses into this variant, regardless of the operand kinds.
type PathParams struct {
	Local geom.Path
	// Closed marks whether the last subpath is an implicit closed loop for
	// CSG purposes (booleans require closed regions).
	Closed bool
}

type TextParams struct {
	Content  string
	FontName string
	SizeMM   float64
}

type GroupParams struct {
	Children []ID
}

type ImageParams struct {
	Width, Height float64
	// PixelData is the decoded raster; format is whatever internal/importer
	// produced (RGBA8, row-major).
	PixelData []byte
	PixelW    int
	PixelH    int
}

// Property is one entry of a shape's editable property list.
type Property struct {
	Name     string
	Value    float64
	Min, Max float64
	IsAngle  bool
}
