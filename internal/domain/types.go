/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany..
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "gcodekit5/internal/shape"

// This file defines the serializable document manifest: the on-disk shape of
// a design.json file, independent of the in-memory ShapeStore that mutates
// it (internal/design). Round-tripping through Document is how save/load and
// the job-history archive exchange state.

// Document is a complete design file: stock setup, shape list, tool
// assignments, and bookkeeping metadata.
type Document struct {
	FormatVersion int       `json:"formatVersion"`
	Name          string    `json:"name"`
	Metadata      Metadata  `json:"metadata,omitempty"`
	Stock         Stock     `json:"stock"`
	Shapes        []Shape   `json:"shapes"`
	Operations    []CAMOp   `json:"operations,omitempty"`
	Tools         []Tool    `json:"tools,omitempty"`
}

// Metadata is optional descriptive information for a design.
type Metadata struct {
	Author  string `json:"author,omitempty"`
	Notes   string `json:"notes,omitempty"`
	Created string `json:"created,omitempty"` // RFC3339
	Updated string `json:"updated,omitempty"` // RFC3339
}

// Stock describes the material blank the design is laid out on.
type Stock struct {
	WidthMM    float64 `json:"widthMm"`
	HeightMM   float64 `json:"heightMm"`
	ThicknessMM float64 `json:"thicknessMm"`
	Axes       int     `json:"axes"` // 2 or 3; fewer than 3 omits Z from wcs commands
}

// Shape is the serialized form of shape.Shape: a flat, JSON-friendly
// projection keyed by kind string rather than the in-memory tagged struct.
type Shape struct {
	ID          uint64       `json:"id"`
	Kind        string       `json:"kind"`
	Transform   Transform    `json:"transform"`
	ParentGroup uint64       `json:"parentGroup,omitempty"`
	ZOrder      int          `json:"zOrder"`
	Style       Style        `json:"style"`
	Rectangle   *RectShape   `json:"rectangle,omitempty"`
	Circle      *CircleShape `json:"circle,omitempty"`
	Ellipse     *EllipseShape `json:"ellipse,omitempty"`
	Line        *LineShape   `json:"line,omitempty"`
	Path        *PathShape   `json:"path,omitempty"`
	Text        *TextShape   `json:"text,omitempty"`
	Group       *GroupShape  `json:"group,omitempty"`
	Image       *ImageShape  `json:"image,omitempty"`
}

type Transform struct {
	TX          float64 `json:"tx"`
	TY          float64 `json:"ty"`
	RotationDeg float64 `json:"rotationDeg"`
	ScaleX      float64 `json:"scaleX"`
	ScaleY      float64 `json:"scaleY"`
}

type Style struct {
	Stroke      string  `json:"stroke"` // "none" | "solid"
	Fill        string  `json:"fill"`   // "none" | "solid"
	StrokeColor [4]uint8 `json:"strokeColor"`
	FillColor   [4]uint8 `json:"fillColor"`
	StrokeWidth float64 `json:"strokeWidth"`
}

type RectShape struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	CornerRadius float64 `json:"cornerRadius"`
}

type CircleShape struct {
	Radius float64 `json:"radius"`
}

type EllipseShape struct {
	RadiusX float64 `json:"radiusX"`
	RadiusY float64 `json:"radiusY"`
}

type LineShape struct {
	FromX float64 `json:"fromX"`
	FromY float64 `json:"fromY"`
	ToX   float64 `json:"toX"`
	ToY   float64 `json:"toY"`
}

// PathShape stores path commands in a compact op-coded form; see
// convert.go for how a geom.Path is encoded into it.
type PathShape struct {
	Ops    []string  `json:"ops"`
	Coords []float64 `json:"coords"`
	Closed bool      `json:"closed"`
}

type TextShape struct {
	Content  string  `json:"content"`
	FontName string  `json:"fontName"`
	SizeMM   float64 `json:"sizeMm"`
}

type GroupShape struct {
	Children []uint64 `json:"children"`
}

type ImageShape struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	PixelDataB64 string  `json:"pixelDataB64"`
	PixelW       int     `json:"pixelW"`
	PixelH       int     `json:"pixelH"`
}

// CAMOp is a persisted toolpath operation assigned to a set of shape ids.
type CAMOp struct {
	ID         uint64            `json:"id"`
	Kind       string            `json:"kind"` // outline, pocket, drill, engrave_raster, engrave_vector, gerber_isolate, tabbed_box, jigsaw, surface
	ShapeIDs   []uint64          `json:"shapeIds"`
	ToolID     string            `json:"toolId"`
	Params     map[string]float64 `json:"params,omitempty"`
	Flags      map[string]bool    `json:"flags,omitempty"`
	Enabled    bool              `json:"enabled"`
}

// Tool is a persisted cutting/marking tool preset.
type Tool struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DiameterMM   float64 `json:"diameterMm"`
	FeedMMPerMin float64 `json:"feedMmPerMin"`
	PlungeMMPerMin float64 `json:"plungeMmPerMin"`
	SpindleRPM   int     `json:"spindleRpm"`
	MaxDepthMM   float64 `json:"maxDepthMm"`
	IsLaser      bool    `json:"isLaser"`
}

// ShapeKindName maps shape.Kind to the on-disk kind string.
func ShapeKindName(k shape.Kind) string { return k.String() }

// JobRecord is one completed toolpath generation, appended to the embedded
// per-project index for history/search and optionally mirrored to the
// remote job-sync archive.
type JobRecord struct {
	ID            int64             `json:"id"`
	CreatedAt     string            `json:"createdAt"` // RFC3339
	OperationKind string            `json:"operationKind"`
	ShapeIDs      []uint64          `json:"shapeIds"`
	ToolID        string            `json:"toolId"`
	Params        map[string]float64 `json:"params,omitempty"`
	ProgramHash   string            `json:"programHash"`
	DurationSec   float64           `json:"durationEstimateSec"`
}
