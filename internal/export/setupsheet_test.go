/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"math"
	"testing"

	"gcodekit5/internal/domain"
)

func sampleSetupDocument() domain.Document {
	return domain.Document{
		FormatVersion: 1,
		Name:          "Bracket",
		Stock:         domain.Stock{WidthMM: 200, HeightMM: 100, ThicknessMM: 12, Axes: 3},
		Shapes: []domain.Shape{
			{
				ID:        1,
				Kind:      "rectangle",
				Transform: domain.Transform{TX: 10, TY: 10, ScaleX: 1, ScaleY: 1},
				Rectangle: &domain.RectShape{Width: 40, Height: 20},
			},
			{
				ID:        2,
				Kind:      "circle",
				Transform: domain.Transform{TX: 100, TY: 50, ScaleX: 1, ScaleY: 1},
				Circle:    &domain.CircleShape{Radius: 5},
			},
		},
		Tools: []domain.Tool{
			{ID: "t1", Name: "3.175mm two flute endmill", DiameterMM: 3.175, FeedMMPerMin: 800, PlungeMMPerMin: 200, SpindleRPM: 12000},
		},
		Operations: []domain.CAMOp{
			{ID: 2001, Kind: "outline", ShapeIDs: []uint64{1}, ToolID: "t1", Enabled: true},
			{ID: 2002, Kind: "drill", ShapeIDs: []uint64{2}, ToolID: "t1", Enabled: true},
		},
	}
}

func TestShapeOutlineRectangleAppliesTransform(t *testing.T) {
	s := domain.Shape{
		Transform: domain.Transform{TX: 10, TY: 20, ScaleX: 1, ScaleY: 1},
		Rectangle: &domain.RectShape{Width: 40, Height: 20},
	}
	rings := shapeOutline(s)
	if len(rings) != 1 || len(rings[0]) != 4 {
		t.Fatalf("expected one 4-point ring, got %+v", rings)
	}
	want := point{10, 20}
	if rings[0][0] != want {
		t.Fatalf("first corner mismatch: got %+v want %+v", rings[0][0], want)
	}
	last := rings[0][2]
	if math.Abs(last.X-50) > 1e-9 || math.Abs(last.Y-40) > 1e-9 {
		t.Fatalf("opposite corner mismatch: got %+v", last)
	}
}

func TestShapeOutlineGroupHasNoGeometry(t *testing.T) {
	s := domain.Shape{Kind: "group", Group: &domain.GroupShape{Children: []uint64{1, 2}}}
	if rings := shapeOutline(s); rings != nil {
		t.Fatalf("expected nil outline for group shape, got %+v", rings)
	}
}

func TestOpCentroidAveragesShapeVertices(t *testing.T) {
	d := sampleSetupDocument()
	c, ok := opCentroid(d, d.Operations[1])
	if !ok {
		t.Fatalf("expected centroid for drill op")
	}
	if math.Abs(c.X-100) > 1 || math.Abs(c.Y-50) > 1 {
		t.Fatalf("centroid far from circle center: %+v", c)
	}
}

func TestToolTableRowMentionsToolFields(t *testing.T) {
	row := toolTableRow(domain.Tool{ID: "t1", Name: "endmill", DiameterMM: 3.175, SpindleRPM: 12000})
	if row == "" {
		t.Fatalf("expected non-empty row")
	}
}
