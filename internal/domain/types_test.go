/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany..
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"testing"
)

func TestDocumentJSONRoundTrip(t *testing.T) {
	r := 5.0
	d := Document{
		FormatVersion: 1,
		Name:          "RoundTrip",
		Stock:         Stock{WidthMM: 300, HeightMM: 200, ThicknessMM: 6, Axes: 3},
		Shapes: []Shape{
			{
				ID:        1,
				Kind:      "rectangle",
				Transform: Transform{ScaleX: 1, ScaleY: 1},
				ZOrder:    0,
				Rectangle: &RectShape{Width: 100, Height: 50, CornerRadius: r},
			},
		},
		Tools: []Tool{
			{ID: "t1", Name: "3mm endmill", DiameterMM: 3, FeedMMPerMin: 800, SpindleRPM: 12000},
		},
	}

	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Document
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != d.Name {
		t.Fatalf("name mismatch: got %q want %q", got.Name, d.Name)
	}
	if len(got.Shapes) != 1 || got.Shapes[0].Rectangle == nil {
		t.Fatalf("unexpected shapes: %+v", got.Shapes)
	}
	if got.Shapes[0].Rectangle.Width != 100 {
		t.Fatalf("rectangle width mismatch: %+v", got.Shapes[0].Rectangle)
	}
	if len(got.Tools) != 1 || got.Tools[0].DiameterMM != 3 {
		t.Fatalf("unexpected tools: %+v", got.Tools)
	}
}

func TestShapeKindNameMatchesString(t *testing.T) {
	if ShapeKindName(0) != "rectangle" {
		t.Fatalf("expected kind 0 to be rectangle, got %q", ShapeKindName(0))
	}
}
