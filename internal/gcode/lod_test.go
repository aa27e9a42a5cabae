/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gcode

import (
	"testing"

	"gcodekit5/internal/geom"
)

func TestBuildRenderPlanCullsOffscreenSegments(t *testing.T) {
	cmds, _ := Interpret([]string{
		"G1 X5 Y5 F300",
		"X1000 Y1000",
	})
	var c RenderCache
	c.Rebuild(cmds, false, 0, 4)

	plan := BuildRenderPlan(&c, geom.Rect{X: 0, Y: 0, W: 20, H: 20}, 1.0)
	if plan.Tier != TierFull {
		t.Fatalf("expected TierFull at zoom 1.0, got %v", plan.Tier)
	}
	total := 0
	for _, b := range plan.Buckets {
		total += len(b)
	}
	if total != 1 {
		t.Fatalf("expected 1 visible segment after culling, got %d", total)
	}
}

func TestBuildRenderPlanMinimalTierOmitsBuckets(t *testing.T) {
	cmds, _ := Interpret([]string{"G1 X5 Y5 F300"})
	var c RenderCache
	c.Rebuild(cmds, false, 0, 4)

	plan := BuildRenderPlan(&c, geom.Rect{X: 0, Y: 0, W: 20, H: 20}, 0.01)
	if plan.Tier != TierMinimal {
		t.Fatalf("expected TierMinimal, got %v", plan.Tier)
	}
	if plan.Buckets != nil {
		t.Fatalf("expected no buckets at minimal tier")
	}
}

func TestSetCurrentPositionDoesNotTouchBuckets(t *testing.T) {
	plan := RenderPlan{Buckets: [][]Segment{{{}}}}
	updated := SetCurrentPosition(plan, geom.Pt{X: 1, Y: 2})
	if !updated.HasToolMark || updated.ToolMarker.X != 1 {
		t.Fatalf("expected tool marker set, got %+v", updated)
	}
	if len(updated.Buckets) != 1 || len(updated.Buckets[0]) != 1 {
		t.Fatalf("expected buckets untouched, got %+v", updated.Buckets)
	}
}
