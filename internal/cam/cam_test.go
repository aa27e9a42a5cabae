/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cam

import (
	"testing"

	"gcodekit5/internal/geom"
)

func testTool() Tool {
	return Tool{Name: "1/8 endmill", DiameterMM: 3.175, FeedMMPerMin: 800, PlungeMMPerMin: 300, SpindleRPM: 12000}
}

func rectRing(w, h float64) geom.Polygon {
	return geom.Polygon{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

func TestOutlineProducesDeterministicProgram(t *testing.T) {
	p := OutlineParams{Params: Params{Tool: testTool(), CutDepthMM: -3, SafeZMM: 5, StepDownMM: 1.5, Axes: 3}, Side: OutlineOutside}
	prog1, err := Outline([]geom.Polygon{rectRing(20, 10)}, p)
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	prog2, _ := Outline([]geom.Polygon{rectRing(20, 10)}, p)
	if prog1.String() != prog2.String() {
		t.Fatalf("expected identical output for identical input")
	}
	if len(prog1.Lines) == 0 {
		t.Fatalf("expected nonempty program")
	}
}

func TestOutlineRapidsToSafeZBetweenPasses(t *testing.T) {
	p := OutlineParams{Params: Params{
		Tool:       Tool{Name: "1/4 endmill", DiameterMM: 6, FeedMMPerMin: 800, PlungeMMPerMin: 300},
		CutDepthMM: -3, SafeZMM: 5, StepDownMM: 1, Axes: 3,
	}, Side: OutlineOutside}
	prog, err := Outline([]geom.Polygon{rectRing(40, 40)}, p)
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}

	var rapidZRetracts, rapidToRingStart int
	for _, l := range prog.Lines {
		switch {
		case l == "G0 Z5":
			rapidZRetracts++
		case contains(l, "G0 X") && contains(l, "Z5"):
			rapidToRingStart++
		}
	}
	// 3 passes means 2 retract-to-safe-Z transitions between them plus one
	// final retract after the last pass: the loop must never fall straight
	// from one pass's floor into the next pass's plunge.
	if rapidZRetracts != 3 {
		t.Fatalf("expected 3 rapid-to-safe-Z retracts (2 between passes + 1 final), got %d in %v", rapidZRetracts, prog.Lines)
	}
	// Each of the 3 passes re-rapids over the ring start at safe Z before
	// plunging, not just the first.
	if rapidToRingStart != 3 {
		t.Fatalf("expected a rapid back to the ring start before each of the 3 passes, got %d in %v", rapidToRingStart, prog.Lines)
	}
}

func TestOutlineRejectsEmptyInput(t *testing.T) {
	p := OutlineParams{Params: Params{Tool: testTool(), CutDepthMM: -3, SafeZMM: 5}}
	if _, err := Outline(nil, p); err == nil {
		t.Fatalf("expected error on empty ring list")
	}
}

func TestPocketOffsetSpiral(t *testing.T) {
	p := PocketParams{Params: Params{Tool: testTool(), CutDepthMM: -2, SafeZMM: 5, StepOverPct: 40, Axes: 3}, Strategy: OffsetSpiral}
	prog, err := Pocket(rectRing(30, 30), p)
	if err != nil {
		t.Fatalf("Pocket: %v", err)
	}
	if len(prog.Lines) == 0 {
		t.Fatalf("expected nonempty program")
	}
}

func TestPocketZigzag(t *testing.T) {
	p := PocketParams{Params: Params{Tool: testTool(), CutDepthMM: -2, SafeZMM: 5, StepOverPct: 50, Axes: 3}, Strategy: Zigzag}
	prog, err := Pocket(rectRing(20, 20), p)
	if err != nil {
		t.Fatalf("Pocket zigzag: %v", err)
	}
	if len(prog.Lines) == 0 {
		t.Fatalf("expected nonempty zigzag program")
	}
}

func TestDrillEmitsOneCyclePerPoint(t *testing.T) {
	p := DrillParams{Params: Params{Tool: testTool(), CutDepthMM: -5, SafeZMM: 5, Axes: 3}, DwellSeconds: 0.5}
	prog, err := Drill([]geom.Pt{{X: 0, Y: 0}, {X: 10, Y: 0}}, p)
	if err != nil {
		t.Fatalf("Drill: %v", err)
	}
	dwellCount := 0
	for _, l := range prog.Lines {
		if len(l) >= 2 && l[:2] == "G4" {
			dwellCount++
		}
	}
	if dwellCount != 2 {
		t.Fatalf("expected 2 dwells, got %d", dwellCount)
	}
}

func TestOutlineAxisAwarenessOmitsZOnTwoAxisWCS(t *testing.T) {
	w := newWriter(2)
	w.wcsOffset(0, 1, 2, 3)
	if len(w.lines) != 1 {
		t.Fatalf("expected 1 line")
	}
	if contains(w.lines[0], "Z") {
		t.Fatalf("expected no Z word on a 2-axis G10 offset, got %q", w.lines[0])
	}
}

func TestWCSOffsetIncludesZOnThreeAxis(t *testing.T) {
	w := newWriter(3)
	w.wcsOffset(0, 1, 2, 3)
	if !contains(w.lines[0], "Z") {
		t.Fatalf("expected Z word on a 3-axis G10 offset, got %q", w.lines[0])
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestTabbedBoxFingerCountIsOdd(t *testing.T) {
	panels, err := TabbedBox(BoxParams{Params: Params{Tool: testTool(), CutDepthMM: -1, SafeZMM: 5}, WidthMM: 100, DepthMM: 80, HeightMM: 40, MaterialThicknessMM: 6})
	if err != nil {
		t.Fatalf("TabbedBox: %v", err)
	}
	if len(panels) != 6 {
		t.Fatalf("expected 6 panels, got %d", len(panels))
	}
	for _, n := range []int{fingerCount(100, 6), fingerCount(80, 6), fingerCount(40, 6)} {
		if n%2 != 1 {
			t.Fatalf("expected an odd finger count, got %d", n)
		}
	}
}

func TestJigsawPuzzleEdgesMirrorBetweenNeighbors(t *testing.T) {
	pieces, err := JigsawPuzzle(JigsawParams{WidthMM: 100, HeightMM: 100, Columns: 2, Rows: 1, TabDepthMM: 5, Seed: 42})
	if err != nil {
		t.Fatalf("JigsawPuzzle: %v", err)
	}
	if len(pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(pieces))
	}
	// The shared edge is the right edge of piece 0 and the left edge of
	// piece 1; its single bump point must coincide on both outlines.
	if pieces[0].Outline[2] != pieces[1].Outline[4] {
		t.Fatalf("expected shared-edge bump to match, got %+v and %+v", pieces[0].Outline[2], pieces[1].Outline[4])
	}
}

func TestJigsawPuzzleDeterministic(t *testing.T) {
	p := JigsawParams{WidthMM: 60, HeightMM: 60, Columns: 3, Rows: 3, TabDepthMM: 4, Seed: 7}
	a, _ := JigsawPuzzle(p)
	b, _ := JigsawPuzzle(p)
	if len(a) != len(b) {
		t.Fatalf("expected same piece count across runs")
	}
	for i := range a {
		if len(a[i].Outline) != len(b[i].Outline) {
			t.Fatalf("expected identical outlines for identical seed")
		}
		for j := range a[i].Outline {
			if a[i].Outline[j] != b[i].Outline[j] {
				t.Fatalf("expected identical outlines for identical seed, piece %d point %d differs", i, j)
			}
		}
	}
}

func TestSurfaceSpoilboardCoversWidth(t *testing.T) {
	prog, err := SurfaceSpoilboard(SurfacingParams{Params: Params{Tool: testTool(), CutDepthMM: -0.2, SafeZMM: 5, StepOverPct: 70, Axes: 3}, WidthMM: 200, HeightMM: 150})
	if err != nil {
		t.Fatalf("SurfaceSpoilboard: %v", err)
	}
	if len(prog.Lines) == 0 {
		t.Fatalf("expected nonempty surfacing program")
	}
}

func TestDrillGridPitch(t *testing.T) {
	pts, err := DrillGrid(GridParams{WidthMM: 20, HeightMM: 10, PitchMM: 10})
	if err != nil {
		t.Fatalf("DrillGrid: %v", err)
	}
	if len(pts) != 6 {
		t.Fatalf("expected a 3x2 grid (6 points), got %d", len(pts))
	}
}
