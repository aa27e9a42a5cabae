/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textpath

import "testing"

func TestAdvanceIsPositiveForVisibleGlyph(t *testing.T) {
	adv, err := Advance('M', 10)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if adv <= 0 {
		t.Fatalf("expected positive advance for 'M' at 10mm, got %f", adv)
	}
}

func TestAdvanceScalesWithSize(t *testing.T) {
	small, err := Advance('M', 5)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	large, err := Advance('M', 10)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if large <= small*1.5 {
		t.Fatalf("expected advance to roughly double with size, got small=%f large=%f", small, large)
	}
}

func TestTextPathNonEmptyForVisibleContent(t *testing.T) {
	p, width, err := TextPath("Hi", 10)
	if err != nil {
		t.Fatalf("TextPath: %v", err)
	}
	if p.IsEmpty() {
		t.Fatalf("expected a non-empty glyph path for visible text")
	}
	if width <= 0 {
		t.Fatalf("expected positive total advance width, got %f", width)
	}
}

func TestBoundsGrowsWithLongerString(t *testing.T) {
	short, err := Bounds("I", 10, 0.05)
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	long, err := Bounds("Impact", 10, 0.05)
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	if long.W <= short.W {
		t.Fatalf("expected a longer string to produce wider bounds: short=%+v long=%+v", short, long)
	}
}

func TestBoundsNeverNegativeSize(t *testing.T) {
	b, err := Bounds("x", 10, 0.05)
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	if b.W <= 0 || b.H <= 0 {
		t.Fatalf("expected strictly positive bounds for a visible glyph, got %+v", b)
	}
}

func TestLineHeightPositive(t *testing.T) {
	h, err := LineHeightMM(10)
	if err != nil {
		t.Fatalf("LineHeightMM: %v", err)
	}
	if h <= 0 {
		t.Fatalf("expected positive line height, got %f", h)
	}
}
