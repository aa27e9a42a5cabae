/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gcode

import "testing"

func TestRenderCacheRebuildSkipsWhenSignatureUnchanged(t *testing.T) {
	cmds, _ := Interpret([]string{"G1 X10 Y10 F300"})
	var c RenderCache
	c.Rebuild(cmds, false, 0, 4)
	first := c.Buckets
	c.Rebuild(cmds, false, 0, 4)
	if &c.Buckets[0] != &first[0] {
		t.Fatalf("expected Rebuild to be a no-op when signature is unchanged")
	}
}

func TestRenderCacheBucketsByIntensity(t *testing.T) {
	cmds, _ := Interpret([]string{
		"M3 S5000",
		"G1 X10 Y0 F300",
		"M3 S10000",
		"X20 Y0",
	})
	var c RenderCache
	c.Rebuild(cmds, true, 10000, 10)
	if c.TotalSegments() != 2 {
		t.Fatalf("expected 2 segments total, got %d", c.TotalSegments())
	}
	idxs := c.NonEmptyBucketIndices()
	if len(idxs) < 1 {
		t.Fatalf("expected at least one non-empty bucket")
	}
}

func TestRenderCacheRebuildsOnCommandCountChange(t *testing.T) {
	var c RenderCache
	cmds1, _ := Interpret([]string{"G1 X1 Y1 F100"})
	c.Rebuild(cmds1, false, 0, 4)
	sig1 := c.signature

	cmds2, _ := Interpret([]string{"G1 X1 Y1 F100", "X2 Y2"})
	c.Rebuild(cmds2, false, 0, 4)
	if c.signature == sig1 {
		t.Fatalf("expected signature to change when command count changes")
	}
	if c.TotalSegments() != 2 {
		t.Fatalf("expected 2 segments after rebuild, got %d", c.TotalSegments())
	}
}
