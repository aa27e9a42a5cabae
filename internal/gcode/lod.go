/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gcode

import "gcodekit5/internal/geom"

// LODTier names a zoom band; a renderer draws every segment at a visible
// tier but may simplify (skip rapids, thin hairline detail) below TierFull.
type LODTier int

const (
	TierFull    LODTier = iota // zoom >= 1: draw everything, including rapids
	TierNormal                 // 0.2 <= zoom < 1: draw cuts only, no rapids
	TierCoarse                 // 0.05 <= zoom < 0.2: draw cuts only, batched per bucket
	TierMinimal                // zoom < 0.05: draw cutting bounds outline only
)

func tierForZoom(zoom float64) LODTier {
	switch {
	case zoom >= 1:
		return TierFull
	case zoom >= 0.2:
		return TierNormal
	case zoom >= 0.05:
		return TierCoarse
	default:
		return TierMinimal
	}
}

// cullMarginFrac expands the visible rect before culling so segments just
// outside the viewport don't pop in/out at the edge during a pan.
const cullMarginFrac = 0.10

// RenderPlan is what a renderer needs for one frame: the LOD tier in
// effect, the buckets to draw (already culled to the visible rect), and
// whether rapids should be included at all.
type RenderPlan struct {
	Tier        LODTier
	Buckets     [][]Segment
	DrawRapids  bool
	ToolMarker  geom.Pt
	HasToolMark bool
}

// BuildRenderPlan culls c's buckets to visible (expanded by cullMarginFrac)
// and selects what to draw for the given zoom level. At TierMinimal, buckets
// are omitted entirely; callers should instead draw c.Metrics.CuttingBounds
// as a single outline rect.
func BuildRenderPlan(c *RenderCache, visible geom.Rect, zoom float64) RenderPlan {
	tier := tierForZoom(zoom)
	plan := RenderPlan{Tier: tier, DrawRapids: tier == TierFull}

	if tier == TierMinimal {
		return plan
	}

	margin := geom.Rect{
		X: visible.X - visible.W*cullMarginFrac,
		Y: visible.Y - visible.H*cullMarginFrac,
		W: visible.W * (1 + 2*cullMarginFrac),
		H: visible.H * (1 + 2*cullMarginFrac),
	}

	plan.Buckets = make([][]Segment, len(c.Buckets))
	for i, bucket := range c.Buckets {
		var kept []Segment
		for _, seg := range bucket {
			if seg.Rapid && !plan.DrawRapids {
				continue
			}
			if !segmentVisible(seg, margin) {
				continue
			}
			kept = append(kept, seg)
		}
		plan.Buckets[i] = kept
	}
	return plan
}

func segmentVisible(seg Segment, view geom.Rect) bool {
	r := segmentRect(seg.From, seg.To)
	return r.Intersects(view)
}

// SetCurrentPosition produces a fast-path update for the live tool marker
// during a run or simulation: this does not touch RenderCache or trigger a
// rebuild, since the toolpath geometry hasn't changed, only where the tool
// currently is.
func SetCurrentPosition(plan RenderPlan, pos geom.Pt) RenderPlan {
	plan.ToolMarker = pos
	plan.HasToolMark = true
	return plan
}
