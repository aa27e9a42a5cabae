/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gcode

import (
	"fmt"
	"hash/fnv"
	"sort"

	"gcodekit5/internal/geom"
)

// Segment is one renderable stretch of toolpath: a straight line or a
// tessellated arc, tagged with the relative cut intensity (spindle speed or
// laser power, normalized 0..1) that decided which bucket it landed in.
type Segment struct {
	From, To  geom.Pt
	Rapid     bool
	Intensity float64
}

// defaultBucketCount buckets segments by intensity so a renderer can draw
// each bucket with one color/style instead of per-segment state changes.
const defaultBucketCount = 20

// RenderCache holds the flattened, bucketed segment list derived from a
// command stream plus its metrics, invalidated only when the inputs that
// actually affect rendering change: command count, whether intensity-based
// coloring is active, and the max S-word value observed (which rescales
// every bucket boundary).
type RenderCache struct {
	signature   string
	Buckets     [][]Segment
	Metrics     Metrics
	BucketCount int
}

// signatureOf derives a cheap fingerprint of the render-affecting inputs
// without hashing every coordinate: command count changes on any edit,
// intensity mode and max S only change when the laser/spindle model changes.
func signatureOf(cmds []GCommand, intensityMode bool, maxS float64, bucketCount int) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%v|%.6f|%d", len(cmds), intensityMode, maxS, bucketCount)
	return fmt.Sprintf("%x", h.Sum64())
}

// Rebuild recomputes the cache only if the signature of (cmds, intensityMode,
// maxS, bucketCount) differs from what's already cached; otherwise it's a
// no-op and the previous buckets/metrics are left untouched.
func (c *RenderCache) Rebuild(cmds []GCommand, intensityMode bool, maxS float64, bucketCount int) {
	if bucketCount <= 0 {
		bucketCount = defaultBucketCount
	}
	sig := signatureOf(cmds, intensityMode, maxS, bucketCount)
	if sig == c.signature && c.Buckets != nil {
		return
	}

	c.signature = sig
	c.BucketCount = bucketCount
	c.Metrics = ComputeMetrics(cmds)
	c.Buckets = make([][]Segment, bucketCount)

	for _, cmd := range cmds {
		switch cmd.Kind {
		case CmdMove, CmdArc:
			seg := Segment{From: cmd.Start, To: cmd.End, Rapid: cmd.Kind == CmdMove && cmd.Move == MoveRapid}
			if intensityMode && maxS > 0 {
				seg.Intensity = clamp01(cmd.Spindle / maxS)
			}
			idx := bucketIndex(seg.Intensity, bucketCount)
			c.Buckets[idx] = append(c.Buckets[idx], seg)
		}
	}
}

func bucketIndex(intensity float64, count int) int {
	idx := int(intensity * float64(count))
	if idx >= count {
		idx = count - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// TotalSegments returns the sum of all bucket lengths, for diagnostics.
func (c *RenderCache) TotalSegments() int {
	n := 0
	for _, b := range c.Buckets {
		n += len(b)
	}
	return n
}

// NonEmptyBucketIndices returns the indices of buckets holding at least one
// segment, ascending, so a renderer can skip empty style changes.
func (c *RenderCache) NonEmptyBucketIndices() []int {
	var idxs []int
	for i, b := range c.Buckets {
		if len(b) > 0 {
			idxs = append(idxs, i)
		}
	}
	sort.Ints(idxs)
	return idxs
}
