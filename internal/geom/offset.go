/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// Offset grows (distance > 0) or shrinks (distance < 0) a closed ring by
// distance mm, preserving orientation. A concave ring's naive per-vertex
// miter offset can self-intersect before its area or bounds shrink to zero;
// Offset detects that and splits the result into its simple sub-loops,
// discarding whichever lobe turns out to be the self-overlap artifact
// rather than real interior geometry. A fully-collapsed result is reported
// as an empty slice (the caller's geometry error, not a kernel panic).
// Positive distance is outward relative to the ring's own (CCW)
// orientation.
func Offset(ring Polygon, distance float64) []Polygon {
	if len(ring) < 3 {
		return nil
	}
	if !ring.IsCCW() {
		ring = ring.Reversed()
	}
	if distance == 0 {
		return []Polygon{append(Polygon(nil), ring...)}
	}

	n := len(ring)
	offsetPts := make(Polygon, 0, n)
	for i := 0; i < n; i++ {
		prev := ring[(i-1+n)%n]
		cur := ring[i]
		next := ring[(i+1)%n]

		n1 := outwardNormal(prev, cur)
		n2 := outwardNormal(cur, next)

		// Miter join at the bisector; fall back to a simple averaged normal
		// when the miter would run away (near-antiparallel edges).
		mx, my := n1.X+n2.X, n1.Y+n2.Y
		mlen := math.Hypot(mx, my)
		if mlen < 1e-9 {
			offsetPts = append(offsetPts, Pt{
				X: cur.X + n1.X*distance,
				Y: cur.Y + n1.Y*distance,
			})
			continue
		}
		mx, my = mx/mlen, my/mlen
		cosHalf := mx*n1.X + my*n1.Y
		if cosHalf < 0.2 {
			cosHalf = 0.2 // cap miter length for sharp reflex corners
		}
		miterLen := distance / cosHalf
		offsetPts = append(offsetPts, Pt{X: cur.X + mx*miterLen, Y: cur.Y + my*miterLen})
	}

	self := removeSelfCrossings(offsetPts)
	split := len(self) > 1
	var out []Polygon
	for _, r := range self {
		if len(r) < 3 || math.Abs(r.Area()) <= Tolerance*Tolerance {
			continue
		}
		switch {
		case split && !r.IsCCW():
			// A self-intersection split can produce a sub-loop winding
			// opposite to the source ring; that lobe is the self-overlap
			// artifact of the miter offset, not real interior geometry, so
			// it is dropped rather than returned as a machinable boundary.
			continue
		case !split && distance > 0 && !r.IsCCW():
			r = r.Reversed()
		}
		out = append(out, r)
	}
	return out
}

// outwardNormal returns the unit normal to edge a->b pointing away from the
// ring's interior, assuming CCW winding (interior is to the left of travel).
func outwardNormal(a, b Pt) Pt {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l < 1e-12 {
		return Pt{}
	}
	// left-hand perpendicular of travel direction points to interior for
	// CCW rings, so the outward normal is the right-hand perpendicular.
	return Pt{X: dy / l, Y: -dx / l}
}

// maxSelfIntersectionSplits bounds the recursive split below; a ring that
// still self-intersects after this many splits is abandoned rather than
// looped on forever.
const maxSelfIntersectionSplits = 64

// removeSelfCrossings repairs a ring that a naive per-vertex miter offset
// has folded over on itself: for any concave corner, an inward offset can
// push two non-adjacent edges past each other before the ring's area or
// bounds shrink to zero. It finds the first crossing between non-adjacent
// edges and splits the ring into two simple loops at that point, recursing
// on each half until no crossings remain.
func removeSelfCrossings(r Polygon) []Polygon {
	if len(r) < 3 {
		return nil
	}
	return splitSelfIntersections(r, 0)
}

func splitSelfIntersections(r Polygon, depth int) []Polygon {
	n := len(r)
	if n < 3 {
		return nil
	}
	if depth > maxSelfIntersectionSplits {
		return nil
	}
	for i := 0; i < n; i++ {
		a0, a1 := r[i], r[(i+1)%n]
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent wrap-around edge, not a real self-crossing
			}
			b0, b1 := r[j], r[(j+1)%n]
			ta, _, ok := segmentIntersect(a0, a1, b0, b1)
			if !ok {
				continue
			}
			p := Pt{X: a0.X + ta*(a1.X-a0.X), Y: a0.Y + ta*(a1.Y-a0.Y)}

			var loopA Polygon
			loopA = append(loopA, p)
			loopA = append(loopA, r[i+1:j+1]...)

			var loopB Polygon
			loopB = append(loopB, p)
			loopB = append(loopB, r[j+1:]...)
			loopB = append(loopB, r[:i+1]...)

			return append(splitSelfIntersections(loopA, depth+1), splitSelfIntersections(loopB, depth+1)...)
		}
	}
	return []Polygon{append(Polygon(nil), r...)}
}
