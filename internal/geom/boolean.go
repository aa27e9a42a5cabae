/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "math"

// BoolOp selects a polygon boolean operator.
type BoolOp int

const (
	OpUnion BoolOp = iota
	OpIntersection
	OpDifference
)

// Boolean evaluates op(subject, clip) and returns the resulting region set.
// Only the outer rings of subject/clip participate in the Greiner-Hormann
// clip itself (pre-existing holes on either operand are not re-clipped), but
// the common "cut a hole in a plate" case — clip fully nested inside subject
// with no boundary crossings — is detected directly and returned as a single
// Region carrying the clip as an interior hole ring, so OpDifference no
// longer collapses to an empty result whenever the cut doesn't touch the
// plate's edge. Degenerate inputs (zero-area or too-short rings) are
// repaired by dropping them; a boolean that cannot produce a valid result
// returns an empty or unmodified-subject slice rather than an error.
func Boolean(op BoolOp, subject, clip Region) []Region {
	s := repairRing(subject.Outer)
	c := repairRing(clip.Outer)

	if len(s) == 0 && len(c) == 0 {
		return nil
	}
	if len(c) == 0 {
		if op == OpIntersection {
			return nil
		}
		return wrap(s)
	}
	if len(s) == 0 {
		if op == OpUnion {
			return wrap(c)
		}
		return nil
	}

	if !s.Bounds().Intersects(c.Bounds()) {
		switch op {
		case OpUnion:
			return append(wrap(s), wrap(c)...)
		case OpIntersection:
			return nil
		case OpDifference:
			return wrap(s)
		}
	}

	if !ringsCross(s, c) {
		return nestedRegions(op, s, c)
	}

	switch op {
	case OpIntersection:
		return regionsFromRings(runClip(s, c))
	case OpDifference:
		return regionsFromRings(runClip(s, c.Reversed()))
	case OpUnion:
		rings := runClip(s.Reversed(), c.Reversed())
		if len(rings) == 0 {
			// Disjoint-after-marking fallback: treat as two separate shells.
			return append(wrap(s), wrap(c)...)
		}
		out := make([]Polygon, len(rings))
		for i, r := range rings {
			out[i] = r.Reversed()
		}
		return regionsFromRings(out)
	}
	return nil
}

// ringsCross reports whether any edge of a crosses any edge of b at a point
// other than a shared endpoint.
func ringsCross(a, b Polygon) bool {
	na, nb := len(a), len(b)
	for i := 0; i < na; i++ {
		a0, a1 := a[i], a[(i+1)%na]
		for j := 0; j < nb; j++ {
			b0, b1 := b[j], b[(j+1)%nb]
			if _, _, ok := segmentIntersect(a0, a1, b0, b1); ok {
				return true
			}
		}
	}
	return false
}

// nestedRegions handles subject/clip rings that never cross: either one
// ring fully contains the other, or the two shapes are disjoint and their
// bounding boxes merely happen to overlap. A single point-in-polygon probe
// per ring is enough to tell them apart since non-crossing rings can't
// straddle each other's boundary.
func nestedRegions(op BoolOp, s, c Polygon) []Region {
	cInS := pointInPolygon(c[0], s)
	sInC := pointInPolygon(s[0], c)
	switch {
	case cInS:
		switch op {
		case OpUnion:
			return wrap(s)
		case OpIntersection:
			return wrap(c)
		case OpDifference:
			return []Region{{Outer: s, Holes: []Polygon{c.Reversed()}}}
		}
	case sInC:
		switch op {
		case OpUnion:
			return wrap(c)
		case OpIntersection:
			return wrap(s)
		case OpDifference:
			return nil
		}
	default:
		switch op {
		case OpUnion:
			return append(wrap(s), wrap(c)...)
		case OpIntersection:
			return nil
		case OpDifference:
			return wrap(s)
		}
	}
	return nil
}

func wrap(r Polygon) []Region {
	if len(r) == 0 {
		return nil
	}
	return []Region{{Outer: r}}
}

func regionsFromRings(rings []Polygon) []Region {
	out := make([]Region, 0, len(rings))
	for _, r := range rings {
		if len(r) >= 3 {
			out = append(out, Region{Outer: r})
		}
	}
	return out
}

// repairRing drops degenerate rings and normalizes to CCW orientation, the
// convention the rest of this file assumes.
func repairRing(r Polygon) Polygon {
	if len(r) < 3 || math.Abs(r.Area()) < Tolerance*Tolerance {
		return nil
	}
	if !r.IsCCW() {
		return r.Reversed()
	}
	return append(Polygon(nil), r...)
}

// clipVtx is a Greiner-Hormann clip vertex threaded through a ring's slice
// by implicit index order (next = (i+1)%n); intersection vertices carry a
// cross-link into the other ring's slice.
type clipVtx struct {
	p        Pt
	isect    bool
	entry    bool
	neighbor int
	visited  bool
}

// runClip traces the boundary of subject ∩ clip for two simple CCW rings,
// using the classic entry/exit marking plus alternating-list traversal.
// Union and difference are obtained by the orientation tricks in Boolean.
func runClip(subject, clip Polygon) []Polygon {
	sv, cv := buildClipLists(subject, clip)
	if len(sv) == 0 || len(cv) == 0 {
		return nil
	}
	markEntries(sv, clip)
	markEntries(cv, subject)

	var out []Polygon
	for i := range sv {
		if !sv[i].isect || sv[i].visited {
			continue
		}
		ring := traceFromEntry(sv, cv, i)
		if len(ring) >= 3 {
			out = append(out, ring)
		}
	}
	return out
}

func traceFromEntry(sv, cv []clipVtx, start int) Polygon {
	var poly Polygon
	cur, other := sv, cv
	idx := start
	for iter, maxIter := 0, (len(sv)+len(cv))*2+4; iter < maxIter; iter++ {
		if cur[idx].visited {
			break
		}
		// Walk forward from an entry vertex, backward from an exit vertex,
		// collecting points until the next intersection vertex is reached.
		forward := cur[idx].entry
		for {
			cur[idx].visited = true
			poly = append(poly, cur[idx].p)
			var next int
			if forward {
				next = (idx + 1) % len(cur)
			} else {
				next = (idx - 1 + len(cur)) % len(cur)
			}
			idx = next
			if cur[idx].isect {
				break
			}
		}
		if cur[idx].visited {
			break
		}
		nb := cur[idx].neighbor
		cur, other = other, cur
		idx = nb
		_ = other
	}
	return poly
}

func buildClipLists(subject, clip Polygon) ([]clipVtx, []clipVtx) {
	sv := make([]clipVtx, len(subject))
	for i, p := range subject {
		sv[i] = clipVtx{p: p}
	}
	cv := make([]clipVtx, len(clip))
	for i, p := range clip {
		cv[i] = clipVtx{p: p}
	}

	type hit struct {
		sEdge, cEdge   int
		sAlpha, cAlpha float64
		p              Pt
	}
	var hits []hit
	ns, nc := len(subject), len(clip)
	for i := 0; i < ns; i++ {
		a0, a1 := subject[i], subject[(i+1)%ns]
		for j := 0; j < nc; j++ {
			b0, b1 := clip[j], clip[(j+1)%nc]
			if ta, tb, ok := segmentIntersect(a0, a1, b0, b1); ok {
				hits = append(hits, hit{i, j, ta, tb, Pt{
					X: a0.X + ta*(a1.X-a0.X),
					Y: a0.Y + ta*(a1.Y-a0.Y),
				}})
			}
		}
	}
	if len(hits) == 0 {
		return sv, cv
	}

	insert := func(base []clipVtx, n int, edgeOf func(hit) int, alphaOf func(hit) float64) []clipVtx {
		byEdge := make(map[int][]hit)
		for _, h := range hits {
			byEdge[edgeOf(h)] = append(byEdge[edgeOf(h)], h)
		}
		out := make([]clipVtx, 0, len(base)+len(hits))
		for i := 0; i < n; i++ {
			out = append(out, base[i])
			list := byEdge[i]
			for a := 1; a < len(list); a++ {
				v := list[a]
				b := a - 1
				for b >= 0 && alphaOf(list[b]) > alphaOf(v) {
					list[b+1] = list[b]
					b--
				}
				list[b+1] = v
			}
			for _, h := range list {
				out = append(out, clipVtx{p: h.p, isect: true})
			}
		}
		return out
	}

	sOut := insert(sv, ns, func(h hit) int { return h.sEdge }, func(h hit) float64 { return h.sAlpha })
	cOut := insert(cv, nc, func(h hit) int { return h.cEdge }, func(h hit) float64 { return h.cAlpha })

	linked := make([]bool, len(cOut))
	for i := range sOut {
		if !sOut[i].isect {
			continue
		}
		for j := range cOut {
			if cOut[j].isect && !linked[j] && sOut[i].p.AlmostEqual(cOut[j].p) {
				sOut[i].neighbor = j
				cOut[j].neighbor = i
				linked[j] = true
				break
			}
		}
	}
	return sOut, cOut
}

// markEntries sets the entry/exit flag of each intersection vertex in ring
// by toggling from the initial inside/outside state of ring's first vertex
// relative to other.
func markEntries(ring []clipVtx, other Polygon) {
	status := !pointInPolygon(ring[0].p, other)
	for i := range ring {
		if ring[i].isect {
			ring[i].entry = status
			status = !status
		}
	}
}

// segmentIntersect returns the parametric positions (0,1) along each open
// segment where they cross; pure endpoint touches are not reported.
func segmentIntersect(a0, a1, b0, b1 Pt) (ta, tb float64, ok bool) {
	d1x, d1y := a1.X-a0.X, a1.Y-a0.Y
	d2x, d2y := b1.X-b0.X, b1.Y-b0.Y
	denom := d1x*d2y - d1y*d2x
	if math.Abs(denom) < 1e-12 {
		return 0, 0, false
	}
	ex, ey := b0.X-a0.X, b0.Y-a0.Y
	t := (ex*d2y - ey*d2x) / denom
	u := (ex*d1y - ey*d1x) / denom
	if t <= 1e-9 || t >= 1-1e-9 || u <= 1e-9 || u >= 1-1e-9 {
		return 0, 0, false
	}
	return t, u, true
}

func pointInPolygon(p Pt, ring Polygon) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			xint := (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if p.X < xint {
				inside = !inside
			}
		}
	}
	return inside
}
