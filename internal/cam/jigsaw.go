/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cam

import (
	"gcodekit5/internal/camerr"
	"gcodekit5/internal/geom"
)

// JigsawParams sizes a grid of interlocking puzzle pieces.
type JigsawParams struct {
	Params
	WidthMM, HeightMM float64
	Columns, Rows     int
	TabDepthMM        float64
	Seed              int64 // caller-supplied, so output stays deterministic
}

// Piece is one jigsaw cell's cut outline, traced clockwise from its
// top-left corner.
type Piece struct {
	Col, Row int
	Outline  geom.Polygon
}

// edgeDir is the tab/blank orientation of one shared edge, randomized per
// interior edge and mirrored between the two pieces sharing it so tabs on
// one piece are exact inverses (blanks) on the neighbor.
type edgeDir int

const (
	edgeFlat edgeDir = iota
	edgeTabOut
	edgeTabIn
)

// JigsawPuzzle tiles a WidthMM x HeightMM rectangle into Columns x Rows
// pieces. Every interior edge gets a randomized tab/blank assignment
// (deterministic given Seed); boundary edges stay flat.
func JigsawPuzzle(p JigsawParams) ([]Piece, error) {
	if p.Columns < 1 || p.Rows < 1 || p.WidthMM <= 0 || p.HeightMM <= 0 {
		return nil, camerr.New(camerr.KindValidation, "JigsawPuzzle", camerr.ErrInvalidGeometry)
	}

	cellW := p.WidthMM / float64(p.Columns)
	cellH := p.HeightMM / float64(p.Rows)
	rng := newDeterministicRNG(p.Seed)

	// horizontal[row][col] is the vertical edge between (col,row) and
	// (col+1,row); vertical[row][col] is the horizontal edge between
	// (col,row) and (col,row+1).
	horizontal := make([][]edgeDir, p.Rows)
	vertical := make([][]edgeDir, p.Rows)
	for r := 0; r < p.Rows; r++ {
		horizontal[r] = make([]edgeDir, p.Columns-1)
		for c := range horizontal[r] {
			horizontal[r][c] = randomTab(rng)
		}
		if r < p.Rows-1 {
			vertical[r] = make([]edgeDir, p.Columns)
			for c := range vertical[r] {
				vertical[r][c] = randomTab(rng)
			}
		}
	}

	var pieces []Piece
	for r := 0; r < p.Rows; r++ {
		for c := 0; c < p.Columns; c++ {
			origin := geom.Pt{X: float64(c) * cellW, Y: float64(r) * cellH}
			top := edgeFlat
			if r > 0 {
				top = invert(vertical[r-1][c])
			}
			left := edgeFlat
			if c > 0 {
				left = invert(horizontal[r][c-1])
			}
			right := edgeFlat
			if c < p.Columns-1 {
				right = horizontal[r][c]
			}
			bottom := edgeFlat
			if r < p.Rows-1 {
				bottom = vertical[r][c]
			}
			outline := pieceOutline(origin, cellW, cellH, top, right, bottom, left, p.TabDepthMM)
			pieces = append(pieces, Piece{Col: c, Row: r, Outline: outline})
		}
	}
	return pieces, nil
}

func invert(d edgeDir) edgeDir {
	switch d {
	case edgeTabOut:
		return edgeTabIn
	case edgeTabIn:
		return edgeTabOut
	default:
		return edgeFlat
	}
}

func randomTab(rng *deterministicRNG) edgeDir {
	if rng.next()%2 == 0 {
		return edgeTabOut
	}
	return edgeTabIn
}

// pieceOutline builds a rectangular cell with a single bump (inward or
// outward by tabDepth) on the midpoint of each non-flat edge.
func pieceOutline(origin geom.Pt, w, h float64, top, right, bottom, left edgeDir, tabDepth float64) geom.Polygon {
	corners := []geom.Pt{
		origin,
		{X: origin.X + w, Y: origin.Y},
		{X: origin.X + w, Y: origin.Y + h},
		{X: origin.X, Y: origin.Y + h},
	}
	edges := []edgeDir{top, right, bottom, left}
	normals := []geom.Pt{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

	var ring geom.Polygon
	for i := 0; i < 4; i++ {
		a, b := corners[i], corners[(i+1)%4]
		ring = append(ring, a)
		if edges[i] != edgeFlat {
			mid := geom.Pt{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
			sign := 1.0
			if edges[i] == edgeTabIn {
				sign = -1
			}
			n := normals[i]
			bump := geom.Pt{X: mid.X + n.X*tabDepth*sign, Y: mid.Y + n.Y*tabDepth*sign}
			ring = append(ring, bump)
		}
	}
	return ring
}

// deterministicRNG is a tiny xorshift generator seeded explicitly by the
// caller, never by wall-clock time, so JigsawPuzzle stays deterministic.
type deterministicRNG struct{ state uint64 }

func newDeterministicRNG(seed int64) *deterministicRNG {
	s := uint64(seed)
	if s == 0 {
		s = 0x9E3779B97F4A7C15
	}
	return &deterministicRNG{state: s}
}

func (r *deterministicRNG) next() uint64 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 7
	r.state ^= r.state << 17
	return r.state
}
