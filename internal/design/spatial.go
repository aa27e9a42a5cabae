/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

import (
	"math"
	"sync"

	"gcodekit5/internal/geom"
	"gcodekit5/internal/shape"
)

// SpatialIndex is a uniform grid over shape bounding rects, used to narrow
// down hit-testing and viewport culling candidates without scanning every
// shape in the design. Rebuilt lazily: Update/Remove only touch the cells
// a shape's bounds actually occupy.
type SpatialIndex struct {
	mu       sync.RWMutex
	cellSize float64
	cells    map[cellKey]map[shape.ID]struct{}
	bounds   map[shape.ID]geom.Rect
}

type cellKey struct{ cx, cy int }

// NewSpatialIndex creates an index with the given cell size in mm. A
// reasonable default is the size of a typical selected shape (10-50mm);
// too small and a big shape spans many cells, too large and every query
// degenerates to a full scan.
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	if cellSize <= 0 {
		cellSize = 20
	}
	return &SpatialIndex{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[shape.ID]struct{}),
		bounds:   make(map[shape.ID]geom.Rect),
	}
}

func (idx *SpatialIndex) cellsFor(b geom.Rect) []cellKey {
	x0 := int(math.Floor(b.X / idx.cellSize))
	y0 := int(math.Floor(b.Y / idx.cellSize))
	x1 := int(math.Floor((b.X + b.W) / idx.cellSize))
	y1 := int(math.Floor((b.Y + b.H) / idx.cellSize))
	var out []cellKey
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			out = append(out, cellKey{cx, cy})
		}
	}
	return out
}

// Update (re)inserts id with bounds b, removing any stale cell membership
// from a previous call first.
func (idx *SpatialIndex) Update(id shape.ID, b geom.Rect) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(id)
	idx.bounds[id] = b
	for _, ck := range idx.cellsFor(b) {
		set := idx.cells[ck]
		if set == nil {
			set = make(map[shape.ID]struct{})
			idx.cells[ck] = set
		}
		set[id] = struct{}{}
	}
}

// Remove drops id from the index entirely.
func (idx *SpatialIndex) Remove(id shape.ID) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(id)
}

func (idx *SpatialIndex) removeLocked(id shape.ID) {
	prev, ok := idx.bounds[id]
	if !ok {
		return
	}
	for _, ck := range idx.cellsFor(prev) {
		if set := idx.cells[ck]; set != nil {
			delete(set, id)
			if len(set) == 0 {
				delete(idx.cells, ck)
			}
		}
	}
	delete(idx.bounds, id)
}

// Query returns every shape id whose stored bounds intersect r (candidates
// only; callers still do the precise test).
func (idx *SpatialIndex) Query(r geom.Rect) []shape.ID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	seen := make(map[shape.ID]struct{})
	var out []shape.ID
	for _, ck := range idx.cellsFor(r) {
		for id := range idx.cells[ck] {
			if _, dup := seen[id]; dup {
				continue
			}
			if b, ok := idx.bounds[id]; ok && b.Intersects(r) {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}
