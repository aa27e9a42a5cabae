/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

import (
	"sync"

	"gcodekit5/internal/geom"
	"gcodekit5/internal/shape"
)

// Selection tracks which shapes are currently selected, plus a primary (the
// last one picked, used as the anchor for property edits that apply to one
// shape at a time).
type Selection struct {
	mu      sync.RWMutex
	ids     map[shape.ID]struct{}
	order   []shape.ID // insertion order; last is primary
}

func newSelection() *Selection {
	return &Selection{ids: make(map[shape.ID]struct{})}
}

// Set replaces the selection with exactly ids.
func (s *Selection) Set(ids []shape.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[shape.ID]struct{}, len(ids))
	s.order = nil
	for _, id := range ids {
		if _, dup := s.ids[id]; dup {
			continue
		}
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
	}
}

// Add adds id to the selection, making it primary.
func (s *Selection) Add(id shape.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		// move to back (most-recent/primary)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.ids[id] = struct{}{}
	s.order = append(s.order, id)
}

// Remove drops id from the selection if present.
func (s *Selection) Remove(id shape.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; !ok {
		return
	}
	delete(s.ids, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[shape.ID]struct{})
	s.order = nil
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id shape.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected ids in selection order (oldest first).
func (s *Selection) IDs() []shape.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]shape.ID(nil), s.order...)
}

// Primary returns the most recently added id, or 0/false if the selection
// is empty.
func (s *Selection) Primary() (shape.ID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return 0, false
	}
	return s.order[len(s.order)-1], true
}

// IsMultiple reports whether more than one shape is selected.
func (s *Selection) IsMultiple() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order) > 1
}

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order) == 0
}

// Bounds computes the union of the bounding rects of every selected shape,
// resolving each from store. Returns ok=false for an empty selection.
func (s *Selection) Bounds(store *Store) (geom.Rect, bool) {
	ids := s.IDs()
	if len(ids) == 0 {
		return geom.Rect{}, false
	}
	var rects []geom.Rect
	for _, id := range ids {
		if sh, found := store.Get(id); found {
			rects = append(rects, sh.Bounds())
		}
	}
	if len(rects) == 0 {
		return geom.Rect{}, false
	}
	return geom.UnionRects(rects), true
}
