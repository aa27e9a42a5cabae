/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package design is the live, in-memory editing state for one open design:
// the shape store, selection, spatial index, viewport, and the
// command-pattern undo/redo stack that mutates all of them. internal/domain
// holds the serializable on-disk projection this package loads from and
// saves to.
package design

import (
	"sort"
	"sync"

	"gcodekit5/internal/camerr"
	"gcodekit5/internal/events"
	"gcodekit5/internal/idalloc"
	"gcodekit5/internal/shape"
)

// ShapeAdded, ShapeRemoved, ShapeModified, and SelectionChanged are published
// on a Store's event bus after every successful mutation.
type ShapeAdded struct{ ID shape.ID }
type ShapeRemoved struct{ ID shape.ID }
type ShapeModified struct{ ID shape.ID }
type SelectionChanged struct{ Selected []shape.ID }

// Store owns every shape in a design plus the z-order they render/cut in.
// It is the single owner in the ownership-with-observers pattern: callers
// mutate exclusively through Store's methods, and the rest of the system
// reacts via the Bus fields instead of holding direct references into it.
type Store struct {
	mu    sync.RWMutex
	ids   *idalloc.Allocator
	shapes map[shape.ID]shape.Shape
	order []shape.ID // z-order, front to back (index 0 is frontmost)

	Events *events.Bus[any]

	undo *undoAdapter
	sel  *Selection
	grid *SpatialIndex
}

// NewStore creates an empty design with its own id allocator, undo history,
// selection, and spatial index wired together.
func NewStore() *Store {
	s := &Store{
		ids:    idalloc.New(),
		shapes: make(map[shape.ID]shape.Shape),
		Events: events.NewBus[any](),
	}
	s.undo = newUndoAdapter(50)
	s.sel = newSelection()
	s.grid = NewSpatialIndex(20)
	return s
}

// NextID allocates a fresh shape id without inserting anything; used by
// callers building a Shape value before AddShape.
func (s *Store) NextID() shape.ID { return s.ids.Next() }

// Get returns a shape by id.
func (s *Store) Get(id shape.ID) (shape.Shape, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shapes[id]
	return sh, ok
}

// All returns every shape in front-to-back z-order (frontmost first).
func (s *Store) All() []shape.Shape {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]shape.Shape, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.shapes[id])
	}
	return out
}

// Len reports the number of shapes in the design.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// AddShape inserts sh (which must already have a unique ID, e.g. from
// NextID) at the front of z-order and republishes its rect into the spatial
// index. Recorded on the undo stack.
func (s *Store) AddShape(sh shape.Shape) error {
	if err := sh.Validate(); err != nil {
		return camerr.New(camerr.KindValidation, "AddShape", err)
	}
	return s.undo.Do(&addShapeCmd{store: s, sh: sh})
}

// RemoveShape deletes a shape (and, if it is a group, the command leaves
// its children in the store with ParentGroup still naming the removed
// group — callers wanting cascading delete should remove children first).
// Recorded on the undo stack.
func (s *Store) RemoveShape(id shape.ID) error {
	s.mu.RLock()
	_, ok := s.shapes[id]
	s.mu.RUnlock()
	if !ok {
		return camerr.New(camerr.KindValidation, "RemoveShape", camerr.ErrShapeNotFound)
	}
	return s.undo.Do(&removeShapeCmd{store: s, id: id})
}

// ModifyShape replaces the stored shape with next, provided next.ID matches
// an existing shape. Recorded on the undo stack.
func (s *Store) ModifyShape(next shape.Shape) error {
	s.mu.RLock()
	prev, ok := s.shapes[next.ID]
	s.mu.RUnlock()
	if !ok {
		return camerr.New(camerr.KindValidation, "ModifyShape", camerr.ErrShapeNotFound)
	}
	if err := next.Validate(); err != nil {
		return camerr.New(camerr.KindValidation, "ModifyShape", err)
	}
	return s.undo.Do(&modifyShapeCmd{store: s, id: next.ID, prev: prev, next: next})
}

// Undo reverts the most recent command.
func (s *Store) Undo() (string, bool, error) { return s.undo.mgr.Undo() }

// Redo re-applies the most recently undone command.
func (s *Store) Redo() (string, bool, error) { return s.undo.mgr.Redo() }

func (s *Store) insertLocked(sh shape.Shape) {
	s.shapes[sh.ID] = sh
	s.order = append([]shape.ID{sh.ID}, s.order...)
	s.repackZOrderLocked()
	s.ids.Observe(sh.ID)
	s.grid.Update(sh.ID, sh.Bounds())
}

func (s *Store) removeLocked(id shape.ID) {
	delete(s.shapes, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.repackZOrderLocked()
	s.grid.Remove(id)
}

func (s *Store) replaceLocked(sh shape.Shape) {
	s.shapes[sh.ID] = sh
	s.grid.Update(sh.ID, sh.Bounds())
}

// repackZOrderLocked assigns dense, gapless ZOrder values matching the
// current order slice. Called while s.mu is held for writing.
func (s *Store) repackZOrderLocked() {
	for i, id := range s.order {
		sh := s.shapes[id]
		sh.ZOrder = len(s.order) - 1 - i
		s.shapes[id] = sh
	}
}

// Reorder moves id to the given z-order position (0 = frontmost). Recorded
// on the undo stack.
func (s *Store) Reorder(id shape.ID, newFrontIndex int) error {
	s.mu.RLock()
	_, ok := s.shapes[id]
	s.mu.RUnlock()
	if !ok {
		return camerr.New(camerr.KindValidation, "Reorder", camerr.ErrShapeNotFound)
	}
	return s.undo.Do(&reorderCmd{store: s, id: id, newFrontIndex: newFrontIndex})
}

func (s *Store) orderIndexLocked(id shape.ID) int {
	for i, oid := range s.order {
		if oid == id {
			return i
		}
	}
	return -1
}

// Selection returns the store's selection tracker.
func (s *Store) Selection() *Selection { return s.sel }

// SpatialIndex returns the store's spatial index for hit-testing.
func (s *Store) SpatialIndex() *SpatialIndex { return s.grid }

// sortedByID is a helper for deterministic test/debug output.
func sortedByID(ids []shape.ID) []shape.ID {
	out := append([]shape.ID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
