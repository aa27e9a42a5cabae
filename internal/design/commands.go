/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

import (
	"fmt"

	"gcodekit5/internal/shape"
	"gcodekit5/internal/undo"
)

// undoAdapter wraps an undo.Manager and fires Store events after every
// successful Do/Undo/Redo, keeping observers in sync with history replay.
type undoAdapter struct {
	mgr *undo.Manager
}

func newUndoAdapter(maxHistory int) *undoAdapter {
	return &undoAdapter{mgr: undo.NewManager(maxHistory)}
}

func (a *undoAdapter) Do(cmd undo.Command) error { return a.mgr.Do(cmd) }

type addShapeCmd struct {
	store *Store
	sh    shape.Shape
}

func (c *addShapeCmd) Apply() error {
	c.store.mu.Lock()
	c.store.insertLocked(c.sh)
	c.store.mu.Unlock()
	c.store.Events.Publish(ShapeAdded{ID: c.sh.ID})
	return nil
}

func (c *addShapeCmd) Revert() error {
	c.store.mu.Lock()
	c.store.removeLocked(c.sh.ID)
	c.store.mu.Unlock()
	c.store.sel.Remove(c.sh.ID)
	c.store.Events.Publish(ShapeRemoved{ID: c.sh.ID})
	return nil
}

func (c *addShapeCmd) Label() string { return fmt.Sprintf("add %s", c.sh.Kind) }

type removeShapeCmd struct {
	store *Store
	id    shape.ID
	saved shape.Shape
	index int
}

func (c *removeShapeCmd) Apply() error {
	c.store.mu.Lock()
	c.saved = c.store.shapes[c.id]
	c.index = c.store.orderIndexLocked(c.id)
	c.store.removeLocked(c.id)
	c.store.mu.Unlock()
	c.store.sel.Remove(c.id)
	c.store.Events.Publish(ShapeRemoved{ID: c.id})
	return nil
}

func (c *removeShapeCmd) Revert() error {
	c.store.mu.Lock()
	c.store.shapes[c.id] = c.saved
	if c.index < 0 || c.index > len(c.store.order) {
		c.store.order = append(c.store.order, c.id)
	} else {
		c.store.order = append(c.store.order[:c.index:c.index], append([]shape.ID{c.id}, c.store.order[c.index:]...)...)
	}
	c.store.repackZOrderLocked()
	c.store.grid.Update(c.id, c.saved.Bounds())
	c.store.mu.Unlock()
	c.store.Events.Publish(ShapeAdded{ID: c.id})
	return nil
}

func (c *removeShapeCmd) Label() string { return "remove shape" }

type modifyShapeCmd struct {
	store *Store
	id    shape.ID
	prev  shape.Shape
	next  shape.Shape
}

func (c *modifyShapeCmd) Apply() error {
	c.store.mu.Lock()
	c.store.replaceLocked(c.next)
	c.store.mu.Unlock()
	c.store.Events.Publish(ShapeModified{ID: c.id})
	return nil
}

func (c *modifyShapeCmd) Revert() error {
	c.store.mu.Lock()
	c.store.replaceLocked(c.prev)
	c.store.mu.Unlock()
	c.store.Events.Publish(ShapeModified{ID: c.id})
	return nil
}

func (c *modifyShapeCmd) Label() string { return "modify shape" }

type reorderCmd struct {
	store         *Store
	id            shape.ID
	newFrontIndex int
	prevIndex     int
}

func (c *reorderCmd) Apply() error {
	c.store.mu.Lock()
	c.prevIndex = c.store.orderIndexLocked(c.id)
	c.store.moveLocked(c.id, c.newFrontIndex)
	c.store.mu.Unlock()
	c.store.Events.Publish(ShapeModified{ID: c.id})
	return nil
}

func (c *reorderCmd) Revert() error {
	c.store.mu.Lock()
	c.store.moveLocked(c.id, c.prevIndex)
	c.store.mu.Unlock()
	c.store.Events.Publish(ShapeModified{ID: c.id})
	return nil
}

func (c *reorderCmd) Label() string { return "reorder shape" }

func (s *Store) moveLocked(id shape.ID, newIndex int) {
	idx := s.orderIndexLocked(id)
	if idx < 0 {
		return
	}
	s.order = append(s.order[:idx], s.order[idx+1:]...)
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(s.order) {
		newIndex = len(s.order)
	}
	s.order = append(s.order[:newIndex:newIndex], append([]shape.ID{id}, s.order[newIndex:]...)...)
	s.repackZOrderLocked()
}

// groupState holds the data shared by a group/ungroup pair so the two
// inverse commands can be built from whichever direction happens first.
type groupState struct {
	store       *Store
	groupID     shape.ID
	memberIDs   []shape.ID
	prevParents map[shape.ID]shape.ID
}

func (g *groupState) create() {
	g.store.mu.Lock()
	g.prevParents = make(map[shape.ID]shape.ID, len(g.memberIDs))
	for _, id := range g.memberIDs {
		sh := g.store.shapes[id]
		g.prevParents[id] = sh.ParentGroup
		sh.ParentGroup = g.groupID
		g.store.shapes[id] = sh
	}
	gs := shape.NewGroup(g.groupID, g.memberIDs)
	g.store.insertLocked(gs)
	g.store.mu.Unlock()
	g.store.Events.Publish(ShapeAdded{ID: g.groupID})
}

func (g *groupState) dissolve() {
	g.store.mu.Lock()
	for _, id := range g.memberIDs {
		sh := g.store.shapes[id]
		sh.ParentGroup = g.prevParents[id]
		g.store.shapes[id] = sh
	}
	g.store.removeLocked(g.groupID)
	g.store.mu.Unlock()
	g.store.Events.Publish(ShapeRemoved{ID: g.groupID})
}

type groupCmd struct{ s *groupState }

func (c *groupCmd) Apply() error  { c.s.create(); return nil }
func (c *groupCmd) Revert() error { c.s.dissolve(); return nil }
func (c *groupCmd) Label() string { return "group shapes" }

type ungroupCmd struct{ s *groupState }

func (c *ungroupCmd) Apply() error  { c.s.dissolve(); return nil }
func (c *ungroupCmd) Revert() error { c.s.create(); return nil }
func (c *ungroupCmd) Label() string { return "ungroup shapes" }

// Group wraps memberIDs (must be at least two shapes) in a new group shape
// and returns its id.
func (s *Store) Group(memberIDs []shape.ID) (shape.ID, error) {
	if len(memberIDs) < 2 {
		return 0, fmt.Errorf("group requires at least two shapes")
	}
	id := s.NextID()
	gs := &groupState{store: s, groupID: id, memberIDs: append([]shape.ID(nil), memberIDs...)}
	if err := s.undo.Do(&groupCmd{s: gs}); err != nil {
		return 0, err
	}
	return id, nil
}

// Ungroup dissolves a group shape, restoring its children to their previous
// parent (top-level if none).
func (s *Store) Ungroup(groupID shape.ID) error {
	s.mu.RLock()
	g, ok := s.shapes[groupID]
	s.mu.RUnlock()
	if !ok || g.Kind != shape.KindGroup {
		return fmt.Errorf("not a group: %v", groupID)
	}
	gs := &groupState{store: s, groupID: groupID, memberIDs: append([]shape.ID(nil), g.Group.Children...)}
	// prevParents is unknown at this point (the group already holds these
	// children); assume top-level, matching how Group records it.
	gs.prevParents = make(map[shape.ID]shape.ID, len(gs.memberIDs))
	return s.undo.Do(&ungroupCmd{s: gs})
}
