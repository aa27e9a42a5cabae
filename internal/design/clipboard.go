/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

import (
	"gcodekit5/internal/camerr"
	"gcodekit5/internal/shape"
)

// pasteOffsetMM is the distance new copies are nudged from their source so
// a paste onto the same design is visibly distinct rather than stacked
// exactly on top of the original.
const pasteOffsetMM = 10

// Clipboard holds a snapshot of shapes (by value, detached from any store)
// ready to paste into the same or a different Store.
type Clipboard struct {
	shapes []shape.Shape
}

// Copy snapshots the given shapes (by value) into a new Clipboard.
func Copy(store *Store, ids []shape.ID) (Clipboard, error) {
	if len(ids) == 0 {
		return Clipboard{}, camerr.New(camerr.KindValidation, "Copy", camerr.ErrEmptySelection)
	}
	cb := Clipboard{}
	for _, id := range ids {
		sh, ok := store.Get(id)
		if !ok {
			continue
		}
		cb.shapes = append(cb.shapes, sh)
	}
	return cb, nil
}

// Cut copies then removes the given shapes from store, as one undo step per
// shape removed (so an undo after Cut restores each shape individually).
func Cut(store *Store, ids []shape.ID) (Clipboard, error) {
	cb, err := Copy(store, ids)
	if err != nil {
		return cb, err
	}
	for _, id := range ids {
		if err := store.RemoveShape(id); err != nil && !camerr.Is(err, camerr.KindValidation) {
			return cb, err
		}
	}
	return cb, nil
}

// Paste inserts the clipboard's shapes into store as new shapes, offset by
// pasteOffsetMM on both axes, and returns their new ids. Group membership
// and parent/child links are preserved by remapping ids consistently.
func (cb Clipboard) Paste(store *Store) ([]shape.ID, error) {
	return cb.pasteAt(store, pasteOffsetMM, pasteOffsetMM)
}

// Duplicate is Paste with no offset ambiguity: it always nudges by the
// standard paste offset, the same as pasting immediately after a copy.
func Duplicate(store *Store, ids []shape.ID) ([]shape.ID, error) {
	cb, err := Copy(store, ids)
	if err != nil {
		return nil, err
	}
	return cb.Paste(store)
}

func (cb Clipboard) pasteAt(store *Store, dx, dy float64) ([]shape.ID, error) {
	if len(cb.shapes) == 0 {
		return nil, camerr.New(camerr.KindValidation, "Paste", camerr.ErrEmptySelection)
	}
	remap := make(map[shape.ID]shape.ID, len(cb.shapes))
	for _, sh := range cb.shapes {
		remap[sh.ID] = store.NextID()
	}
	var newIDs []shape.ID
	for _, sh := range cb.shapes {
		next := sh
		next.ID = remap[sh.ID]
		next.Transform.TX += dx
		next.Transform.TY += dy
		if sh.ParentGroup != 0 {
			if mapped, ok := remap[sh.ParentGroup]; ok {
				next.ParentGroup = mapped
			}
		}
		if sh.Kind == shape.KindGroup {
			children := make([]shape.ID, 0, len(sh.Group.Children))
			for _, c := range sh.Group.Children {
				if mapped, ok := remap[c]; ok {
					children = append(children, mapped)
				}
			}
			next.Group.Children = children
		}
		if err := store.AddShape(next); err != nil {
			return newIDs, err
		}
		newIDs = append(newIDs, next.ID)
	}
	return newIDs, nil
}
