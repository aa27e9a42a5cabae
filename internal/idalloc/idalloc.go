/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package idalloc allocates the opaque, monotonically increasing 64-bit ids
// used for shapes and event subscriptions, stable across the lifetime of a
// design document.
package idalloc

import "sync/atomic"

// ID is an opaque allocated identifier. The zero value is never issued by
// Allocator.Next and is reserved to mean "no id".
type ID uint64

// Allocator hands out strictly increasing IDs. Safe for concurrent use.
type Allocator struct {
	next atomic.Uint64
}

// New creates an allocator that starts issuing ids from 1.
func New() *Allocator {
	a := &Allocator{}
	a.next.Store(1)
	return a
}

// NewFrom creates an allocator that resumes issuing ids from start, used
// when reopening a saved design so that ids already referenced by the
// document are never reissued.
func NewFrom(start uint64) *Allocator {
	a := &Allocator{}
	if start < 1 {
		start = 1
	}
	a.next.Store(start)
	return a
}

// Next returns the next unused id.
func (a *Allocator) Next() ID {
	return ID(a.next.Add(1) - 1)
}

// Observe records an id that is already in use (for example one restored by
// undo/redo or loaded from a saved document): if id is at or past the next
// id to be issued, the allocator advances past it, so Next never reissues it.
func (a *Allocator) Observe(id ID) {
	for {
		cur := a.next.Load()
		if uint64(id) < cur {
			return
		}
		if a.next.CompareAndSwap(cur, uint64(id)+1) {
			return
		}
	}
}
