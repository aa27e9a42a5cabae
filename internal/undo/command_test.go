/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import "testing"

type counterCmd struct {
	n      *int
	delta  int
	label  string
	failOn string
}

func (c *counterCmd) Apply() error {
	if c.failOn == "apply" {
		return errFake
	}
	*c.n += c.delta
	return nil
}

func (c *counterCmd) Revert() error {
	if c.failOn == "revert" {
		return errFake
	}
	*c.n -= c.delta
	return nil
}

func (c *counterCmd) Label() string { return c.label }

var errFake = fakeErr("fake")

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

func TestDoUndoRedoRoundTrip(t *testing.T) {
	n := 0
	m := NewManager(50)
	if err := m.Do(&counterCmd{n: &n, delta: 5, label: "add 5"}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected n=5, got %d", n)
	}
	label, ok, err := m.Undo()
	if err != nil || !ok || label != "add 5" {
		t.Fatalf("Undo: label=%q ok=%v err=%v", label, ok, err)
	}
	if n != 0 {
		t.Fatalf("expected n=0 after undo, got %d", n)
	}
	label, ok, err = m.Redo()
	if err != nil || !ok || label != "add 5" {
		t.Fatalf("Redo: label=%q ok=%v err=%v", label, ok, err)
	}
	if n != 5 {
		t.Fatalf("expected n=5 after redo, got %d", n)
	}
}

func TestNewDoClearsRedoStack(t *testing.T) {
	n := 0
	m := NewManager(50)
	_ = m.Do(&counterCmd{n: &n, delta: 1, label: "a"})
	_, _, _ = m.Undo()
	_ = m.Do(&counterCmd{n: &n, delta: 2, label: "b"})
	if m.CanRedo() {
		t.Fatalf("expected redo stack cleared by a fresh Do")
	}
}

func TestUndoRedoOnEmptyStackIsNoop(t *testing.T) {
	m := NewManager(50)
	if _, ok, err := m.Undo(); ok || err != nil {
		t.Fatalf("expected no-op undo on empty stack")
	}
	if _, ok, err := m.Redo(); ok || err != nil {
		t.Fatalf("expected no-op redo on empty stack")
	}
}

func TestHistoryBoundedAtMax(t *testing.T) {
	n := 0
	m := NewManager(3)
	for i := 0; i < 10; i++ {
		_ = m.Do(&counterCmd{n: &n, delta: 1, label: "inc"})
	}
	undoDepth, _ := m.Depth()
	if undoDepth != 3 {
		t.Fatalf("expected bounded depth 3, got %d", undoDepth)
	}
}

func TestRevertFailureRestoresUndoStack(t *testing.T) {
	n := 0
	m := NewManager(50)
	_ = m.Do(&counterCmd{n: &n, delta: 1, label: "ok"})
	bad := &counterCmd{n: &n, delta: 1, label: "bad", failOn: "revert"}
	_ = m.Do(bad)
	if _, ok, err := m.Undo(); err == nil || ok {
		t.Fatalf("expected revert failure to surface, ok=%v err=%v", ok, err)
	}
	if !m.CanUndo() {
		t.Fatalf("expected command to remain on undo stack after failed revert")
	}
}
