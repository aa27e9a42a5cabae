/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo is a command-pattern undo/redo stack: every mutation to a
// design is expressed as a Command with Apply/Revert, not a state snapshot.
// This keeps memory proportional to edit count rather than document size.
package undo

import "sync"

// Command is one reversible design mutation. Apply and Revert must be exact
// inverses: Revert(Apply(s)) == s for any state s the command is valid
// against. Implementations live alongside the state they mutate (see
// internal/design).
type Command interface {
	Apply() error
	Revert() error
	Label() string
}

const defaultMaxHistory = 50

// Manager is a bounded undo/redo stack of Commands. Safe for concurrent use.
type Manager struct {
	mu         sync.Mutex
	maxHistory int
	undo       []Command
	redo       []Command
}

// NewManager creates a Manager with the given history depth. A non-positive
// maxHistory falls back to 50.
func NewManager(maxHistory int) *Manager {
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	return &Manager{maxHistory: maxHistory}
}

// Do applies cmd and, on success, pushes it onto the undo stack, clearing
// the redo stack (a fresh edit invalidates any previously undone branch).
func (m *Manager) Do(cmd Command) error {
	if err := cmd.Apply(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = append(m.undo, cmd)
	if len(m.undo) > m.maxHistory {
		m.undo = m.undo[len(m.undo)-m.maxHistory:]
	}
	m.redo = nil
	return nil
}

// Undo reverts the most recent command and moves it to the redo stack.
// Returns ok=false if there is nothing to undo.
func (m *Manager) Undo() (label string, ok bool, err error) {
	m.mu.Lock()
	if len(m.undo) == 0 {
		m.mu.Unlock()
		return "", false, nil
	}
	cmd := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.mu.Unlock()

	if err := cmd.Revert(); err != nil {
		m.mu.Lock()
		m.undo = append(m.undo, cmd)
		m.mu.Unlock()
		return "", false, err
	}
	m.mu.Lock()
	m.redo = append(m.redo, cmd)
	m.mu.Unlock()
	return cmd.Label(), true, nil
}

// Redo re-applies the most recently undone command.
func (m *Manager) Redo() (label string, ok bool, err error) {
	m.mu.Lock()
	if len(m.redo) == 0 {
		m.mu.Unlock()
		return "", false, nil
	}
	cmd := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.mu.Unlock()

	if err := cmd.Apply(); err != nil {
		m.mu.Lock()
		m.redo = append(m.redo, cmd)
		m.mu.Unlock()
		return "", false, err
	}
	m.mu.Lock()
	m.undo = append(m.undo, cmd)
	if len(m.undo) > m.maxHistory {
		m.undo = m.undo[len(m.undo)-m.maxHistory:]
	}
	m.mu.Unlock()
	return cmd.Label(), true, nil
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// Clear drops all history without reverting anything, used when loading a
// new design document.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = nil
	m.redo = nil
}

// Depth reports the current undo/redo stack sizes, mainly for diagnostics.
func (m *Manager) Depth() (undoDepth, redoDepth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}
