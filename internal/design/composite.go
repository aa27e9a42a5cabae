/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

import "gcodekit5/internal/undo"

// compositeCmd bundles several commands into a single undo step: Apply runs
// them in order, Revert runs their reverts in reverse order. If a step
// fails partway through Apply, the already-applied steps are rolled back
// before the error is returned, so a composite never leaves the store
// half-mutated.
type compositeCmd struct {
	label string
	steps []undo.Command
}

func (c *compositeCmd) Apply() error {
	applied := 0
	for _, step := range c.steps {
		if err := step.Apply(); err != nil {
			for i := applied - 1; i >= 0; i-- {
				_ = c.steps[i].Revert()
			}
			return err
		}
		applied++
	}
	return nil
}

func (c *compositeCmd) Revert() error {
	for i := len(c.steps) - 1; i >= 0; i-- {
		if err := c.steps[i].Revert(); err != nil {
			return err
		}
	}
	return nil
}

func (c *compositeCmd) Label() string { return c.label }
