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
	"gcodekit5/internal/geom"
	"gcodekit5/internal/shape"
	"gcodekit5/internal/undo"
)

// BooleanOp runs op across the given shape ids (must be at least two,
// resolved to CSG regions via shape.AsCSG) in selection order, folding left
// to right, and replaces the source shapes with a single Path shape holding
// the result. The whole replacement is one undo step.
func (s *Store) BooleanOp(op geom.BoolOp, ids []shape.ID) (shape.ID, error) {
	if len(ids) < 2 {
		return 0, camerr.New(camerr.KindValidation, "BooleanOp", camerr.ErrEmptySelection)
	}

	var acc geom.Region
	haveAcc := false
	for _, id := range ids {
		sh, ok := s.Get(id)
		if !ok {
			return 0, camerr.New(camerr.KindValidation, "BooleanOp", camerr.ErrShapeNotFound)
		}
		reg, ok := sh.AsCSG()
		if !ok {
			return 0, camerr.New(camerr.KindGeometry, "BooleanOp", camerr.ErrInvalidGeometry)
		}
		if !haveAcc {
			acc = reg
			haveAcc = true
			continue
		}
		results := geom.Boolean(op, acc, reg)
		if len(results) == 0 {
			return 0, camerr.New(camerr.KindGeometry, "BooleanOp", camerr.ErrInvalidGeometry)
		}
		acc = results[0]
	}

	newID := s.NextID()
	path := geom.Path{}
	appendRing(&path, acc.Outer)
	for _, hole := range acc.Holes {
		appendRing(&path, hole)
	}
	result := shape.NewPath(newID, path, true)

	var steps []undo.Command
	steps = append(steps, &addShapeCmd{store: s, sh: result})
	for _, id := range ids {
		steps = append(steps, &removeShapeCmd{store: s, id: id})
	}
	if err := s.undo.Do(&compositeCmd{label: "boolean op", steps: steps}); err != nil {
		return 0, err
	}
	return newID, nil
}

// appendRing adds one closed subpath to path, outer or hole alike — a
// boolean result's interior rings survive the same way its outer ring does,
// as a separate MoveTo-led subpath in the encoded Path.
func appendRing(path *geom.Path, r geom.Polygon) {
	for i, p := range r {
		if i == 0 {
			path.MoveTo(p.X, p.Y)
		} else {
			path.LineTo(p.X, p.Y)
		}
	}
	path.Close()
}
