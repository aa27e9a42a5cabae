/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"testing"
	"time"

	"gcodekit5/internal/domain"
)

// Validates FTS5 and cross-ref queries using an index built from a domain.Document.
func TestIndexBuildFromDesignFTSAndCrossRef(t *testing.T) {
	root := t.TempDir()
	doc := domain.Document{
		FormatVersion: 1,
		Name:          "Concept Case",
		Metadata:      domain.Metadata{Author: "A Drost", Notes: "Hello from the alice bracket at the beach"},
		Stock:         domain.Stock{WidthMM: 150, HeightMM: 150, ThicknessMM: 6, Axes: 3},
		Shapes: []domain.Shape{
			{ID: 1, Kind: "path", Style: domain.Style{Stroke: "solid"}, Path: &domain.PathShape{}},
		},
		Tools: []domain.Tool{
			{ID: "t1", Name: "alice bracket roughing bit", DiameterMM: 3.175},
		},
		Operations: []domain.CAMOp{
			{ID: 2001, Kind: "outline", ShapeIDs: []uint64{1}, ToolID: "t1", Enabled: true},
		},
	}
	ph, err := InitProject(root, doc)
	if err != nil || ph == nil {
		t.Fatalf("InitProject: %v", err)
	}
	// InitProject has already built the first index; pause briefly before rebuilding it
	time.Sleep(300 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RebuildIndex(ctx, root, doc); err != nil {
		t.Fatalf("RebuildIndex: %v", err)
	}
	// FTS: search phrase Hello
	res, err := Search(ctx, root, SearchQuery{Text: "Hello"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) == 0 {
		t.Fatalf("expected FTS results for 'Hello'")
	}
	// Tool filter
	res, err = Search(ctx, root, SearchQuery{ToolID: "t1"})
	if err != nil || len(res) == 0 {
		t.Fatalf("Search tool filter: %v len=%d", err, len(res))
	}
	// Type filter should find the tool entry
	res, err = Search(ctx, root, SearchQuery{Text: "alice", Types: []string{"tool"}})
	if err != nil || len(res) == 0 {
		t.Fatalf("Search type filter: %v len=%d", err, len(res))
	}
	// Cross-ref: operation 2001 references shape 1
	wused, err := WhereUsedByPath(ctx, root, "shape:1", 100, 0)
	if err != nil {
		t.Fatalf("where-used: %v", err)
	}
	if len(wused) == 0 {
		t.Fatalf("expected where-used results for shape 1")
	}
}
