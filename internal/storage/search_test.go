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
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gcodekit5/internal/domain"
)

func TestSearchAndWhereUsed(t *testing.T) {
	root := t.TempDir()
	doc := domain.Document{FormatVersion: 1, Name: "Search Test", Stock: domain.Stock{WidthMM: 100, HeightMM: 100, Axes: 3}}
	ph, err := InitProject(root, doc)
	if err != nil || ph == nil {
		t.Fatalf("InitProject error: %v", err)
	}
	// InitProject has already built the initial index, so it cannot clobber the seeds below
	time.Sleep(200 * time.Millisecond)
	idx := IndexPath(root)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(idx))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	seed := []struct {
		id      int
		typeStr string
		path    string
		shape   any
		tool    any
		text    string
	}{
		{1001, "shape", "shape:1001", 1001, nil, "pocket outline rounded tab"},
		{1002, "operation", "operation:2001", nil, "t1", "pocket roughing pass uses tool t1"},
		{1003, "tool", "tool:t1", nil, "t1", "3.175mm two flute endmill"},
	}
	for _, s := range seed {
		_, err := db.ExecContext(ctx, `INSERT INTO documents(doc_id, type, path, shape_id, tool_id, text) VALUES(?,?,?,?,?,?)`, s.id, s.typeStr, s.path, s.shape, s.tool, s.text)
		if err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}
	// Cross-ref: operation 1002 references shape 1001
	if _, err := db.ExecContext(ctx, `INSERT INTO cross_refs(from_id, to_id) VALUES(?,?)`, 1002, 1001); err != nil {
		t.Fatalf("insert cross_ref: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	res, err := Search(ctx, root, SearchQuery{Text: "pocket"})
	if err != nil {
		t.Fatalf("search 1: %v", err)
	}
	if len(res) == 0 {
		t.Fatalf("expected results for 'pocket'")
	}
	found := false
	for _, r := range res {
		if r.DocID == 1001 {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("expected doc 1001 in results")
	}

	res, err = Search(ctx, root, SearchQuery{ToolID: "t1"})
	if err != nil {
		t.Fatalf("search 2: %v", err)
	}
	want := map[int]bool{1002: true, 1003: true}
	for _, r := range res {
		delete(want, int(r.DocID))
	}
	if len(want) != 0 {
		t.Fatalf("missing expected docs for tool filter: %v", want)
	}

	res, err = Search(ctx, root, SearchQuery{Types: []string{"tool"}})
	if err != nil {
		t.Fatalf("search 3: %v", err)
	}
	if len(res) != 1 || res[0].DocID != 1003 {
		t.Fatalf("expected only doc 1003 for type filter, got %+v", res)
	}

	wused, err := WhereUsed(ctx, root, 1001, 100, 0)
	if err != nil {
		t.Fatalf("where-used: %v", err)
	}
	if len(wused) == 0 || wused[0].DocID != 1002 {
		t.Fatalf("expected where-used result 1002, got %+v", wused)
	}
}
