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
	"os"
	"path/filepath"
	"testing"
	"time"

	"gcodekit5/internal/domain"
)

func TestDetectAndRebuildIndex_OnCorruption(t *testing.T) {
	root := t.TempDir()
	doc := domain.Document{
		FormatVersion: 1,
		Name:          "CorruptTest",
		Metadata:      domain.Metadata{Notes: "hello there"},
		Stock:         domain.Stock{WidthMM: 120, HeightMM: 80, Axes: 3},
		Shapes: []domain.Shape{
			{ID: 1, Kind: "rectangle", Rectangle: &domain.RectShape{Width: 40, Height: 20}},
		},
		Tools: []domain.Tool{{ID: "t1", Name: "Bob bit"}},
	}
	ph, err := InitProject(root, doc)
	if err != nil || ph == nil {
		t.Fatalf("InitProject error: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	idx := IndexPath(root)
	if err := os.WriteFile(idx, []byte("THIS IS NOT SQLITE"), 0o644); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rebuilt, err := DetectAndRebuildIndex(ctx, root, doc)
	if err != nil {
		t.Fatalf("DetectAndRebuildIndex: %v", err)
	}
	if !rebuilt {
		t.Fatalf("expected rebuild to occur")
	}
	st, err := os.Stat(IndexPath(root))
	if err != nil || st.Size() == 0 {
		t.Fatalf("rebuilt index missing or empty: %v", err)
	}
	bdir := filepath.Join(root, IndexDirName, "backups")
	entries, _ := os.ReadDir(bdir)
	if len(entries) == 0 {
		t.Fatalf("expected backup file in %s", bdir)
	}
}
