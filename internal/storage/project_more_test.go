/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gcodekit5/internal/domain"
)

func TestSaveAsMovesProjectAndScaffolding(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, sampleDocument("Orig"))
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}

	ph.Doc.Name = "Renamed"
	newRoot := filepath.Join(root, "newproj")
	if err := SaveAs(ph, newRoot); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if ph.Root != newRoot || ph.ManifestPath != filepath.Join(newRoot, ManifestFileName) {
		t.Fatalf("ProjectHandle paths not updated: %+v", ph)
	}

	b, err := os.ReadFile(ph.ManifestPath)
	if err != nil {
		t.Fatalf("read new manifest: %v", err)
	}
	var got domain.Document
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal new manifest: %v", err)
	}
	if got.Name != "Renamed" {
		t.Fatalf("unexpected document name in new manifest: %q", got.Name)
	}

	toolpathsDir := filepath.Join(newRoot, "toolpaths")
	if fi, err := os.Stat(toolpathsDir); err != nil || !fi.IsDir() {
		t.Fatalf("expected toolpaths directory at %s", toolpathsDir)
	}

	ctx := context.Background()
	if _, err := AppendJobRecord(ctx, ph.Root, domain.JobRecord{OperationKind: "outline", ProgramHash: "h1"}); err != nil {
		t.Fatalf("AppendJobRecord after SaveAs: %v", err)
	}
	recs, err := ListJobRecords(ctx, ph.Root, 10)
	if err != nil || len(recs) != 1 {
		t.Fatalf("ListJobRecords after SaveAs: recs=%d err=%v", len(recs), err)
	}
}
