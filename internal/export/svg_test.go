/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gcodekit5/internal/storage"
)

func TestExportDesignSetupSheetSVGWritesFile(t *testing.T) {
	root := t.TempDir()
	ph, err := storage.InitProject(root, sampleSetupDocument())
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}

	out := filepath.Join(t.TempDir(), "sheet.svg")
	if err := ExportDesignSetupSheetSVG(ph, out, SVGOptions{IncludeGuides: true, ShowCallouts: true, ShowToolTable: true}); err != nil {
		t.Fatalf("ExportDesignSetupSheetSVG: %v", err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	content := string(b)
	if !strings.Contains(content, "<svg") {
		t.Fatalf("missing svg root element")
	}
	if !strings.Contains(content, "polyline") {
		t.Fatalf("expected shape outlines rendered as polylines")
	}
	if !strings.Contains(content, "outline (t1)") {
		t.Fatalf("expected operation callout text, got: %s", content)
	}
	if !strings.Contains(content, "two flute endmill") {
		t.Fatalf("expected tool table row, got: %s", content)
	}
}

func TestExportDesignSetupSheetSVGNilHandle(t *testing.T) {
	if err := ExportDesignSetupSheetSVG(nil, "x.svg", SVGOptions{}); err == nil {
		t.Fatalf("expected error for nil handle")
	}
}
