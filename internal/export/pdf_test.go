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
	"testing"

	"gcodekit5/internal/storage"
)

func TestExportDesignSetupSheetPDFWritesFile(t *testing.T) {
	root := t.TempDir()
	ph, err := storage.InitProject(root, sampleSetupDocument())
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}

	out := filepath.Join(t.TempDir(), "sheet.pdf")
	if err := ExportDesignSetupSheetPDF(ph, out, PDFOptions{IncludeGuides: true, ShowCallouts: true, ShowToolTable: true}); err != nil {
		t.Fatalf("ExportDesignSetupSheetPDF: %v", err)
	}

	fi, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat pdf: %v", err)
	}
	if fi.Size() == 0 {
		t.Fatalf("expected non-empty pdf")
	}
}

func TestExportDesignSetupSheetPDFRelativePath(t *testing.T) {
	root := t.TempDir()
	ph, err := storage.InitProject(root, sampleSetupDocument())
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}

	if err := ExportDesignSetupSheetPDF(ph, filepath.Join("pdf", "sheet.pdf"), PDFOptions{}); err != nil {
		t.Fatalf("ExportDesignSetupSheetPDF: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "exports", "pdf", "sheet.pdf")); err != nil {
		t.Fatalf("expected pdf under project exports dir: %v", err)
	}
}
