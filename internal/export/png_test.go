/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/png"
	"testing"

	"gcodekit5/internal/storage"
)

func TestExportDesignPreviewPNGReturnsDecodableImage(t *testing.T) {
	root := t.TempDir()
	ph, err := storage.InitProject(root, sampleSetupDocument())
	if err != nil {
		t.Fatalf("InitProject: %v", err)
	}

	data, err := ExportDesignPreviewPNG(ph, "", PNGOptions{DPI: 48})
	if err != nil {
		t.Fatalf("ExportDesignPreviewPNG: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty png bytes")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		t.Fatalf("unexpected image bounds: %+v", b)
	}
}
