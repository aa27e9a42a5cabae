/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package toollib

import (
	"path/filepath"
	"testing"

	"gcodekit5/internal/domain"
)

func samplePreset(id string) Preset {
	return Preset{domain.Tool{ID: id, Name: "3.175mm endmill", DiameterMM: 3.175, FeedMMPerMin: 800, PlungeMMPerMin: 200, SpindleRPM: 12000}}
}

func TestSaveAndLoadProjectLibraryRoundTrips(t *testing.T) {
	root := t.TempDir()
	lib := NewLibrary()
	lib.Add(samplePreset("t1"))
	lib.Add(samplePreset("t2"))

	if err := SaveProjectLibrary(root, lib); err != nil {
		t.Fatalf("SaveProjectLibrary: %v", err)
	}

	loaded, err := LoadProjectLibrary(root)
	if err != nil {
		t.Fatalf("LoadProjectLibrary: %v", err)
	}
	if len(loaded.List()) != 2 {
		t.Fatalf("expected 2 presets, got %d", len(loaded.List()))
	}
	p, ok := loaded.Resolve("t1")
	if !ok || p.DiameterMM != 3.175 {
		t.Fatalf("unexpected resolved preset: %+v ok=%v", p, ok)
	}
}

func TestLoadProjectLibraryMissingDirIsEmpty(t *testing.T) {
	root := t.TempDir()
	lib, err := LoadProjectLibrary(root)
	if err != nil {
		t.Fatalf("LoadProjectLibrary: %v", err)
	}
	if len(lib.List()) != 0 {
		t.Fatalf("expected empty library, got %d", len(lib.List()))
	}
}

func TestExportAndImportPackRoundTrips(t *testing.T) {
	srcRoot := t.TempDir()
	lib := NewLibrary()
	lib.Add(samplePreset("t1"))
	if err := SaveProjectLibrary(srcRoot, lib); err != nil {
		t.Fatalf("SaveProjectLibrary: %v", err)
	}

	zipPath := filepath.Join(t.TempDir(), "pack.zip")
	if err := ExportPack(srcRoot, zipPath); err != nil {
		t.Fatalf("ExportPack: %v", err)
	}

	dstRoot := t.TempDir()
	n, err := ImportPack(dstRoot, zipPath)
	if err != nil {
		t.Fatalf("ImportPack: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 preset installed, got %d", n)
	}

	loaded, err := LoadProjectLibrary(dstRoot)
	if err != nil {
		t.Fatalf("LoadProjectLibrary: %v", err)
	}
	if _, ok := loaded.Resolve("t1"); !ok {
		t.Fatalf("expected t1 to be installed")
	}
}

func TestPresetToCAMToolCarriesFeedAndSpindle(t *testing.T) {
	p := samplePreset("t1")
	ct := p.ToCAMTool()
	if ct.DiameterMM != 3.175 || ct.FeedMMPerMin != 800 || ct.SpindleRPM != 12000 {
		t.Fatalf("unexpected cam.Tool conversion: %+v", ct)
	}
}

func TestPresetToCAMToolLaserKind(t *testing.T) {
	p := Preset{domain.Tool{ID: "laser1", Name: "diode laser", IsLaser: true}}
	ct := p.ToCAMTool()
	if ct.Kind == 0 {
		t.Fatalf("expected laser kind override, got %+v", ct)
	}
}
