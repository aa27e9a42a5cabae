/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package toollib manages a library of reusable tool presets and packages
// them as a single .zip pack for sharing between projects, the way the
// teacher's stylepack shares a project's visual style assets.
package toollib

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "gcodekit5/internal/log"

	"gcodekit5/internal/cam"
	"gcodekit5/internal/domain"
)

// manifestName is the root-level descriptor every pack carries, mirroring
// the teacher's stylepack.manifest.txt but machine-readable.
const manifestName = "toollib.manifest.json"

// packEntryDir is where individual preset JSON files live inside the pack
// and inside a project's own tool library directory on disk.
const packEntryDir = "tools"

// Preset is a named, reusable tool definition. It round-trips through
// domain.Tool so a project's design.json and a shared pack use one shape.
type Preset struct {
	domain.Tool
}

// ToCAMTool narrows a preset down to the fields a generator consumes,
// allowing a caller to override feed/plunge/RPM without mutating the
// library copy.
func (p Preset) ToCAMTool() cam.Tool {
	kind := cam.ToolEndMill
	switch strings.ToLower(p.Name) {
	case "drill":
		kind = cam.ToolDrill
	}
	if p.IsLaser {
		kind = cam.ToolLaser
	}
	return cam.Tool{
		Name:           p.Name,
		DiameterMM:     p.DiameterMM,
		Kind:           kind,
		FeedMMPerMin:   p.FeedMMPerMin,
		PlungeMMPerMin: p.PlungeMMPerMin,
		SpindleRPM:     float64(p.SpindleRPM),
	}
}

// Library is an in-memory, ID-indexed set of tool presets, loaded from a
// project's tools/ directory or a pack archive.
type Library struct {
	byID map[string]Preset
}

// NewLibrary returns an empty library.
func NewLibrary() *Library { return &Library{byID: map[string]Preset{}} }

// Add inserts or replaces a preset by its ID.
func (l *Library) Add(p Preset) {
	if l.byID == nil {
		l.byID = map[string]Preset{}
	}
	l.byID[p.ID] = p
}

// Resolve looks up a preset by ID, the form CAM operations reference it by.
func (l *Library) Resolve(id string) (Preset, bool) {
	p, ok := l.byID[id]
	return p, ok
}

// List returns all presets sorted by ID for stable output.
func (l *Library) List() []Preset {
	out := make([]Preset, 0, len(l.byID))
	for _, p := range l.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadProjectLibrary reads every preset JSON file from <projectRoot>/tools.
// A missing directory yields an empty library, not an error — new projects
// start with none.
func LoadProjectLibrary(projectRoot string) (*Library, error) {
	lib := NewLibrary()
	dir := filepath.Join(projectRoot, packEntryDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, fmt.Errorf("read tool library dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read preset %s: %w", e.Name(), err)
		}
		var p Preset
		if err := json.Unmarshal(b, &p); err != nil {
			return nil, fmt.Errorf("decode preset %s: %w", e.Name(), err)
		}
		lib.Add(p)
	}
	return lib, nil
}

// SaveProjectLibrary writes every preset to <projectRoot>/tools/<id>.json,
// one file per preset, so that an external pack install can add files
// without touching a shared document.
func SaveProjectLibrary(projectRoot string, lib *Library) error {
	dir := filepath.Join(projectRoot, packEntryDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure tool library dir: %w", err)
	}
	for _, p := range lib.List() {
		b, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return fmt.Errorf("encode preset %s: %w", p.ID, err)
		}
		b = append(b, '\n')
		path := filepath.Join(dir, p.ID+".json")
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return fmt.Errorf("write preset %s: %w", p.ID, err)
		}
	}
	return nil
}

// ExportPack zips a project's tool library into a single .zip pack file,
// with a JSON manifest describing its contents.
func ExportPack(projectRoot, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("toollib"), "export").With(slog.String("project", projectRoot))
	if strings.TrimSpace(projectRoot) == "" {
		return errors.New("projectRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}

	lib, err := LoadProjectLibrary(projectRoot)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	presets := lib.List()
	manifest := struct {
		Created string   `json:"created"`
		Count   int      `json:"count"`
		IDs     []string `json:"ids"`
	}{Created: time.Now().Format(time.RFC3339), Count: len(presets)}
	for _, p := range presets {
		manifest.IDs = append(manifest.IDs, p.ID)
	}
	mb, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := addFile(zw, manifestName, mb); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	for _, p := range presets {
		b, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return fmt.Errorf("encode preset %s: %w", p.ID, err)
		}
		name := filepath.ToSlash(filepath.Join(packEntryDir, p.ID+".json"))
		if err := addFile(zw, name, b); err != nil {
			return fmt.Errorf("zip add preset %s: %w", p.ID, err)
		}
	}

	l.Info("tool pack exported", slog.Int("presets", len(presets)), slog.String("zip", destZipPath))
	return nil
}

// ImportPack installs every preset from a pack archive into a project's
// tool library. Existing IDs are overwritten — packs are meant to push
// updates to shared tooling, unlike the teacher's skip-if-exists style
// install (user style choices are intentionally never clobbered; tool specs
// are expected to be the library owner's source of truth).
func ImportPack(projectRoot, packZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("toollib"), "import").With(slog.String("project", projectRoot))
	if strings.TrimSpace(projectRoot) == "" {
		return 0, errors.New("projectRoot is required")
	}
	if strings.TrimSpace(packZipPath) == "" {
		return 0, errors.New("packZipPath is required")
	}

	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return 0, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	lib, err := LoadProjectLibrary(projectRoot)
	if err != nil {
		return 0, err
	}

	installed := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || f.Name == manifestName {
			continue
		}
		if !strings.HasPrefix(f.Name, packEntryDir+"/") || !strings.HasSuffix(f.Name, ".json") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return installed, fmt.Errorf("open pack entry %s: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return installed, fmt.Errorf("read pack entry %s: %w", f.Name, err)
		}
		var p Preset
		if err := json.Unmarshal(b, &p); err != nil {
			return installed, fmt.Errorf("decode pack entry %s: %w", f.Name, err)
		}
		lib.Add(p)
		installed++
	}

	if err := SaveProjectLibrary(projectRoot, lib); err != nil {
		return installed, err
	}
	l.Info("tool pack installed", slog.Int("presets", installed))
	return installed, nil
}

func addFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
