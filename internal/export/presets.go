/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"gcodekit5/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls batch export of a project's setup sheets across
// formats.
//
// Path semantics:
//   - If OutDir is empty, outputs go under <project>/exports/<preset>/; a
//     relative OutDir is created under <project>/exports/.
//   - Each format writes into its own subfolder (pdf/, svg/, png/) inside OutDir,
//     named design-setup-sheet.<ext> (design-preview.png for the raster form).
//
//nolint:revive // keep fields explicit for clarity
type BatchOptions struct {
	Preset        PresetName
	Formats       []string // allowed: pdf, svg, png; empty means preset defaults
	DPIOverride   int      // when > 0 overrides raster/vector DPI where applicable
	IncludeGuides *bool    // when set, overrides preset's default for guides
	OutDir        string   // base directory for outputs (relative paths go under <project>/exports)
}

// BatchExport runs exports according to the given preset.
func BatchExport(ph *storage.ProjectHandle, opt BatchOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}

	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	for i := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(formats[i]))
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	if !filepath.IsAbs(baseOut) {
		baseOut = filepath.Join(ph.Root, "exports", baseOut)
	}

	guides := presetIncludeGuides(opt.Preset)
	if opt.IncludeGuides != nil {
		guides = *opt.IncludeGuides
	}

	for _, f := range formats {
		switch f {
		case "pdf":
			out := filepath.Join(baseOut, "pdf", "design-setup-sheet.pdf")
			po := PDFOptions{IncludeGuides: guides, ShowCallouts: true, ShowToolTable: true}
			if err := ExportDesignSetupSheetPDF(ph, out, po); err != nil {
				return fmt.Errorf("pdf: %w", err)
			}
		case "svg":
			out := filepath.Join(baseOut, "svg", "design-setup-sheet.svg")
			so := SVGOptions{IncludeGuides: guides, ShowCallouts: true, ShowToolTable: true}
			if opt.DPIOverride > 0 {
				so.DPI = opt.DPIOverride
			}
			if err := ExportDesignSetupSheetSVG(ph, out, so); err != nil {
				return fmt.Errorf("svg: %w", err)
			}
		case "png":
			out := filepath.Join(baseOut, "png", "design-preview.png")
			po := PNGOptions{}
			if opt.DPIOverride > 0 {
				po.DPI = opt.DPIOverride
			}
			if _, err := ExportDesignPreviewPNG(ph, out, po); err != nil {
				return fmt.Errorf("png: %w", err)
			}
		default:
			return fmt.Errorf("unknown format: %s", f)
		}
	}
	return nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"pdf"}
	}
}

func presetIncludeGuides(p PresetName) bool {
	switch p {
	case PresetWeb:
		return false
	case PresetPrint:
		return true
	default:
		return true
	}
}
