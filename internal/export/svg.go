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
	"fmt"
	"os"
	"path/filepath"

	"gcodekit5/internal/storage"
)

// SVGOptions controls SVG setup-sheet export behavior.
// The coordinate system matches the document (millimeters); a viewBox maps
// that 1:1 onto the stock rectangle.
//
//nolint:revive // clarity is preferred
type SVGOptions struct {
	IncludeGuides  bool
	ShowCallouts   bool
	ShowToolTable  bool
	DPI            int
	GuideColor     [4]uint8
	ShapeStroke    [4]uint8
	StrokeWidthMM  float64
}

// ExportDesignSetupSheetSVG renders the document's stock outline, shape
// outlines, CAM operation callouts, and a tool table as a single SVG file.
func ExportDesignSetupSheetSVG(ph *storage.ProjectHandle, outPath string, opt SVGOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	d := ph.Doc

	guideCol := opt.GuideColor
	if guideCol == ([4]uint8{}) {
		guideCol = [4]uint8{0, 120, 255, 255}
	}
	shapeCol := opt.ShapeStroke
	if shapeCol == ([4]uint8{}) {
		shapeCol = [4]uint8{0, 0, 0, 255}
	}
	strokeW := opt.StrokeWidthMM
	if strokeW <= 0 {
		strokeW = 0.25
	}

	w, h := d.Stock.WidthMM, d.Stock.HeightMM
	if w <= 0 {
		w = 100
	}
	if h <= 0 {
		h = 100
	}
	rowH := 4.0
	tableH := 0.0
	if opt.ShowToolTable {
		tableH = rowH * float64(len(d.Tools)+1)
	}
	totalH := h + tableH

	dpi := opt.DPI
	if dpi <= 0 {
		dpi = 96
	}
	pxPerMM := float64(dpi) / 25.4
	pxW := int(w * pxPerMM)
	pxH := int(totalH * pxPerMM)

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"0 0 %g %g\">\n", pxW, pxH, w, totalH)
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", w, h)

	if opt.IncludeGuides {
		gc := svgColor(guideCol)
		wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\"/>\n", w, h, gc, strokeW)
	}

	sc := svgColor(shapeCol)
	for _, s := range d.Shapes {
		for _, ring := range shapeOutline(s) {
			if len(ring) == 0 {
				continue
			}
			wf("  <polyline points=\"")
			for _, p := range ring {
				wf("%g,%g ", p.X, p.Y)
			}
			wf("\" fill=\"none\" stroke=\"%s\" stroke-width=\"%g\"/>\n", sc, strokeW)
		}
	}

	if opt.ShowCallouts {
		for i, op := range d.Operations {
			c, ok := opCentroid(d, op)
			if !ok {
				continue
			}
			wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"3\" fill=\"#c00\">%s</text>\n",
				c.X, c.Y, escText(opLabel(i+1, op)))
		}
	}

	if opt.ShowToolTable {
		ty := h + rowH
		wf("  <g font-family=\"monospace\" font-size=\"3\" fill=\"#000\">\n")
		for i, t := range d.Tools {
			wf("    <text x=\"0\" y=\"%g\">%s</text>\n", ty+float64(i)*rowH, escText(toolTableRow(t)))
		}
		wf("  </g>\n")
	}

	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgColor(c [4]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
