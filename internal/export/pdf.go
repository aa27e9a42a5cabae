/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"gcodekit5/internal/storage"
)

// PDFOptions controls PDF setup-sheet export behavior. Units are millimeters,
// matching the document's own unit — the page is sized to the stock rather
// than to a fixed paper format, so the sheet is a 1:1 scale drawing.
//
//nolint:revive // keep options grouped and explicit for clarity
type PDFOptions struct {
	IncludeGuides bool
	ShowCallouts  bool
	ShowToolTable bool
	GuideColor    [4]uint8
	ShapeStroke   [4]uint8
	StrokeWidthMM float64
}

// ExportDesignSetupSheetPDF renders one page sized to the stock, with the
// stock outline, shape outlines, operation callouts, and — on a second page
// when present — the tool table.
func ExportDesignSetupSheetPDF(ph *storage.ProjectHandle, outPath string, opt PDFOptions) error {
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

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	title := d.Name
	if title == "" {
		title = "Setup sheet"
	}
	pdf.SetTitle(title, false)
	pdf.SetAuthor("GCodeKit5", false)
	pdf.SetFont("Helvetica", "", 3)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})

	if opt.IncludeGuides {
		setDrawColor(pdf, guideCol)
		pdf.SetLineWidth(strokeW)
		pdf.Rect(0, 0, w, h, "D")
	}

	setDrawColor(pdf, shapeCol)
	pdf.SetLineWidth(strokeW)
	for _, s := range d.Shapes {
		for _, ring := range shapeOutline(s) {
			drawPolyline(pdf, ring)
		}
	}

	if opt.ShowCallouts {
		pdf.SetTextColor(0xcc, 0x00, 0x00)
		for i, op := range d.Operations {
			c, ok := opCentroid(d, op)
			if !ok {
				continue
			}
			pdf.Text(c.X, c.Y, opLabel(i+1, op))
		}
		pdf.SetTextColor(0, 0, 0)
	}

	if opt.ShowToolTable && len(d.Tools) > 0 {
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})
		pdf.SetFont("Courier", "", 3)
		rowH := 4.0
		y := rowH
		for _, t := range d.Tools {
			pdf.Text(2, y, toolTableRow(t))
			y += rowH
		}
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(ph.Root, "exports", outPath)
	}
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// drawPolyline renders an open or closed polyline as a sequence of line
// segments; gofpdf has no native polyline primitive.
func drawPolyline(pdf *gofpdf.Fpdf, pts []point) {
	for i := 1; i < len(pts); i++ {
		pdf.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
	}
}

func setDrawColor(pdf *gofpdf.Fpdf, c [4]uint8) {
	pdf.SetDrawColor(int(c[0]), int(c[1]), int(c[2]))
}
