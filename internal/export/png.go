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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"gcodekit5/internal/storage"
)

// PNGOptions controls raster preview export behavior.
//
//nolint:revive // clarity is preferred
type PNGOptions struct {
	DPI         int
	ShapeStroke [4]uint8
}

// ExportDesignPreviewPNG rasterizes the stock and shape outlines to a single
// PNG, returning the encoded bytes in addition to writing outPath (when
// outPath is non-empty) so callers can feed the same render straight into
// internal/storage's preview cache without a round trip through disk.
func ExportDesignPreviewPNG(ph *storage.ProjectHandle, outPath string, opt PNGOptions) ([]byte, error) {
	if ph == nil {
		return nil, fmt.Errorf("project handle is nil")
	}
	d := ph.Doc

	shapeCol := opt.ShapeStroke
	if shapeCol == ([4]uint8{}) {
		shapeCol = [4]uint8{0, 0, 0, 255}
	}
	dpi := opt.DPI
	if dpi <= 0 {
		dpi = 96
	}

	w, h := d.Stock.WidthMM, d.Stock.HeightMM
	if w <= 0 {
		w = 100
	}
	if h <= 0 {
		h = 100
	}
	pxPerMM := float64(dpi) / 25.4
	pixW := int(w * pxPerMM)
	pixH := int(h * pxPerMM)
	if pixW < 1 {
		pixW = 1
	}
	if pixH < 1 {
		pixH = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	strokeRectBorder(img, 0, 0, pixW-1, pixH-1, toRGBA(shapeCol))

	sc := toRGBA(shapeCol)
	for _, s := range d.Shapes {
		for _, ring := range shapeOutline(s) {
			drawRingPixels(img, ring, pxPerMM, sc)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	if outPath != "" {
		if !filepath.IsAbs(outPath) {
			outPath = filepath.Join(ph.Root, "exports", outPath)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return nil, fmt.Errorf("ensure out dir: %w", err)
		}
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return nil, fmt.Errorf("write png: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func toRGBA(c [4]uint8) color.RGBA { return color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]} }

// drawRingPixels draws straight-line segments between consecutive points of
// a flattened shape ring, scaled from document mm to output pixels.
func drawRingPixels(img *image.RGBA, ring []point, pxPerMM float64, col color.RGBA) {
	for i := 1; i < len(ring); i++ {
		drawLine(img,
			int(ring[i-1].X*pxPerMM), int(ring[i-1].Y*pxPerMM),
			int(ring[i].X*pxPerMM), int(ring[i].Y*pxPerMM), col)
	}
}

// drawLine is a Bresenham line rasterizer — the teacher's axis-aligned
// strokeRect helper doesn't cover arbitrary shape outlines at arbitrary
// rotations, so a general line primitive replaces it here.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		if img.Bounds().Min.X <= x0 && x0 < img.Bounds().Max.X && img.Bounds().Min.Y <= y0 && y0 < img.Bounds().Max.Y {
			img.SetRGBA(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// strokeRectBorder draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRectBorder(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}
