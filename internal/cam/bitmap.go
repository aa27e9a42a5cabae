/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cam

import (
	"image"

	"gcodekit5/internal/camerr"
)

// BitmapParams configures raster engraving of a grayscale intensity map.
type BitmapParams struct {
	Params
	DotPitchMM    float64 // spacing between raster samples, matched to tool/spot size
	MaxPowerS     float64 // S-word at full intensity (white or black, per Invert)
	Invert        bool    // true: dark pixels get high power (engraving); false: light pixels do
	Threshold     float64 // 0..1; 0 disables halftone thresholding
	Bidirectional bool
}

// EngraveBitmap rasters img at DotPitchMM spacing, emitting G1 moves with
// spindle/laser power (S word) modulated by per-sample intensity. Rows
// alternate direction when Bidirectional, matching a serpentine raster
// pass.
func EngraveBitmap(img image.Image, originX, originY float64, p BitmapParams) (Program, error) {
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	if p.DotPitchMM <= 0 {
		return Program{}, camerr.New(camerr.KindValidation, "EngraveBitmap", camerr.ErrInvalidGeometry)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return Program{}, camerr.New(camerr.KindValidation, "EngraveBitmap", camerr.ErrInvalidGeometry)
	}

	wr := newWriter(axesOrDefault(p.Axes))
	wr.comment("bitmap engrave")

	for row := 0; row < h; row++ {
		cols := colRange(w, row, p.Bidirectional)
		y := originY + float64(row)*p.DotPitchMM
		first := true
		for _, col := range cols {
			x := originX + float64(col)*p.DotPitchMM
			intensity := sampleIntensity(img, bounds.Min.X+col, bounds.Min.Y+row, p)
			if first {
				safeZ := p.SafeZMM
				wr.rapid(x, y, &safeZ)
				wr.feedZ(p.CutDepthMM, p.Tool.PlungeMMPerMin)
				first = false
			}
			power := intensity * p.MaxPowerS
			wr.feedS(x, y, p.Tool.FeedMMPerMin, power)
		}
		wr.rapidZ(p.SafeZMM)
	}

	return wr.program(), nil
}

func colRange(w, row int, bidirectional bool) []int {
	cols := make([]int, w)
	for i := range cols {
		cols[i] = i
	}
	if bidirectional && row%2 == 1 {
		for i, j := 0, len(cols)-1; i < j; i, j = i+1, j-1 {
			cols[i], cols[j] = cols[j], cols[i]
		}
	}
	return cols
}

// sampleIntensity returns a 0..1 engraving intensity for pixel (x,y):
// luminance, inverted per p.Invert, optionally thresholded to a 0/1
// halftone.
func sampleIntensity(img image.Image, x, y int, p BitmapParams) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	lum := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 65535
	if p.Invert {
		lum = 1 - lum
	}
	if p.Threshold > 0 {
		if lum >= p.Threshold {
			return 1
		}
		return 0
	}
	return lum
}
