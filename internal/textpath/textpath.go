/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textpath tessellates a run of text into a geom.Path of real glyph
// outlines, using golang.org/x/image/font/sfnt against the Go Regular
// typeface embedded by golang.org/x/image/font/gofont/goregular. This backs
// Text shape Bounds/LocalPath with actual per-glyph advance widths and
// curves instead of a guessed character-count-times-size box.
package textpath

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"gcodekit5/internal/geom"
)

var (
	initOnce  sync.Once
	baseFont  *sfnt.Font
	initErr   error
	bufMu     sync.Mutex
	sharedBuf sfnt.Buffer
)

func ensureFont() (*sfnt.Font, error) {
	initOnce.Do(func() {
		baseFont, initErr = sfnt.Parse(goregular.TTF)
		if initErr != nil {
			initErr = fmt.Errorf("textpath: parse embedded typeface: %w", initErr)
		}
	})
	return baseFont, initErr
}

func toFixed(mm float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(mm * 64))
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// Advance returns r's advance width in mm at the given em size, using the
// font's real per-glyph metrics rather than an assumed character width.
func Advance(r rune, sizeMM float64) (float64, error) {
	f, err := ensureFont()
	if err != nil {
		return 0, err
	}
	ppem := toFixed(sizeMM)
	bufMu.Lock()
	defer bufMu.Unlock()
	gi, err := f.GlyphIndex(&sharedBuf, r)
	if err != nil {
		return 0, fmt.Errorf("textpath: glyph index for %q: %w", r, err)
	}
	adv, err := f.GlyphAdvance(&sharedBuf, gi, ppem, font.HintingNone)
	if err != nil {
		return 0, fmt.Errorf("textpath: advance for %q: %w", r, err)
	}
	return fromFixed(adv), nil
}

// LineHeightMM returns the font's recommended line height (ascent+descent
// plus line gap) at the given em size.
func LineHeightMM(sizeMM float64) (float64, error) {
	f, err := ensureFont()
	if err != nil {
		return 0, err
	}
	bufMu.Lock()
	defer bufMu.Unlock()
	m, err := f.Metrics(&sharedBuf, toFixed(sizeMM), font.HintingNone)
	if err != nil {
		return 0, fmt.Errorf("textpath: metrics: %w", err)
	}
	return fromFixed(m.Height), nil
}

// TextPath lays out content left to right at the given em size and returns
// the concatenated glyph outlines as one local-space geom.Path, plus the
// total advance width in mm. Each glyph's outline segments are translated by
// its pen position before appending, so the result is ready for
// geom.Tessellate/Bounds exactly like any other shape's LocalPath.
func TextPath(content string, sizeMM float64) (geom.Path, float64, error) {
	f, err := ensureFont()
	if err != nil {
		return geom.Path{}, 0, err
	}
	ppem := toFixed(sizeMM)

	bufMu.Lock()
	defer bufMu.Unlock()

	var out geom.Path
	var penX float64
	for _, r := range content {
		gi, err := f.GlyphIndex(&sharedBuf, r)
		if err != nil {
			return geom.Path{}, 0, fmt.Errorf("textpath: glyph index for %q: %w", r, err)
		}
		segs, err := f.LoadGlyph(&sharedBuf, gi, ppem, nil)
		if err != nil {
			return geom.Path{}, 0, fmt.Errorf("textpath: load glyph for %q: %w", r, err)
		}
		appendGlyph(&out, segs, penX)

		adv, err := f.GlyphAdvance(&sharedBuf, gi, ppem, font.HintingNone)
		if err != nil {
			return geom.Path{}, 0, fmt.Errorf("textpath: advance for %q: %w", r, err)
		}
		penX += fromFixed(adv)
	}
	return out, penX, nil
}

// appendGlyph translates one glyph's outline segments by dx (mm) on X and
// flips Y (font em-space is Y-up, this package's local shape space is
// Y-down, matching every other LocalPath in internal/shape) before
// appending to p.
func appendGlyph(p *geom.Path, segs []sfnt.Segment, dx float64) {
	pt := func(fp fixed.Point26_6) (float64, float64) {
		return fromFixed(fp.X) + dx, -fromFixed(fp.Y)
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			x, y := pt(seg.Args[0])
			p.MoveTo(x, y)
		case sfnt.SegmentOpLineTo:
			x, y := pt(seg.Args[0])
			p.LineTo(x, y)
		case sfnt.SegmentOpQuadTo:
			cx, cy := pt(seg.Args[0])
			x, y := pt(seg.Args[1])
			p.QuadTo(cx, cy, x, y)
		case sfnt.SegmentOpCubeTo:
			c1x, c1y := pt(seg.Args[0])
			c2x, c2y := pt(seg.Args[1])
			x, y := pt(seg.Args[2])
			p.CubicTo(c1x, c1y, c2x, c2y, x, y)
		}
	}
}

// Bounds tessellates content at sizeMM and returns its local-space bounding
// rect. This replaces a character-count heuristic with the true extent of
// the rendered glyph outlines, satisfying the bounds-enclosure invariant
// exactly (within the tessellation tolerance) rather than approximately.
func Bounds(content string, sizeMM float64, tolerance float64) (geom.Rect, error) {
	p, advance, err := TextPath(content, sizeMM)
	if err != nil {
		return geom.Rect{}, err
	}
	if p.IsEmpty() {
		// Whitespace-only or empty content: fall back to a thin box spanning
		// the advance width and the font's line height so Bounds never
		// collapses to a degenerate zero-size rect for a non-empty string.
		h, hErr := LineHeightMM(sizeMM)
		if hErr != nil {
			h = sizeMM
		}
		return geom.Rect{X: 0, Y: 0, W: advance, H: h}, nil
	}
	return p.Bounds(tolerance), nil
}
