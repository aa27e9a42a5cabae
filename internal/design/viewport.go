/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package design

import "gcodekit5/internal/geom"

// Viewport maps design-space mm (y-up) to screen pixels (y-down), handling
// the single y-flip boundary so every other package can stay y-up.
type Viewport struct {
	PanX, PanY   float64 // mm, design-space point shown at the screen's bottom-left corner
	Zoom         float64 // screen px per mm
	ScreenHeight float64 // px, needed to flip y
}

// NewViewport creates a 1:1 viewport at the origin.
func NewViewport(screenHeight float64) Viewport {
	return Viewport{Zoom: 1, ScreenHeight: screenHeight}
}

// ToScreen maps a design-space point to screen pixels.
func (v Viewport) ToScreen(p geom.Pt) (x, y float64) {
	x = (p.X - v.PanX) * v.Zoom
	y = v.ScreenHeight - (p.Y-v.PanY)*v.Zoom
	return
}

// ToDesign maps a screen pixel back to design-space mm.
func (v Viewport) ToDesign(x, y float64) geom.Pt {
	zoom := v.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return geom.Pt{
		X: x/zoom + v.PanX,
		Y: (v.ScreenHeight-y)/zoom + v.PanY,
	}
}

// ZoomAt adjusts zoom by factor while keeping the design-space point under
// screen coordinates (sx, sy) fixed on screen.
func (v Viewport) ZoomAt(factor, sx, sy float64) Viewport {
	before := v.ToDesign(sx, sy)
	v.Zoom *= factor
	if v.Zoom < 0.01 {
		v.Zoom = 0.01
	}
	if v.Zoom > 1000 {
		v.Zoom = 1000
	}
	after := v.ToDesign(sx, sy)
	v.PanX += before.X - after.X
	v.PanY += before.Y - after.Y
	return v
}

// VisibleRect returns the design-space rect currently on screen, expanded
// by marginFrac (e.g. 0.1 for a 10% margin) on every side — used by render
// culling so shapes just offscreen still get tessellated ahead of a pan.
func (v Viewport) VisibleRect(screenWidth float64, marginFrac float64) geom.Rect {
	zoom := v.Zoom
	if zoom == 0 {
		zoom = 1
	}
	w := screenWidth / zoom
	h := v.ScreenHeight / zoom
	r := geom.Rect{X: v.PanX, Y: v.PanY, W: w, H: h}
	return r.Inset(-w*marginFrac, -h*marginFrac)
}
