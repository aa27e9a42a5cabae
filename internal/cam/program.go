/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cam generates G-code programs from shapes, raster images, and
// Gerber files: Outline, Pocket, Drill, bitmap/vector engraving, Gerber
// isolation, tabbed box, jigsaw puzzle, and spoilboard surfacing. Every
// generator is a pure function of its input and Params — no clock, no
// random seed, so identical inputs always produce byte-identical output.
package cam

import (
	"fmt"
	"strconv"
	"strings"
)

// Program is an emitted G-code program as an ordered line list, plus the
// axis count it was generated for (governs whether G10 offsets carry Z).
type Program struct {
	Lines []string
	Axes  int
}

// String joins the program into text with a trailing newline per line.
func (p Program) String() string {
	var sb strings.Builder
	for _, l := range p.Lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// writer accumulates lines and tracks the last emitted feed rate/spindle
// value so it only writes F/S words when they change, matching how a real
// post-processor avoids redundant modal words.
type writer struct {
	lines      []string
	lastFeed   float64
	lastS      float64
	haveFeed   bool
	haveS      bool
	axes       int
}

func newWriter(axes int) *writer {
	if axes < 2 {
		axes = 2
	}
	return &writer{axes: axes}
}

func (w *writer) emit(s string) { w.lines = append(w.lines, s) }

func (w *writer) comment(s string) { w.emit("(" + s + ")") }

func fnum(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		s = "0"
	}
	return s
}

func (w *writer) feedWord(feed float64) string {
	if !w.haveFeed || feed != w.lastFeed {
		w.lastFeed = feed
		w.haveFeed = true
		return " F" + fnum(feed)
	}
	return ""
}

func (w *writer) spindleWord(s float64) string {
	if !w.haveS || s != w.lastS {
		w.lastS = s
		w.haveS = true
		return " S" + fnum(s)
	}
	return ""
}

// rapid emits a G0 to (x, y[, z]).
func (w *writer) rapid(x, y float64, z *float64) {
	line := fmt.Sprintf("G0 X%s Y%s", fnum(x), fnum(y))
	if z != nil {
		line += " Z" + fnum(*z)
	}
	w.emit(line)
}

// rapidZ emits a Z-only rapid, used for safe-Z retracts/plunges setup.
func (w *writer) rapidZ(z float64) {
	w.emit("G0 Z" + fnum(z))
}

// feed emits a G1 to (x, y[, z]) at feedRate; feedS is the variant that
// also carries spindle/laser power.
func (w *writer) feed(x, y float64, z *float64, feedRate float64) {
	line := fmt.Sprintf("G1 X%s Y%s", fnum(x), fnum(y))
	if z != nil {
		line += " Z" + fnum(*z)
	}
	line += w.feedWord(feedRate)
	w.emit(line)
}

func (w *writer) feedS(x, y float64, feedRate, s float64) {
	line := fmt.Sprintf("G1 X%s Y%s", fnum(x), fnum(y))
	line += w.feedWord(feedRate)
	line += w.spindleWord(s)
	w.emit(line)
}

// feedZ emits a Z-only plunge/retract at feed rate, used for ramping and
// drill cycles.
func (w *writer) feedZ(z, feedRate float64) {
	w.emit("G1 Z" + fnum(z) + w.feedWord(feedRate))
}

func (w *writer) dwell(seconds float64) {
	w.emit("G4 P" + fnum(seconds))
}

func (w *writer) spindleOn(rpm float64) {
	w.emit("M3 S" + fnum(rpm))
}

func (w *writer) spindleOff() {
	w.emit("M5")
}

// wcsOffset emits a G10 L2 work-offset command, omitting Z when the
// program targets fewer than 3 axes.
func (w *writer) wcsOffset(wcsIndex int, x, y, z float64) {
	line := fmt.Sprintf("G10 L2 P%d X%s Y%s", wcsIndex+1, fnum(x), fnum(y))
	if w.axes >= 3 {
		line += " Z" + fnum(z)
	}
	w.emit(line)
}

func (w *writer) program() Program {
	return Program{Lines: w.lines, Axes: w.axes}
}
