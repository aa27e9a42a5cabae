/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package gerberio parses the RS-274X subset needed for isolation routing:
// format spec, aperture definitions (circle/rect/obround), linear/circular
// interpolation, and flash/draw operations. G74/G75 quadrant-mode commands
// are accepted and recorded, but arc centers are always read as the start
// point plus the signed I/J offsets (the G75 form); single-quadrant G74
// offsets are not resolved. It does not attempt full macro-aperture or
// block-aperture support.
package gerberio

import (
	"math"
	"strconv"
	"strings"

	"gcodekit5/internal/camerr"
	"gcodekit5/internal/geom"
)

// ApertureShape names the standard aperture template.
type ApertureShape int

const (
	ApCircle ApertureShape = iota
	ApRectangle
	ApObround
)

// Aperture is a standard-template tool definition from a %ADDnn command.
type Aperture struct {
	Code     int
	Shape    ApertureShape
	SizeX    float64 // diameter for circle, width for rect/obround
	SizeY    float64 // height for rect/obround, unused for circle
	HoleDiam float64
}

// InterpMode is the active G-code interpolation mode.
type InterpMode int

const (
	Linear InterpMode = iota
	CWArc
	CCWArc
)

// Flash is a single aperture flash (a pad stamped at one point).
type Flash struct {
	Aperture int
	At       geom.Pt
}

// Trace is one draw operation between two points using the active
// aperture as the trace width.
type Trace struct {
	Aperture int
	From, To geom.Pt
	Mode     InterpMode
	Center   geom.Pt // arc center, valid when Mode != Linear
	CW       bool
}

// File is a parsed Gerber document: its apertures plus the flash/trace
// operations in source order.
type File struct {
	Apertures map[int]Aperture
	Flashes   []Flash
	Traces    []Trace
}

// ApertureOf resolves a flash/trace's aperture, returning false if undefined.
func (f *File) ApertureOf(code int) (Aperture, bool) {
	a, ok := f.Apertures[code]
	return a, ok
}

type parseState struct {
	f              File
	xScale, yScale float64 // units per coordinate digit, per %FS/%MO
	quadrantMulti  bool    // G75 (true) vs G74 (single-quadrant, false)
	mode           InterpMode
	currentAp      int
	pos            geom.Pt
	interpolating  bool
}

// Parse reads Gerber RS-274X source text and returns the parsed file.
// Unrecognized extended commands (macro apertures, block apertures, step
// and repeat) are skipped rather than treated as a parse error, matching
// how real isolation-routing tools only need the geometric subset.
func Parse(src string) (*File, error) {
	st := &parseState{
		f:      File{Apertures: map[int]Aperture{}},
		xScale: 1e-4, // default: 2.4 format, inches-as-0.0001in units overridden by %FS
		yScale: 1e-4,
	}

	for _, raw := range strings.Split(src, "\n") {
		for _, cmd := range splitCommands(raw) {
			if err := st.apply(cmd); err != nil {
				return nil, err
			}
		}
	}
	return &st.f, nil
}

// splitCommands splits a line on '*' (the Gerber command terminator),
// dropping empty trailing fragments.
func splitCommands(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	parts := strings.Split(line, "*")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (st *parseState) apply(cmd string) error {
	switch {
	case strings.HasPrefix(cmd, "%FS"):
		return st.parseFormat(cmd)
	case strings.HasPrefix(cmd, "%AD"):
		return st.parseAperture(cmd)
	case strings.HasPrefix(cmd, "%MO"):
		return nil // unit mode folded into %FS scale in this subset
	case cmd == "G01":
		st.mode = Linear
	case cmd == "G02":
		st.mode = CWArc
	case cmd == "G03":
		st.mode = CCWArc
	case cmd == "G74":
		st.quadrantMulti = false
	case cmd == "G75":
		st.quadrantMulti = true
	case cmd == "M02" || cmd == "M00":
		return nil
	case strings.HasPrefix(cmd, "D") && !strings.ContainsAny(cmd, "XY"):
		return st.selectAperture(cmd)
	case strings.ContainsAny(cmd, "XY"):
		return st.parseCoordOp(cmd)
	}
	return nil
}

func (st *parseState) parseFormat(cmd string) error {
	// %FSLAX34Y34* -> 3 integer digits, 4 decimal digits per axis
	idx := strings.Index(cmd, "X")
	if idx < 0 || idx+2 >= len(cmd) {
		return camerr.New(camerr.KindProtocol, "gerberio.parseFormat", camerr.ErrMalformedResponse)
	}
	decDigits := int(cmd[idx+2] - '0')
	if decDigits <= 0 || decDigits > 6 {
		decDigits = 4
	}
	scale := 1.0 / math.Pow10(decDigits)
	st.xScale, st.yScale = scale, scale
	return nil
}

func (st *parseState) parseAperture(cmd string) error {
	body := strings.TrimPrefix(cmd, "%AD")
	if len(body) == 0 || body[0] != 'D' {
		return camerr.New(camerr.KindProtocol, "gerberio.parseAperture", camerr.ErrMalformedResponse)
	}
	body = body[1:]
	numEnd := 0
	for numEnd < len(body) && body[numEnd] >= '0' && body[numEnd] <= '9' {
		numEnd++
	}
	code, err := strconv.Atoi(body[:numEnd])
	if err != nil {
		return camerr.New(camerr.KindProtocol, "gerberio.parseAperture", camerr.ErrMalformedResponse)
	}
	rest := body[numEnd:]
	comma := strings.Index(rest, ",")
	if comma < 0 {
		return camerr.New(camerr.KindProtocol, "gerberio.parseAperture", camerr.ErrMalformedResponse)
	}
	shapeCode := rest[:comma]
	dims := strings.Split(rest[comma+1:], "X")

	ap := Aperture{Code: code}
	switch shapeCode {
	case "C":
		ap.Shape = ApCircle
		ap.SizeX = parseFloatOr(dims, 0)
		if len(dims) > 1 {
			ap.HoleDiam = parseFloatOr(dims, 1)
		}
	case "R":
		ap.Shape = ApRectangle
		ap.SizeX = parseFloatOr(dims, 0)
		ap.SizeY = parseFloatOr(dims, 1)
	case "O":
		ap.Shape = ApObround
		ap.SizeX = parseFloatOr(dims, 0)
		ap.SizeY = parseFloatOr(dims, 1)
	default:
		return nil // macro aperture reference: not geometrically resolvable here
	}
	st.f.Apertures[code] = ap
	return nil
}

func parseFloatOr(fields []string, i int) float64 {
	if i >= len(fields) {
		return 0
	}
	v, err := strconv.ParseFloat(fields[i], 64)
	if err != nil {
		return 0
	}
	return v
}

func (st *parseState) selectAperture(cmd string) error {
	n, err := strconv.Atoi(strings.TrimPrefix(cmd, "D"))
	if err != nil {
		return camerr.New(camerr.KindProtocol, "gerberio.selectAperture", camerr.ErrMalformedResponse)
	}
	if n < 10 {
		// D01-D09 are operation codes, not apertures; a bare D03 flashes the
		// current aperture at the current point.
		if n == 3 {
			st.f.Flashes = append(st.f.Flashes, Flash{Aperture: st.currentAp, At: st.pos})
		}
		return nil
	}
	st.currentAp = n
	return nil
}

// parseCoordOp handles one X.../Y.../I.../J.../D0n operation: D01 draw/arc,
// D02 move (no cut), D03 flash.
func (st *parseState) parseCoordOp(cmd string) error {
	x, y, i, j, dcode, hasD := parseXYIJD(cmd)
	next := geom.Pt{X: st.pos.X, Y: st.pos.Y}
	if x != nil {
		next.X = float64(*x) * st.xScale
	}
	if y != nil {
		next.Y = float64(*y) * st.yScale
	}

	switch {
	case hasD && dcode == 2:
		st.pos = next
	case hasD && dcode == 3:
		st.f.Flashes = append(st.f.Flashes, Flash{Aperture: st.currentAp, At: next})
		st.pos = next
	default: // D01 or modal (no D word repeats last, typically D01)
		tr := Trace{Aperture: st.currentAp, From: st.pos, To: next, Mode: st.mode}
		if st.mode != Linear {
			cx, cy := st.pos.X, st.pos.Y
			if i != nil {
				cx = st.pos.X + float64(*i)*st.xScale
			}
			if j != nil {
				cy = st.pos.Y + float64(*j)*st.yScale
			}
			tr.Center = geom.Pt{X: cx, Y: cy}
			tr.CW = st.mode == CWArc
		}
		st.f.Traces = append(st.f.Traces, tr)
		st.pos = next
	}
	return nil
}

func parseXYIJD(cmd string) (x, y, i, j *int64, dcode int, hasD bool) {
	fields := map[byte]*int64{}
	var cur byte
	start := -1
	flush := func(end int) {
		if cur != 0 && start >= 0 {
			v, err := strconv.ParseInt(cmd[start:end], 10, 64)
			if err == nil {
				val := v
				fields[cur] = &val
			}
		}
	}
	for k := 0; k < len(cmd); k++ {
		c := cmd[k]
		if c == 'X' || c == 'Y' || c == 'I' || c == 'J' || c == 'D' {
			flush(k)
			cur = c
			start = k + 1
		}
	}
	flush(len(cmd))

	if v, ok := fields['D']; ok {
		hasD = true
		dcode = int(*v)
	}
	return fields['X'], fields['Y'], fields['I'], fields['J'], dcode, hasD
}
