/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gcode

import (
	"math"

	"gcodekit5/internal/geom"
)

// CommandKind tags a single interpreted instruction.
type CommandKind uint8

const (
	CmdMove CommandKind = iota
	CmdArc
	CmdDwell
	CmdToolChange
	CmdSpindleOn
	CmdSpindleOff
	CmdCoolantOn
	CmdCoolantOff
	CmdSetWCS
	CmdG10Offset
	CmdHome
	CmdProgramEnd
	CmdComment
)

// MoveKind distinguishes a rapid traverse from a feed-rate cut.
type MoveKind uint8

const (
	MoveRapid MoveKind = iota
	MoveFeed
)

// GCommand is the tagged result of folding one source line through modal
// state. Only the fields relevant to Kind are populated.
type GCommand struct {
	Kind CommandKind
	Line int // 1-based source line number, for diagnostics

	// CmdMove / CmdArc
	Start, End geom.Pt
	Z          float64
	Move       MoveKind
	Feed       float64
	Spindle    float64 // sticky S-word value (spindle RPM or laser power)

	// CmdArc only
	Center    geom.Pt
	Clockwise bool

	// CmdDwell
	DwellSeconds float64

	// CmdToolChange
	ToolNumber int

	// CmdSetWCS / CmdG10Offset
	WCSIndex int
	Offset   geom.Pt
	OffsetZ  float64

	// CmdComment
	Text string
}

// ModalState is the controller state that persists across lines until a
// command changes it: unit system, distance mode, active WCS, current
// position, feed rate, and spindle value. The active plane (G17/G18/G19) is
// not tracked; arcs are always interpreted in the XY plane.
type ModalState struct {
	Pos         geom.Pt
	Z           float64
	Absolute    bool // G90 (true) vs G91 (false)
	Metric      bool // G21 (true) vs G20 (false)
	ActiveWCS   int  // 0 = G54, 1 = G55, ...
	Feed        float64
	Spindle     float64 // sticky S-word: spindle RPM or laser power, last value set
	Axes        int     // 2 or 3; G10 output omits Z below 3
	wcsOffsets  [6]geom.Pt
	wcsOffsetZ  [6]float64
}

// NewModalState returns the controller's power-on defaults: absolute,
// metric, WCS G54, origin at (0,0,0).
func NewModalState(axes int) ModalState {
	if axes < 2 {
		axes = 2
	}
	return ModalState{Absolute: true, Metric: true, Axes: axes}
}

// Interpret folds a full program's lines through modal state and returns
// the resulting command stream. Unknown words are tolerated: a line with no
// recognized G/M code still updates position if it carries bare X/Y/Z/I/J
// words (a modal G1 continuation), matching how a real controller treats
// an omitted G-word as "repeat the last motion mode".
func Interpret(lines []string) ([]GCommand, ModalState) {
	return InterpretWithState(lines, NewModalState(3))
}

// InterpretWithState is Interpret but starting from an explicit initial
// state, used to resume mid-program (e.g. from a previous tool's ending
// position) or to honor a design's configured axis count.
func InterpretWithState(lines []string, state ModalState) ([]GCommand, ModalState) {
	var out []GCommand
	lastMotion := -1 // sticky G-code motion mode: 0,1,2,3, or -1 if none yet

	for i, raw := range lines {
		lineNo := i + 1
		tok := TokenizeLine(raw)
		if len(tok.Words) == 0 {
			if tok.Comment != "" {
				out = append(out, GCommand{Kind: CmdComment, Line: lineNo, Text: tok.Comment})
			}
			continue
		}

		gWord, hasG := tok.Find('G')
		mWord, hasM := tok.Find('M')
		if s, ok := tok.Find('S'); ok {
			state.Spindle = s
		}

		switch {
		case hasG && isInt(gWord, 90):
			state.Absolute = true
		case hasG && isInt(gWord, 91):
			state.Absolute = false
		case hasG && isInt(gWord, 21):
			state.Metric = true
		case hasG && isInt(gWord, 20):
			state.Metric = false
		case hasG && (isInt(gWord, 54) || isInt(gWord, 55) || isInt(gWord, 56) || isInt(gWord, 57) || isInt(gWord, 58) || isInt(gWord, 59)):
			idx := int(gWord) - 54
			state.ActiveWCS = idx
			out = append(out, GCommand{Kind: CmdSetWCS, Line: lineNo, WCSIndex: idx})
		case hasG && isInt(gWord, 28):
			out = append(out, GCommand{Kind: CmdHome, Line: lineNo})
		case hasG && isInt(gWord, 30):
			out = append(out, GCommand{Kind: CmdHome, Line: lineNo})
		case hasG && isInt(gWord, 92):
			// Coordinate system shift: treat as a silent origin reset, no
			// emitted command, matching how G92 has no cutting effect.
			if x, ok := tok.Find('X'); ok {
				state.Pos.X = x
			}
			if y, ok := tok.Find('Y'); ok {
				state.Pos.Y = y
			}
		case hasG && isInt(gWord, 10):
			cmd, ok := handleG10(tok, &state, lineNo)
			if ok {
				out = append(out, cmd)
			}
		case hasG && (isInt(gWord, 0) || isInt(gWord, 1) || isInt(gWord, 2) || isInt(gWord, 3)):
			lastMotion = int(gWord)
			cmd, advances := motionCommand(tok, &state, lineNo, lastMotion)
			if advances {
				out = append(out, cmd)
			}
		case !hasG && !hasM && hasCoordWord(tok) && lastMotion >= 0:
			cmd, advances := motionCommand(tok, &state, lineNo, lastMotion)
			if advances {
				out = append(out, cmd)
			}
		case hasM && isInt(mWord, 3):
			out = append(out, GCommand{Kind: CmdSpindleOn, Line: lineNo})
		case hasM && (isInt(mWord, 4)):
			out = append(out, GCommand{Kind: CmdSpindleOn, Line: lineNo})
		case hasM && isInt(mWord, 5):
			out = append(out, GCommand{Kind: CmdSpindleOff, Line: lineNo})
		case hasM && (isInt(mWord, 7) || isInt(mWord, 8)):
			out = append(out, GCommand{Kind: CmdCoolantOn, Line: lineNo})
		case hasM && isInt(mWord, 9):
			out = append(out, GCommand{Kind: CmdCoolantOff, Line: lineNo})
		case hasM && isInt(mWord, 6):
			tn := 0
			if t, ok := tok.Find('T'); ok {
				tn = int(t)
			}
			out = append(out, GCommand{Kind: CmdToolChange, Line: lineNo, ToolNumber: tn})
		case hasM && (isInt(mWord, 2) || isInt(mWord, 30)):
			out = append(out, GCommand{Kind: CmdProgramEnd, Line: lineNo})
		case hasG && isInt(gWord, 4):
			secs := 0.0
			if p, ok := tok.Find('P'); ok {
				secs = p
			}
			out = append(out, GCommand{Kind: CmdDwell, Line: lineNo, DwellSeconds: secs})
		default:
			// Unrecognized word combination: tolerated and skipped, matching
			// the tokenizer's general leniency.
		}

		if tok.Comment != "" {
			out = append(out, GCommand{Kind: CmdComment, Line: lineNo, Text: tok.Comment})
		}
	}
	return out, state
}

func hasCoordWord(l Line) bool {
	return l.HasLetter('X') || l.HasLetter('Y') || l.HasLetter('Z') || l.HasLetter('I') || l.HasLetter('J')
}

func isInt(v float64, n int) bool { return int(v) == n && v == float64(int(v)) }

func resolveTarget(tok Line, state *ModalState) (geom.Pt, float64) {
	x, z := state.Pos.X, state.Z
	y := state.Pos.Y
	if v, ok := tok.Find('X'); ok {
		if state.Absolute {
			x = v
		} else {
			x = state.Pos.X + v
		}
	}
	if v, ok := tok.Find('Y'); ok {
		if state.Absolute {
			y = v
		} else {
			y = state.Pos.Y + v
		}
	}
	if v, ok := tok.Find('Z'); ok {
		if state.Absolute {
			z = v
		} else {
			z = state.Z + v
		}
	}
	return geom.Pt{X: x, Y: y}, z
}

func motionCommand(tok Line, state *ModalState, lineNo, mode int) (GCommand, bool) {
	if !hasCoordWord(tok) {
		return GCommand{}, false
	}
	start := state.Pos
	startZ := state.Z
	end, z := resolveTarget(tok, state)
	if f, ok := tok.Find('F'); ok {
		state.Feed = f
	}

	cmd := GCommand{Line: lineNo, Start: start, End: end, Z: z, Feed: state.Feed, Spindle: state.Spindle}
	switch mode {
	case 0:
		cmd.Kind = CmdMove
		cmd.Move = MoveRapid
	case 1:
		cmd.Kind = CmdMove
		cmd.Move = MoveFeed
	case 2, 3:
		cmd.Kind = CmdArc
		cmd.Clockwise = mode == 2
		i, hasI := tok.Find('I')
		j, hasJ := tok.Find('J')
		if hasI || hasJ {
			cmd.Center = geom.Pt{X: start.X + i, Y: start.Y + j}
		} else if r, ok := tok.Find('R'); ok {
			cmd.Center = arcCenterFromRadius(start, end, r, mode == 2)
		} else {
			cmd.Center = start
		}
	}
	state.Pos = end
	state.Z = z
	_ = startZ
	return cmd, true
}

// arcCenterFromRadius derives an arc center from the classic R-word form,
// picking the center that gives the requested sweep direction and, for
// |R| ambiguity (the two candidate centers), preferring the minor arc for
// positive R and the major arc for negative R, matching common firmware
// convention (e.g. Marlin/grbl G2/G3 R-word handling).
func arcCenterFromRadius(start, end geom.Pt, r float64, clockwise bool) geom.Pt {
	mid := geom.Pt{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2}
	dx, dy := end.X-start.X, end.Y-start.Y
	chord := dx*dx + dy*dy
	if chord == 0 {
		return start
	}
	h2 := r*r - chord/4
	if h2 < 0 {
		h2 = 0
	}
	h := math.Sqrt(h2)
	// perpendicular unit vector
	clen := math.Sqrt(chord)
	px, py := -dy/clen, dx/clen
	sign := 1.0
	if (r < 0) != clockwise {
		sign = -1
	}
	return geom.Pt{X: mid.X + sign*h*px, Y: mid.Y + sign*h*py}
}

func handleG10(tok Line, state *ModalState, lineNo int) (GCommand, bool) {
	l, hasL := tok.Find('L')
	if !hasL {
		return GCommand{}, false
	}
	p, _ := tok.Find('P')
	idx := int(p) - 1
	if idx < 0 || idx >= 6 {
		idx = state.ActiveWCS
	}
	cmd := GCommand{Kind: CmdG10Offset, Line: lineNo, WCSIndex: idx}
	if isInt(l, 2) || isInt(l, 20) {
		if x, ok := tok.Find('X'); ok {
			cmd.Offset.X = x
			state.wcsOffsets[idx].X = x
		}
		if y, ok := tok.Find('Y'); ok {
			cmd.Offset.Y = y
			state.wcsOffsets[idx].Y = y
		}
		if state.Axes >= 3 {
			if z, ok := tok.Find('Z'); ok {
				cmd.OffsetZ = z
				state.wcsOffsetZ[idx] = z
			}
		}
		return cmd, true
	}
	return GCommand{}, false
}
