/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gcode

import "testing"

func TestInterpretRapidThenFeedMove(t *testing.T) {
	cmds, state := Interpret([]string{
		"G21 G90",
		"G0 X10 Y0 Z5",
		"G1 X10 Y10 F300",
	})
	if len(cmds) != 2 {
		t.Fatalf("expected 2 motion commands, got %d: %+v", len(cmds), cmds)
	}
	if cmds[0].Kind != CmdMove || cmds[0].Move != MoveRapid {
		t.Fatalf("expected first command to be a rapid move, got %+v", cmds[0])
	}
	if cmds[1].Kind != CmdMove || cmds[1].Move != MoveFeed || cmds[1].Feed != 300 {
		t.Fatalf("expected feed move at F300, got %+v", cmds[1])
	}
	if state.Pos.X != 10 || state.Pos.Y != 10 {
		t.Fatalf("expected final position (10,10), got %+v", state.Pos)
	}
}

func TestInterpretModalMotionContinuesWithoutGWord(t *testing.T) {
	cmds, _ := Interpret([]string{
		"G1 X0 Y0 F100",
		"X10 Y0",
		"X10 Y10",
	})
	if len(cmds) != 3 {
		t.Fatalf("expected 3 moves (modal continuation), got %d", len(cmds))
	}
	for _, c := range cmds {
		if c.Kind != CmdMove || c.Move != MoveFeed {
			t.Fatalf("expected all moves to stay in feed mode, got %+v", c)
		}
	}
}

func TestInterpretArcWithIJCenter(t *testing.T) {
	cmds, _ := Interpret([]string{
		"G1 X0 Y0 F100",
		"G2 X10 Y0 I5 J0",
	})
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(cmds))
	}
	arc := cmds[1]
	if arc.Kind != CmdArc || !arc.Clockwise {
		t.Fatalf("expected a clockwise arc, got %+v", arc)
	}
	if arc.Center.X != 5 || arc.Center.Y != 0 {
		t.Fatalf("expected center (5,0), got %+v", arc.Center)
	}
}

func TestInterpretRelativeDistanceMode(t *testing.T) {
	cmds, state := Interpret([]string{
		"G91",
		"G1 X5 Y0 F100",
		"X5 Y0",
	})
	if len(cmds) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(cmds))
	}
	if state.Pos.X != 10 {
		t.Fatalf("expected relative moves to accumulate to x=10, got %v", state.Pos.X)
	}
}

func TestInterpretToolChangeAndSpindle(t *testing.T) {
	cmds, _ := Interpret([]string{
		"T2 M6",
		"M3 S10000",
		"M5",
	})
	if len(cmds) != 3 {
		t.Fatalf("expected 3 commands, got %d: %+v", len(cmds), cmds)
	}
	if cmds[0].Kind != CmdToolChange || cmds[0].ToolNumber != 2 {
		t.Fatalf("expected tool change to T2, got %+v", cmds[0])
	}
	if cmds[1].Kind != CmdSpindleOn {
		t.Fatalf("expected spindle on, got %+v", cmds[1])
	}
	if cmds[2].Kind != CmdSpindleOff {
		t.Fatalf("expected spindle off, got %+v", cmds[2])
	}
}

func TestInterpretWCSSelection(t *testing.T) {
	cmds, state := Interpret([]string{"G55"})
	if len(cmds) != 1 || cmds[0].Kind != CmdSetWCS || cmds[0].WCSIndex != 1 {
		t.Fatalf("expected WCS select index 1, got %+v", cmds)
	}
	if state.ActiveWCS != 1 {
		t.Fatalf("expected state.ActiveWCS to be 1, got %d", state.ActiveWCS)
	}
}

func TestInterpretUnknownWordsAreTolerated(t *testing.T) {
	cmds, _ := Interpret([]string{"G999 X1 Y1", "(just a comment)"})
	if len(cmds) != 1 || cmds[0].Kind != CmdComment {
		t.Fatalf("expected unknown G-code to be skipped, comment kept, got %+v", cmds)
	}
}

func TestTokenizeLineStripsParentheticalMidLine(t *testing.T) {
	l := TokenizeLine("G1 X1 (rapid to start) Y2")
	if len(l.Words) != 3 {
		t.Fatalf("expected 3 words, got %d: %+v", len(l.Words), l.Words)
	}
	if l.Comment != "rapid to start" {
		t.Fatalf("expected extracted comment, got %q", l.Comment)
	}
}

func TestTokenizeLineStripsSemicolonComment(t *testing.T) {
	l := TokenizeLine("G1 X1 Y2 ; move to start")
	if len(l.Words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(l.Words))
	}
	if l.Comment != " move to start" && l.Comment != "move to start" {
		t.Fatalf("unexpected comment %q", l.Comment)
	}
}

func TestSplitWordsToleratesBareLetter(t *testing.T) {
	l := TokenizeLine("M3")
	v, ok := l.Find('M')
	if !ok || v != 3 {
		t.Fatalf("expected M3, got v=%v ok=%v", v, ok)
	}
}
