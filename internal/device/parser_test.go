/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package device

import "testing"

func TestParseLineOK(t *testing.T) {
	r := ParseLine("ok")
	if r.Kind != RespOK {
		t.Fatalf("expected RespOK, got %v", r.Kind)
	}
}

func TestParseLineError(t *testing.T) {
	r := ParseLine("error:9")
	if r.Kind != RespError || r.Code != 9 {
		t.Fatalf("unexpected parse: %+v", r)
	}
}

func TestParseLineAlarm(t *testing.T) {
	r := ParseLine("ALARM:1")
	if r.Kind != RespAlarm || r.Code != 1 {
		t.Fatalf("unexpected parse: %+v", r)
	}
}

func TestParseLineStatusBasic(t *testing.T) {
	r := ParseLine("<Idle|MPos:0.000,0.000,0.000|FS:0,0>")
	if r.Kind != RespStatus {
		t.Fatalf("expected RespStatus, got %v", r.Kind)
	}
	if r.Status.State != StateIdle {
		t.Fatalf("expected Idle, got %v", r.Status.State)
	}
	if r.Status.MPos != (Pos3{0, 0, 0}) {
		t.Fatalf("unexpected MPos: %+v", r.Status.MPos)
	}
}

func TestParseLineStatusFull(t *testing.T) {
	r := ParseLine("<Run|MPos:1.000,2.000,0.000|WPos:1.000,2.000,0.000|FS:500,12000|Bf:15,128>")
	if r.Status.State != StateRun {
		t.Fatalf("expected Run, got %v", r.Status.State)
	}
	if r.Status.MPos != (Pos3{1, 2, 0}) || r.Status.WPos != (Pos3{1, 2, 0}) {
		t.Fatalf("unexpected positions: %+v", r.Status)
	}
	if r.Status.FeedMMPerMin != 500 || r.Status.SpindleRPM != 12000 {
		t.Fatalf("unexpected FS: %+v", r.Status)
	}
	if r.Status.BufferDepth != 15 {
		t.Fatalf("unexpected buffer depth: %+v", r.Status)
	}
}

func TestParseLineSettingsRow(t *testing.T) {
	r := ParseLine("$110=500.000")
	if r.Kind != RespSettingsRow || r.SettingID != "$110" || r.SettingValue != 500 {
		t.Fatalf("unexpected parse: %+v", r)
	}
}

func TestParseLineFeedback(t *testing.T) {
	r := ParseLine("[MSG:Caution: Unlocked]")
	if r.Kind != RespFeedback {
		t.Fatalf("expected RespFeedback, got %v", r.Kind)
	}
}

func TestParseLineUnknownNeverErrors(t *testing.T) {
	r := ParseLine("garbled nonsense !! \x00")
	if r.Kind != RespUnknown {
		t.Fatalf("expected RespUnknown, got %v", r.Kind)
	}
}

func TestMachineStateString(t *testing.T) {
	if StateAlarm.String() != "Alarm" {
		t.Fatalf("unexpected string: %s", StateAlarm.String())
	}
	if MachineState(99).String() != "Unknown" {
		t.Fatalf("expected Unknown for unrecognized state")
	}
}
