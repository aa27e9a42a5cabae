/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package gerberio

import "testing"

const sampleGerber = `%FSLAX34Y34*%
%ADD10C,0.0100*%
G01*
D10*
X100000Y100000D02*
X200000Y100000D01*
D03*
M02*
`

func TestParseApertureDefinition(t *testing.T) {
	f, err := Parse(sampleGerber)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ap, ok := f.ApertureOf(10)
	if !ok {
		t.Fatalf("expected aperture D10 to be defined")
	}
	if ap.Shape != ApCircle {
		t.Fatalf("expected circle aperture, got %v", ap.Shape)
	}
}

func TestParseTraceAndFlash(t *testing.T) {
	f, err := Parse(sampleGerber)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Traces) != 1 {
		t.Fatalf("expected 1 trace, got %d", len(f.Traces))
	}
	tr := f.Traces[0]
	if tr.From.X != 10 || tr.To.X != 20 {
		t.Fatalf("expected trace from x=10 to x=20 (mm, 3.4 format), got %+v", tr)
	}
	if len(f.Flashes) != 1 {
		t.Fatalf("expected 1 flash, got %d", len(f.Flashes))
	}
}

func TestParseRejectsMalformedFormatSpec(t *testing.T) {
	if _, err := Parse("%FS*%\n"); err == nil {
		t.Fatalf("expected malformed %%FS to error")
	}
}
