/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import (
	"fmt"
	"strconv"
	"strings"
)

// MeasurementSystem selects display/parse units. Internal storage is always
// mm; unit changes re-render display values without mutating stored mm.
type MeasurementSystem int

const (
	Metric MeasurementSystem = iota
	Imperial
)

const mmPerInch = 25.4

// FormatLength renders mm in the given system to a human string, using up
// to 4 decimal places, trimmed of trailing zeros.
func FormatLength(mm float64, sys MeasurementSystem) string {
	switch sys {
	case Imperial:
		inches := mm / mmPerInch
		return trimTrailingZeros(strconv.FormatFloat(inches, 'f', 4, 64)) + "in"
	default:
		return trimTrailingZeros(strconv.FormatFloat(mm, 'f', 4, 64)) + "mm"
	}
}

func trimTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}

// ParseLength parses text in the given system into mm. It accepts decimal
// ("1.5"), fractional imperial ("1/4"), and mixed imperial ("1 1/2") forms.
// A trailing unit suffix (mm, cm, in, ") overrides sys. Whitespace around
// the fraction separator is tolerated.
func ParseLength(text string, sys MeasurementSystem) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, fmt.Errorf("parse length: empty input")
	}

	unit := sys
	switch {
	case strings.HasSuffix(s, "mm"):
		s = strings.TrimSuffix(s, "mm")
		unit = Metric
	case strings.HasSuffix(s, "cm"):
		v, err := parseImperialOrDecimal(strings.TrimSuffix(s, "cm"))
		if err != nil {
			return 0, err
		}
		return v * 10, nil
	case strings.HasSuffix(s, "in"):
		s = strings.TrimSuffix(s, "in")
		unit = Imperial
	case strings.HasSuffix(s, `"`):
		s = strings.TrimSuffix(s, `"`)
		unit = Imperial
	}
	s = strings.TrimSpace(s)

	v, err := parseImperialOrDecimal(s)
	if err != nil {
		return 0, err
	}
	if unit == Imperial {
		return v * mmPerInch, nil
	}
	return v, nil
}

// parseImperialOrDecimal parses "1", "1.", "1/4", or "1 1/2" into a plain
// numeric value (still in the caller's chosen unit).
func parseImperialOrDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse length: empty numeric component")
	}
	// Join "1 / 4" and "1/ 4" into "1/4" before splitting into fields.
	for strings.Contains(s, " /") || strings.Contains(s, "/ ") {
		s = strings.ReplaceAll(strings.ReplaceAll(s, " /", "/"), "/ ", "/")
	}
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		return parseOneField(fields[0])
	case 2:
		whole, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return 0, fmt.Errorf("parse length: bad whole part %q: %w", fields[0], err)
		}
		frac, err := parseFraction(fields[1])
		if err != nil {
			return 0, err
		}
		if whole < 0 {
			return whole - frac, nil
		}
		return whole + frac, nil
	default:
		return 0, fmt.Errorf("parse length: unrecognized format %q", s)
	}
}

func parseOneField(f string) (float64, error) {
	if strings.Contains(f, "/") {
		return parseFraction(f)
	}
	f = strings.TrimSuffix(f, ".")
	v, err := strconv.ParseFloat(f, 64)
	if err != nil {
		return 0, fmt.Errorf("parse length: bad value %q: %w", f, err)
	}
	return v, nil
}

func parseFraction(f string) (float64, error) {
	parts := strings.SplitN(f, "/", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("parse length: bad fraction %q", f)
	}
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("parse length: bad numerator %q: %w", parts[0], err)
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0, fmt.Errorf("parse length: bad denominator %q", parts[1])
	}
	return num / den, nil
}
