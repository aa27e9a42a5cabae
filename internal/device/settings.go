/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package device

import "sync"

// SettingRow is one firmware configuration value, read from a "$N=V" line,
// with the display metadata a settings tab needs.
type SettingRow struct {
	ID          string
	Value       float64
	Unit        string
	Category    string
	ReadOnly    bool
	Description string
}

// DeviceSettings accumulates $N=V rows retrieved from the firmware (via a
// "$$" request) and tracks a pending overlay of edits the user has made but
// not yet sent, so the UI can show "modified" state before a write
// round-trips.
type DeviceSettings struct {
	mu      sync.Mutex
	rows    map[string]SettingRow
	pending map[string]float64

	// Expected, when > 0, is the number of rows a retrieval expects; Progress
	// reports (len(rows), Expected) so the UI can render a progress bar.
	expected int
}

// NewDeviceSettings returns an empty accumulator.
func NewDeviceSettings() *DeviceSettings {
	return &DeviceSettings{rows: map[string]SettingRow{}, pending: map[string]float64{}}
}

// BeginRetrieval resets the accumulator for a fresh "$$" request, recording
// how many rows the caller expects (0 if unknown).
func (d *DeviceSettings) BeginRetrieval(expected int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rows = map[string]SettingRow{}
	d.expected = expected
}

// Observe feeds one parsed "$N=V" row into the accumulator.
func (d *DeviceSettings) Observe(id string, value float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	row := d.rows[id]
	row.ID = id
	row.Value = value
	d.rows[id] = row
}

// Progress reports (rows accumulated so far, rows expected). Expected is 0
// when the retrieval didn't state a count up front.
func (d *DeviceSettings) Progress() (n, expected int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rows), d.expected
}

// Row returns the accumulated value for id, or ok=false if never observed.
func (d *DeviceSettings) Row(id string) (SettingRow, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.rows[id]
	return r, ok
}

// Rows returns every accumulated row, snapshotted.
func (d *DeviceSettings) Rows() map[string]SettingRow {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]SettingRow, len(d.rows))
	for k, v := range d.rows {
		out[k] = v
	}
	return out
}

// SetPending records a not-yet-sent edit for id, overlaying the retrieved
// value until it is written and confirmed (at which point ClearPending
// should be called once the corresponding "$N=V" row is re-observed).
func (d *DeviceSettings) SetPending(id string, value float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[id] = value
}

// ClearPending drops the pending overlay for id, used once a write is
// confirmed by re-reading the setting.
func (d *DeviceSettings) ClearPending(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pending, id)
}

// Effective returns the pending value for id if one is overlaid, otherwise
// the last retrieved value.
func (d *DeviceSettings) Effective(id string) (value float64, hasPending, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if v, has := d.pending[id]; has {
		return v, true, true
	}
	r, has := d.rows[id]
	return r.Value, false, has
}
