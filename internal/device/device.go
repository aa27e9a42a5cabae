/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package device

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"gcodekit5/internal/cam"
	"gcodekit5/internal/camerr"
	"gcodekit5/internal/config"
	"gcodekit5/internal/events"
	applog "gcodekit5/internal/log"
)

// ConnectionState is the coarse connection lifecycle a UI status dot binds to.
type ConnectionState int

const (
	ConnDisconnected ConnectionState = iota
	ConnConnecting
	ConnConnected
)

// ConnectionEvent reports a connection lifecycle transition.
type ConnectionEvent struct {
	State ConnectionState
	Err   error
}

// ErrorEvent carries a device-link failure: communication (disconnect,
// alarm, controller error code) or protocol (malformed response).
type ErrorEvent struct{ Err error }

// RawLineEvent forwards every line received verbatim, including feedback
// ([MSG:...], [GC:...]) this package otherwise only logs.
type RawLineEvent struct{ Line string }

// SettingsRowEvent reports one accumulated firmware setting during a "$$"
// retrieval.
type SettingsRowEvent struct{ Row SettingRow }

// Device wires a Transport, BufferedWriter, line parser, status poller, and
// settings accumulator into one connection, publishing every observable
// transition on typed event buses with opaque subscription tokens — see
// internal/events. Shared state touched from the transport's reader
// goroutine (status, in-progress settings retrieval) is guarded by mu; a
// panic while handling one line is recovered and logged, never propagated
// across the connection boundary, the way internal/crash recovers at the
// process boundary.
type Device struct {
	transport Transport
	writer    *BufferedWriter
	settings  *DeviceSettings
	poller    *statusPoller
	pollHz    int
	log       *slog.Logger

	ConnectionBus *events.Bus[ConnectionEvent]
	StatusBus     *events.Bus[ControllerStatus]
	SettingsBus   *events.Bus[SettingsRowEvent]
	ErrorBus      *events.Bus[ErrorEvent]
	RawLineBus    *events.Bus[RawLineEvent]
	SendStatusBus *events.Bus[SendStatusEvent]

	mu     sync.Mutex
	status ControllerStatus
}

// Options configures a new Device.
type Options struct {
	// Window bounds the buffered writer's in-flight command count before any
	// status report reveals the controller's actual buffer depth.
	Window int
	// PollHz is the status-poll rate; DefaultPollHz if <= 0.
	PollHz int
}

// New wires transport into a Device, ready to Connect.
func New(transport Transport, opt Options) *Device {
	d := &Device{
		transport:     transport,
		settings:      NewDeviceSettings(),
		pollHz:        opt.PollHz,
		log:           applog.WithComponent("device"),
		ConnectionBus: events.NewBus[ConnectionEvent](),
		StatusBus:     events.NewBus[ControllerStatus](),
		SettingsBus:   events.NewBus[SettingsRowEvent](),
		ErrorBus:      events.NewBus[ErrorEvent](),
		RawLineBus:    events.NewBus[RawLineEvent](),
		SendStatusBus: events.NewBus[SendStatusEvent](),
	}
	d.writer = NewBufferedWriter(transport, opt.Window, func(ev SendStatusEvent) { d.SendStatusBus.Publish(ev) })
	return d
}

// Connect opens the transport (bounded by DefaultConnectTimeout if ctx
// carries no deadline) and starts the status poller.
func (d *Device) Connect(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultConnectTimeout)
		defer cancel()
	}
	d.transport.OnBytesReceived(d.handleLine)
	d.ConnectionBus.Publish(ConnectionEvent{State: ConnConnecting})
	if err := d.transport.Connect(ctx); err != nil {
		wrapped := camerr.New(camerr.KindCommunication, "device.connect", err)
		d.ConnectionBus.Publish(ConnectionEvent{State: ConnDisconnected, Err: wrapped})
		return wrapped
	}
	d.poller = newStatusPoller(d.pollHz, d.sendStatusQuery, d.onSilentController)
	d.poller.start()
	d.ConnectionBus.Publish(ConnectionEvent{State: ConnConnected})
	return nil
}

// Disconnect stops the status poller and closes the transport.
func (d *Device) Disconnect() error {
	if d.poller != nil {
		d.poller.stopPolling()
	}
	err := d.transport.Disconnect()
	d.ConnectionBus.Publish(ConnectionEvent{State: ConnDisconnected, Err: err})
	return err
}

// IsConnected reflects the underlying transport's state.
func (d *Device) IsConnected() bool { return d.transport.IsConnected() }

// Status returns the most recently parsed controller status.
func (d *Device) Status() ControllerStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Settings returns the settings accumulator backing the firmware config tab.
func (d *Device) Settings() *DeviceSettings { return d.settings }

// SendLine queues one G-code/command line through the buffered writer.
func (d *Device) SendLine(line string) error { return d.writer.Enqueue(line) }

// SendProgram streams an entire generated program line by line through the
// buffered writer, respecting the in-flight window exactly as a single
// SendLine call would.
func (d *Device) SendProgram(p cam.Program) error {
	for _, line := range p.Lines {
		if err := d.writer.Enqueue(line); err != nil {
			return err
		}
	}
	return nil
}

// InFlightDepth reports the buffered writer's current in-flight count, the
// value the end-to-end scenario checks rises to 1 then falls back to 0.
func (d *Device) InFlightDepth() int { return d.writer.Depth() }

// ResumeAfterAlarm clears the writer's Hold state after the user explicitly
// acknowledges a controller alarm.
func (d *Device) ResumeAfterAlarm() error { return d.writer.Resume() }

// RequestSettings sends "$$" and resets the accumulator for a fresh
// retrieval. Use d.Settings().Progress() to track completion; GRBL's
// response gives no explicit terminator, so callers typically consider the
// retrieval done after a short quiet period with no new rows.
func (d *Device) RequestSettings() error {
	d.settings.BeginRetrieval(0)
	return d.writer.Enqueue("$$")
}

// LoadConnectionToken reads a previously saved auth token for a TCP-bridge
// device identified by portOrHost, via internal/config's keyring-backed
// TokenStore. Never stored in the YAML config file in cleartext.
func LoadConnectionToken(portOrHost string) (string, error) {
	return config.LoadDeviceToken(portOrHost)
}

// SaveConnectionToken persists portOrHost's auth token to the OS keyring.
func SaveConnectionToken(portOrHost, token string) error {
	return config.SaveDeviceToken(portOrHost, token)
}

func (d *Device) sendStatusQuery() {
	_ = d.transport.Send([]byte("?"))
}

func (d *Device) onSilentController() {
	err := camerr.New(camerr.KindCommunication, "device.poll", camerr.ErrDisconnected)
	_ = d.transport.Disconnect()
	d.ErrorBus.Publish(ErrorEvent{Err: err})
	d.ConnectionBus.Publish(ConnectionEvent{State: ConnDisconnected, Err: err})
}

// handleLine is invoked on the transport's reader goroutine, once per
// received line, in arrival order (FIFO ack-to-send matching depends on
// that ordering being preserved).
func (d *Device) handleLine(line string) {
	defer d.recoverPoison()

	d.RawLineBus.Publish(RawLineEvent{Line: line})
	resp := ParseLine(line)
	switch resp.Kind {
	case RespOK:
		d.writer.OnAck()
	case RespError:
		err := d.writer.OnError(resp.Code, false)
		d.ErrorBus.Publish(ErrorEvent{Err: err})
	case RespAlarm:
		err := d.writer.OnError(resp.Code, true)
		d.ErrorBus.Publish(ErrorEvent{Err: err})
	case RespStatus:
		if d.poller != nil {
			d.poller.noteStatusReceived()
		}
		d.mu.Lock()
		d.status = resp.Status
		d.mu.Unlock()
		if resp.Status.BufferDepth > 0 {
			d.writer.SetWindow(resp.Status.BufferDepth)
		}
		d.StatusBus.Publish(resp.Status)
	case RespSettingsRow:
		d.settings.Observe(resp.SettingID, resp.SettingValue)
		d.SettingsBus.Publish(SettingsRowEvent{Row: SettingRow{ID: resp.SettingID, Value: resp.SettingValue}})
	case RespFeedback:
		// Forwarded verbatim via RawLineBus above; nothing further to do.
	case RespUnknown:
		if strings.TrimSpace(resp.Raw) != "" {
			d.log.Debug("unrecognized firmware line", slog.String("raw", resp.Raw))
		}
	}
}

// recoverPoison absorbs a panic inside handleLine the way a poisoned mutex
// would be recovered: take whatever state exists, log it, and never let the
// panic propagate past the reader goroutine.
func (d *Device) recoverPoison() {
	if r := recover(); r != nil {
		d.log.Error("panic recovered in device line handler", slog.Any("panic", r))
	}
}
