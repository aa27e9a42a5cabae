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
	"testing"
	"time"
)

// TestSendLineRoundTrip exercises a GRBL device on a null transport: sending
// one line raises the in-flight depth to 1, an "ok" brings it back to 0, a
// subsequent status report publishes Idle at the origin, and no error event
// is ever seen.
func TestSendLineRoundTrip(t *testing.T) {
	nt := NewNullTransport()
	d := New(nt, Options{Window: 1, PollHz: 1})

	var statuses []ControllerStatus
	d.StatusBus.Subscribe(func(s ControllerStatus) { statuses = append(statuses, s) })

	errFired := false
	d.ErrorBus.Subscribe(func(ErrorEvent) { errFired = true })

	if err := d.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer d.Disconnect()

	if err := d.SendLine("G0 X10"); err != nil {
		t.Fatalf("SendLine: %v", err)
	}
	if d.InFlightDepth() != 1 {
		t.Fatalf("expected in-flight depth 1 after send, got %d", d.InFlightDepth())
	}

	nt.Feed("ok")
	if d.InFlightDepth() != 0 {
		t.Fatalf("expected in-flight depth 0 after ok, got %d", d.InFlightDepth())
	}

	nt.Feed("<Idle|MPos:0.000,0.000,0.000|FS:0,0>")
	if len(statuses) != 1 {
		t.Fatalf("expected exactly one status event, got %d", len(statuses))
	}
	got := statuses[0]
	if got.State != StateIdle {
		t.Fatalf("expected Idle, got %v", got.State)
	}
	if got.MPos != (Pos3{0, 0, 0}) {
		t.Fatalf("expected origin, got %+v", got.MPos)
	}
	if d.Status() != got {
		t.Fatalf("Status() should reflect the last published report")
	}

	if errFired {
		t.Fatalf("no error event should have fired on this happy path")
	}
}

// TestSendLineRejectsOnDisconnectedTransport confirms SendLine surfaces a
// transport failure instead of silently queuing forever.
func TestSendLineRejectsOnDisconnectedTransport(t *testing.T) {
	nt := NewNullTransport()
	d := New(nt, Options{Window: 1, PollHz: 1})

	if err := d.SendLine("G0 X10"); err == nil {
		t.Fatalf("expected an error sending before Connect")
	}
}

// TestMissedPollsDisconnect confirms a silent controller is disconnected and
// reported after MissedPollLimit consecutive unanswered status polls.
func TestMissedPollsDisconnect(t *testing.T) {
	nt := NewNullTransport()
	d := New(nt, Options{Window: 1, PollHz: DefaultPollHz * 20}) // fast polling to keep the test quick

	disconnected := make(chan struct{}, 1)
	d.ConnectionBus.Subscribe(func(ev ConnectionEvent) {
		if ev.State == ConnDisconnected && ev.Err != nil {
			select {
			case disconnected <- struct{}{}:
			default:
			}
		}
	})

	if err := d.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a disconnect event after sustained silence")
	}
	if d.IsConnected() {
		t.Fatalf("expected transport to be disconnected after sustained silence")
	}
}
