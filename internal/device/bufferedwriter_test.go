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

	"gcodekit5/internal/camerr"
)

func TestBufferedWriterWindowOne(t *testing.T) {
	nt := NewNullTransport()
	_ = nt.Connect(context.Background())

	var events []SendStatusEvent
	w := NewBufferedWriter(nt, 1, func(ev SendStatusEvent) { events = append(events, ev) })

	if err := w.Enqueue("G0 X10"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := w.Enqueue("G0 X20"); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if w.Depth() != 1 {
		t.Fatalf("expected depth 1 (window=1), got %d", w.Depth())
	}
	if len(nt.Sent()) != 1 {
		t.Fatalf("expected only one line actually sent, got %d", len(nt.Sent()))
	}

	w.OnAck()
	if w.Depth() != 1 {
		t.Fatalf("expected second line now in flight, got depth %d", w.Depth())
	}
	if len(nt.Sent()) != 2 {
		t.Fatalf("expected second line sent after ack, got %d", len(nt.Sent()))
	}

	w.OnAck()
	if w.Depth() != 0 {
		t.Fatalf("expected depth 0 after both acked, got %d", w.Depth())
	}

	foundAck := 0
	for _, ev := range events {
		if ev.State == SendAcknowledged {
			foundAck++
		}
	}
	if foundAck != 2 {
		t.Fatalf("expected 2 acknowledged events, got %d", foundAck)
	}
}

func TestBufferedWriterHoldsOnError(t *testing.T) {
	nt := NewNullTransport()
	_ = nt.Connect(context.Background())

	w := NewBufferedWriter(nt, 1, nil)
	_ = w.Enqueue("G0 X10")
	_ = w.Enqueue("G0 X20")

	err := w.OnError(9, false)
	if !camerr.Is(err, camerr.KindCommunication) {
		t.Fatalf("expected communication error kind, got %v", err)
	}
	if len(nt.Sent()) != 1 {
		t.Fatalf("expected writer to hold, not send queued line after error, got %d sent", len(nt.Sent()))
	}

	if err := w.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if len(nt.Sent()) != 2 {
		t.Fatalf("expected queued line to send after Resume, got %d", len(nt.Sent()))
	}
}

func TestBufferedWriterEnqueueRejectsOverflow(t *testing.T) {
	nt := NewNullTransport()
	_ = nt.Connect(context.Background())
	// No responder is seeded, so the one in-flight line is never acked and
	// window=1 keeps every further line parked in pending — a genuine backlog.
	w := NewBufferedWriter(nt, 1, nil)
	var lastErr error
	for i := 0; i < MaxPending+5; i++ {
		lastErr = w.Enqueue("G0 X1")
	}
	if lastErr == nil || !camerr.Is(lastErr, camerr.KindCommunication) {
		t.Fatalf("expected overflow error once MaxPending exceeded, got %v", lastErr)
	}
}
