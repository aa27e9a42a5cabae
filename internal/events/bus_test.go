/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package events

import "testing"

func TestBusDeliversInOrder(t *testing.T) {
	b := NewBus[int]()
	var got []int
	b.Subscribe(func(v int) { got = append(got, v) })
	for i := 0; i < 5; i++ {
		b.Publish(i)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("event %d out of order: %v", i, got)
		}
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus[string]()
	count := 0
	tok := b.Subscribe(func(string) { count++ })
	b.Publish("a")
	b.Unsubscribe(tok)
	b.Publish("b")
	if count != 1 {
		t.Fatalf("expected exactly one delivery before unsubscribe, got %d", count)
	}
}

func TestUnsubscribeUnknownTokenIsNoop(t *testing.T) {
	b := NewBus[int]()
	b.Unsubscribe(Token("nonexistent"))
	if b.Len() != 0 {
		t.Fatalf("expected empty bus")
	}
}
