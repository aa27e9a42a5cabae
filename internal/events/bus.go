/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package events provides a typed event bus shared by the designer state
// and the device link, replacing the source's callback-chain/Rc<RefCell<>>
// wiring with ownership-with-observers: a single owner mutates, subscribers
// only observe.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// Token is an opaque subscription handle returned by Subscribe and required
// by Unsubscribe. Tokens are never reused.
type Token string

// Bus delivers events of type T to subscribers in the order they were
// posted. Delivery is in-order per source goroutine; a Bus has no ordering
// guarantee across concurrent Publish callers from different goroutines
// beyond what the caller imposes by serializing its own publishes.
type Bus[T any] struct {
	mu   sync.RWMutex
	subs map[Token]func(T)
}

// NewBus creates an empty event bus for event type T.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[Token]func(T))}
}

// Subscribe registers fn to receive every event published after this call
// returns. The returned token is used with Unsubscribe.
func (b *Bus[T]) Subscribe(fn func(T)) Token {
	tok := Token(uuid.NewString())
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[tok] = fn
	return tok
}

// Unsubscribe removes a subscriber. Unsubscribing an unknown or already
// removed token is a no-op.
func (b *Bus[T]) Unsubscribe(tok Token) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, tok)
}

// Publish delivers event to every current subscriber, in an unspecified
// order that can differ from call to call, over the subscriber set
// snapshotted at the start of the call; subscribers added or removed during
// delivery do not affect this call.
func (b *Bus[T]) Publish(event T) {
	b.mu.RLock()
	fns := make([]func(T), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.RUnlock()
	for _, fn := range fns {
		fn(event)
	}
}

// Len reports the current subscriber count, mainly for diagnostics/tests.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
