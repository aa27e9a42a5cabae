/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package device

import (
	"sync"
	"time"
)

// DefaultPollHz is the status-poll rate used when newStatusPoller is given
// hz <= 0.
const DefaultPollHz = 5

// MissedPollLimit is the number of consecutive unanswered "?" polls that
// mark the controller silent and trigger a disconnect.
const MissedPollLimit = 6

// statusPoller issues "?" real-time status queries on a fixed interval and
// tracks consecutive misses, exactly like internal/telemetry's
// channel-fed background worker: one goroutine, stopped once via a done
// channel, never leaked.
type statusPoller struct {
	send    func()
	onSilent func()

	interval time.Duration
	stop     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once

	mu         sync.Mutex
	missed     int
	lastAnswer time.Time
}

func newStatusPoller(hz int, send func(), onSilent func()) *statusPoller {
	if hz <= 0 {
		hz = DefaultPollHz
	}
	return &statusPoller{
		send:     send,
		onSilent: onSilent,
		interval: time.Second / time.Duration(hz),
		stop:     make(chan struct{}),
	}
}

func (p *statusPoller) start() {
	p.wg.Add(1)
	go p.loop()
}

func (p *statusPoller) stopPolling() {
	p.once.Do(func() { close(p.stop) })
	p.wg.Wait()
}

func (p *statusPoller) loop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			p.missed++
			miss := p.missed
			p.mu.Unlock()
			if miss > MissedPollLimit {
				if p.onSilent != nil {
					p.onSilent()
				}
				return
			}
			p.send()
		}
	}
}

// noteStatusReceived resets the missed-poll counter; any status line
// (solicited or not) counts as proof the controller is alive.
func (p *statusPoller) noteStatusReceived() {
	p.mu.Lock()
	p.missed = 0
	p.lastAnswer = time.Now()
	p.mu.Unlock()
}
