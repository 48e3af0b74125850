// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-biovault.
//
// go-biovault is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package biometry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Simulator is a scripted Prompter for tests and development hosts without
// a biometric subsystem. Outcomes are consumed from a queue in order; when
// the queue is empty, prompts resolve Approved.
//
// The simulator tracks how many prompts were presented and the maximum
// number visible at once, so callers can assert the system-wide
// single-flight prompt guarantee.
type Simulator struct {
	mu    sync.Mutex
	avail Availability
	queue []Outcome
	delay time.Duration

	prompts       atomic.Int64
	inFlight      atomic.Int32
	maxConcurrent atomic.Int32
}

// NewSimulator creates a simulator reporting the given availability.
func NewSimulator(avail Availability) *Simulator {
	return &Simulator{avail: avail}
}

// NewAvailableSimulator creates a simulator with fingerprint biometry
// available, the common test fixture.
func NewAvailableSimulator() *Simulator {
	return NewSimulator(Availability{
		Available:    true,
		BiometryType: BiometryFingerprint,
	})
}

// Enqueue appends scripted outcomes, consumed in FIFO order.
func (s *Simulator) Enqueue(outcomes ...Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, outcomes...)
}

// SetAvailability replaces the reported availability.
func (s *Simulator) SetAvailability(avail Availability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avail = avail
}

// SetDelay makes each prompt block for d before resolving, to widen
// concurrency windows in tests.
func (s *Simulator) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// PromptCount returns how many prompts have been presented.
func (s *Simulator) PromptCount() int64 {
	return s.prompts.Load()
}

// MaxConcurrent returns the maximum number of prompts that were visible
// simultaneously.
func (s *Simulator) MaxConcurrent() int32 {
	return s.maxConcurrent.Load()
}

// Availability implements Prompter.
func (s *Simulator) Availability() Availability {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.avail
}

// Prompt implements Prompter.
func (s *Simulator) Prompt(ctx context.Context, event AuthenticationEvent) Outcome {
	s.prompts.Add(1)
	current := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		max := s.maxConcurrent.Load()
		if current <= max || s.maxConcurrent.CompareAndSwap(max, current) {
			break
		}
	}

	s.mu.Lock()
	delay := s.delay
	var outcome Outcome
	if len(s.queue) > 0 {
		outcome = s.queue[0]
		s.queue = s.queue[1:]
	} else {
		outcome = Approved()
	}
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return Errored(KindUserCancel, "prompt abandoned")
		}
	}
	return outcome
}

var _ Prompter = (*Simulator)(nil)
