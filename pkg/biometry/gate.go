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
	"errors"

	"github.com/jeremyhahn/go-biovault/pkg/logging"
)

// Availability is a prompter's report of whether verification can proceed
// without presenting any UI.
type Availability struct {
	Available    bool
	BiometryType BiometryType

	// Kind and Reason describe why verification cannot proceed.
	// Set only when Available is false.
	Kind   ErrorKind
	Reason string
}

// Prompter is the platform collaborator that owns the native verification
// prompt. Implementations present exactly one interactive prompt per Prompt
// call and reduce the native result to an Outcome; classification of native
// error codes into the canonical taxonomy happens inside the prompter, once.
//
// Prompters assume single-flight callers: the vault service serializes
// prompt-issuing operations system-wide, so Prompt is never invoked
// concurrently.
type Prompter interface {
	// Availability reports whether verification can proceed. No UI.
	Availability() Availability

	// Prompt presents one verification prompt and blocks until the user
	// or the platform resolves it. Cancellation of ctx abandons the
	// prompt; the returned outcome is then discarded by the gate.
	Prompt(ctx context.Context, event AuthenticationEvent) Outcome
}

// Gate invokes the platform verification check for a single event and
// reduces the native outcome to Approved, Rejected or Errored. The gate
// never retries: a rejected sample is resubmitted by the caller as a whole
// new request, bounded by the platform's own lockout policy.
type Gate struct {
	prompter Prompter
	logger   *logging.Logger
}

// NewGate creates an authentication gate over the given prompter.
func NewGate(prompter Prompter, logger *logging.Logger) *Gate {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Gate{
		prompter: prompter,
		logger:   logger,
	}
}

// CheckStatus re-checks availability against the platform. No UI, no
// side effects.
func (g *Gate) CheckStatus() Status {
	avail := g.prompter.Availability()
	status := Status{
		IsAvailable:  avail.Available,
		BiometryType: avail.BiometryType,
	}
	if !avail.Available {
		status.Error = avail.Reason
		status.ErrorCode = avail.Kind
	}
	return status
}

// Authenticate presents exactly one verification prompt for the event and
// returns its single outcome.
//
// When biometric verification is unavailable and the event does not allow
// the device-credential fallback, the gate fails fast with the
// availability's error kind and presents no UI.
//
// Caller cancellation maps to KindUserCancel and caller deadline expiry to
// KindSystemCancel; an abandoned prompt never blocks a later one.
func (g *Gate) Authenticate(ctx context.Context, event AuthenticationEvent) Outcome {
	if event.Reason == "" {
		return Errored(KindInvalidContext, "authentication reason is required")
	}

	avail := g.prompter.Availability()
	if !avail.Available && !event.AllowDeviceCredential {
		kind := avail.Kind
		if kind == "" {
			kind = KindBiometryNotAvailable
		}
		reason := avail.Reason
		if reason == "" {
			reason = "biometric verification is not available"
		}
		g.logger.Debug("authentication failed fast", "kind", string(kind))
		return Errored(kind, reason)
	}

	outcomeCh := make(chan Outcome, 1)
	go func() {
		outcomeCh <- g.prompter.Prompt(ctx, event)
	}()

	var outcome Outcome
	select {
	case outcome = <-outcomeCh:
	case <-ctx.Done():
		// The prompter goroutine drains into the buffered channel, so an
		// abandoned prompt cannot wedge the gate.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Errored(KindSystemCancel, "authentication timed out")
		}
		return Errored(KindUserCancel, "authentication canceled by caller")
	}

	switch outcome.Status {
	case OutcomeApproved:
		method := MethodBiometric
		if !avail.Available {
			method = MethodDeviceCredential
		}
		outcome.Proof = newProof(method)
		g.logger.Debug("authentication approved", "method", string(method))
	case OutcomeRejected:
		g.logger.Debug("authentication rejected", "reason", outcome.Reason)
	case OutcomeErrored:
		if outcome.Err == nil {
			outcome.Err = NewError(KindInternalError, "prompter returned errored outcome without error")
		}
		g.logger.Debug("authentication errored", "kind", string(outcome.Err.Kind))
	}
	return outcome
}
