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

// Package biometry unifies heterogeneous native biometric subsystems behind
// a single authentication gate, canonical error taxonomy and outcome model.
package biometry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BiometryType identifies the kind of biometric verification a device
// offers. The numeric values are wire-compatible with the host bridge
// protocol and must not be reordered.
type BiometryType int

const (
	// BiometryNone indicates no biometric capability.
	BiometryNone BiometryType = iota

	// BiometryFingerprint indicates fingerprint verification (Touch ID).
	BiometryFingerprint

	// BiometryFace indicates face verification (Face ID).
	BiometryFace

	// BiometryIris indicates iris verification.
	BiometryIris

	// BiometryAuto indicates the platform selects among available
	// verifiers without reporting which (Windows Hello).
	BiometryAuto
)

// String returns the string representation of the biometry type.
func (b BiometryType) String() string {
	switch b {
	case BiometryNone:
		return "none"
	case BiometryFingerprint:
		return "fingerprint"
	case BiometryFace:
		return "face"
	case BiometryIris:
		return "iris"
	case BiometryAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseBiometryType parses a biometry type name as used in configuration
// files. Unknown names return BiometryNone and an error.
func ParseBiometryType(s string) (BiometryType, error) {
	switch s {
	case "none", "":
		return BiometryNone, nil
	case "fingerprint":
		return BiometryFingerprint, nil
	case "face":
		return BiometryFace, nil
	case "iris":
		return BiometryIris, nil
	case "auto":
		return BiometryAuto, nil
	default:
		return BiometryNone, fmt.Errorf("unknown biometry type: %q", s)
	}
}

// Status reports whether biometric verification can proceed, without
// presenting any UI.
type Status struct {
	IsAvailable  bool         `json:"isAvailable"`
	BiometryType BiometryType `json:"biometryType"`
	Error        string       `json:"error,omitempty"`
	ErrorCode    ErrorKind    `json:"errorCode,omitempty"`
}

// AuthenticationEvent describes a single verification request. All prompt
// text fields are opaque pass-through strings rendered by the platform;
// which fields a platform honors varies and unsupported fields are ignored.
type AuthenticationEvent struct {
	// Reason is shown to the user as the purpose of the verification.
	// Mandatory.
	Reason string `json:"reason"`

	// AllowDeviceCredential permits falling back to the device PIN,
	// pattern or password when biometrics cannot proceed.
	AllowDeviceCredential bool `json:"allowDeviceCredential,omitempty"`

	// CancelTitle is the label for the cancel button.
	CancelTitle string `json:"cancelTitle,omitempty"`

	// FallbackTitle is the label for the fallback button.
	FallbackTitle string `json:"fallbackTitle,omitempty"`

	// Title is the prompt title.
	Title string `json:"title,omitempty"`

	// Subtitle provides contextual information under the title.
	Subtitle string `json:"subtitle,omitempty"`

	// ConfirmationRequired requires an explicit confirmation action after
	// a successful sample, where the platform distinguishes "presented"
	// from "confirmed".
	ConfirmationRequired bool `json:"confirmationRequired,omitempty"`
}

// OutcomeStatus is the reduced result of one verification event.
type OutcomeStatus int

const (
	// OutcomeApproved means the user was verified.
	OutcomeApproved OutcomeStatus = iota

	// OutcomeRejected means the biometric sample did not match. The user
	// may retry by resubmitting the whole request; the gate never retries.
	OutcomeRejected

	// OutcomeErrored means the prompt could not proceed or was dismissed.
	// Terminal for the invocation.
	OutcomeErrored
)

// Outcome is the single result of one Authenticate invocation.
type Outcome struct {
	Status OutcomeStatus

	// Reason describes a rejection. Set only for OutcomeRejected.
	Reason string

	// Err carries the classified failure. Set only for OutcomeErrored.
	Err *Error

	// Proof is the single-use authentication proof bound to this approval.
	// Set only for OutcomeApproved, and only by the Gate.
	Proof *Proof
}

// Approved constructs an approved outcome. The gate attaches the proof.
func Approved() Outcome {
	return Outcome{Status: OutcomeApproved}
}

// Rejected constructs a rejected outcome.
func Rejected(reason string) Outcome {
	return Outcome{Status: OutcomeRejected, Reason: reason}
}

// Errored constructs an errored outcome with a classified kind.
func Errored(kind ErrorKind, message string) Outcome {
	return Outcome{Status: OutcomeErrored, Err: NewError(kind, message)}
}

// Method identifies how the user was verified.
type Method string

const (
	// MethodBiometric means a biometric sample was matched.
	MethodBiometric Method = "biometric"

	// MethodDeviceCredential means the device PIN, pattern or password
	// was entered.
	MethodDeviceCredential Method = "deviceCredential"
)

// Proof is an opaque, single-use evidence of a successful verification.
// The keyring requires a live proof for every private-key unwrap, binding
// the decrypt operation to the specific prompt that approved it; a proof
// cannot be consumed twice, so an earlier unrelated authentication can
// never be replayed for a later decrypt.
type Proof struct {
	id       string
	method   Method
	issuedAt time.Time

	mu       sync.Mutex
	consumed bool
}

func newProof(method Method) *Proof {
	return &Proof{
		id:       uuid.NewString(),
		method:   method,
		issuedAt: time.Now(),
	}
}

// ID returns the unique identifier of this proof.
func (p *Proof) ID() string { return p.id }

// Method returns how the user was verified.
func (p *Proof) Method() Method { return p.method }

// IssuedAt returns when the approval was granted.
func (p *Proof) IssuedAt() time.Time { return p.issuedAt }

// Age returns how long ago the approval was granted.
func (p *Proof) Age() time.Duration { return time.Since(p.issuedAt) }

// Consume marks the proof used. It succeeds exactly once.
func (p *Proof) Consume() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.consumed {
		return false
	}
	p.consumed = true
	return true
}
