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
	"errors"
	"fmt"
)

// ErrorKind is the canonical, platform-independent classification of a
// biometric failure. Every native error code a platform prompt subsystem can
// produce maps to exactly one ErrorKind; the mapping happens once at the
// gate or engine boundary and is forwarded verbatim upstream.
type ErrorKind string

const (
	// KindAppCancel indicates the application canceled the authentication.
	KindAppCancel ErrorKind = "appCancel"

	// KindAuthenticationFailed indicates the prompt completed but the user
	// could not be verified.
	KindAuthenticationFailed ErrorKind = "authenticationFailed"

	// KindInvalidContext indicates the authentication context was invalid,
	// already used, or missing required parameters.
	KindInvalidContext ErrorKind = "invalidContext"

	// KindNotInteractive indicates interaction was required but not allowed.
	KindNotInteractive ErrorKind = "notInteractive"

	// KindPasscodeNotSet indicates no device credential is configured.
	KindPasscodeNotSet ErrorKind = "passcodeNotSet"

	// KindSystemCancel indicates the system dismissed the prompt (another
	// application came to the foreground, the device timed out, or the
	// sensor was busy).
	KindSystemCancel ErrorKind = "systemCancel"

	// KindUserCancel indicates the user dismissed the prompt.
	KindUserCancel ErrorKind = "userCancel"

	// KindUserFallback indicates the user tapped the fallback button.
	KindUserFallback ErrorKind = "userFallback"

	// KindBiometryLockout indicates too many failed attempts locked the
	// sensor out.
	KindBiometryLockout ErrorKind = "biometryLockout"

	// KindBiometryNotAvailable indicates biometric hardware is absent,
	// disabled by policy, or otherwise unusable. This is also the total
	// fallback for native codes this package does not recognize.
	KindBiometryNotAvailable ErrorKind = "biometryNotAvailable"

	// KindBiometryNotEnrolled indicates no biometric identities are enrolled.
	KindBiometryNotEnrolled ErrorKind = "biometryNotEnrolled"

	// KindItemNotFound indicates the requested vault record does not exist.
	KindItemNotFound ErrorKind = "itemNotFound"

	// KindDecryptionFailed indicates a record exists but could not be
	// decrypted: the wrapping key was replaced (enrollment change), the
	// envelope is corrupted, or the authentication tag failed. Distinct
	// from KindItemNotFound and from biometric rejection.
	KindDecryptionFailed ErrorKind = "decryptionFailed"

	// KindInternalError indicates an unexpected internal failure.
	KindInternalError ErrorKind = "internalError"

	// KindNotSupported indicates the operation is not supported on this
	// platform.
	KindNotSupported ErrorKind = "notSupported"
)

// Error is a classified biometric or vault failure carrying the canonical
// kind and a human-readable message. Orchestration layers forward it
// unchanged; it is classified exactly once.
type Error struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("biometry: %s", e.Kind)
	}
	return fmt.Sprintf("biometry: %s: %s", e.Kind, e.Message)
}

// Is reports whether target is a biometry error of the same kind, so callers
// can match with errors.Is(err, &biometry.Error{Kind: ...}).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// NewError creates a classified error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates a classified error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the canonical kind from an error chain.
// Errors that were never classified report KindInternalError.
func KindOf(err error) ErrorKind {
	var berr *Error
	if errors.As(err, &berr) {
		return berr.Kind
	}
	return KindInternalError
}
