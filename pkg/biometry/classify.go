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

// Native LocalAuthentication (LAError) codes as surfaced by macOS and iOS.
const (
	DarwinAuthenticationFailed = -1
	DarwinUserCancel           = -2
	DarwinUserFallback         = -3
	DarwinSystemCancel         = -4
	DarwinPasscodeNotSet       = -5
	DarwinBiometryNotAvailable = -6
	DarwinBiometryNotEnrolled  = -7
	DarwinBiometryLockout      = -8
	DarwinAppCancel            = -9
	DarwinInvalidContext       = -10
	DarwinNotInteractive       = -1004
)

// Native BiometricPrompt error codes as surfaced by Android.
const (
	AndroidHwUnavailable          = 1
	AndroidUnableToProcess        = 2
	AndroidTimeout                = 3
	AndroidNoSpace                = 4
	AndroidCanceled               = 5
	AndroidLockout                = 7
	AndroidVendor                 = 8
	AndroidLockoutPermanent       = 9
	AndroidUserCanceled           = 10
	AndroidNoBiometrics           = 11
	AndroidHwNotPresent           = 12
	AndroidNegativeButton         = 13
	AndroidNoDeviceCredential     = 14
	AndroidSecurityUpdateRequired = 15
)

// Native UserConsentVerifier result codes as surfaced by Windows.
const (
	WindowsDeviceNotPresent     = 1
	WindowsNotConfiguredForUser = 2
	WindowsDisabledByPolicy     = 3
	WindowsDeviceBusy           = 4
	WindowsRetriesExhausted     = 5
	WindowsCanceled             = 6
)

// ClassifyDarwin maps a LocalAuthentication error code to the canonical
// taxonomy. The mapping is total: codes added by future OS versions degrade
// to KindBiometryNotAvailable rather than failing classification.
func ClassifyDarwin(code int) ErrorKind {
	switch code {
	case DarwinAuthenticationFailed:
		return KindAuthenticationFailed
	case DarwinUserCancel:
		return KindUserCancel
	case DarwinUserFallback:
		return KindUserFallback
	case DarwinSystemCancel:
		return KindSystemCancel
	case DarwinPasscodeNotSet:
		return KindPasscodeNotSet
	case DarwinBiometryNotAvailable:
		return KindBiometryNotAvailable
	case DarwinBiometryNotEnrolled:
		return KindBiometryNotEnrolled
	case DarwinBiometryLockout:
		return KindBiometryLockout
	case DarwinAppCancel:
		return KindAppCancel
	case DarwinInvalidContext:
		return KindInvalidContext
	case DarwinNotInteractive:
		return KindNotInteractive
	default:
		return KindBiometryNotAvailable
	}
}

// ClassifyAndroid maps a BiometricPrompt error code to the canonical
// taxonomy. Total; unknown codes degrade to KindBiometryNotAvailable.
func ClassifyAndroid(code int) ErrorKind {
	switch code {
	case AndroidHwUnavailable, AndroidVendor, AndroidHwNotPresent, AndroidSecurityUpdateRequired:
		return KindBiometryNotAvailable
	case AndroidUnableToProcess, AndroidNoSpace:
		return KindInternalError
	case AndroidTimeout, AndroidCanceled:
		return KindSystemCancel
	case AndroidLockout, AndroidLockoutPermanent:
		return KindBiometryLockout
	case AndroidUserCanceled, AndroidNegativeButton:
		return KindUserCancel
	case AndroidNoBiometrics:
		return KindBiometryNotEnrolled
	case AndroidNoDeviceCredential:
		return KindPasscodeNotSet
	default:
		return KindBiometryNotAvailable
	}
}

// ClassifyWindows maps a UserConsentVerifier result code to the canonical
// taxonomy. Total; unknown codes degrade to KindBiometryNotAvailable.
func ClassifyWindows(code int) ErrorKind {
	switch code {
	case WindowsDeviceNotPresent, WindowsDisabledByPolicy:
		return KindBiometryNotAvailable
	case WindowsNotConfiguredForUser:
		return KindBiometryNotEnrolled
	case WindowsDeviceBusy:
		return KindSystemCancel
	case WindowsRetriesExhausted:
		return KindBiometryLockout
	case WindowsCanceled:
		return KindUserCancel
	default:
		return KindBiometryNotAvailable
	}
}
