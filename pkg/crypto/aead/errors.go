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

package aead

import "errors"

var (
	// ErrAuthenticationFailed is returned when an AEAD authentication tag
	// does not verify. The ciphertext was modified, the wrong key was used,
	// or the additional data does not match what was sealed.
	ErrAuthenticationFailed = errors.New("aead: message authentication failed")
)
