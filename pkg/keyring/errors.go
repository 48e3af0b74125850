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

package keyring

import "errors"

var (
	// ErrClosed is returned when operating on a closed keyring.
	ErrClosed = errors.New("keyring: keyring is closed")

	// ErrKeyNotFound is returned when the domain has no key pair.
	ErrKeyNotFound = errors.New("keyring: key not found")

	// ErrProofRequired is returned when Unwrap is called without an
	// authentication proof.
	ErrProofRequired = errors.New("keyring: authentication proof required")

	// ErrProofConsumed is returned when the supplied proof has already
	// been used for a private-key operation.
	ErrProofConsumed = errors.New("keyring: authentication proof already consumed")

	// ErrProofExpired is returned when the supplied proof is older than
	// the keyring's proof lifetime.
	ErrProofExpired = errors.New("keyring: authentication proof expired")

	// ErrCorruptKey is returned when persisted key material cannot be
	// parsed.
	ErrCorruptKey = errors.New("keyring: corrupt key material")
)
