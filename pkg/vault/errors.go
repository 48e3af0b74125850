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

package vault

import "errors"

var (
	// ErrRecordNotFound is returned when no record exists for the
	// requested domain and name.
	ErrRecordNotFound = errors.New("vault: record not found")

	// ErrInvalidDomain is returned when a domain identifier is empty.
	ErrInvalidDomain = errors.New("vault: domain must not be empty")

	// ErrInvalidName is returned when a secret name is empty.
	ErrInvalidName = errors.New("vault: name must not be empty")
)
