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

// Package keyring manages the per-domain asymmetric key pairs that guard
// vault records. A domain has exactly zero or one key pair at any time;
// creating a new pair for a domain replaces the old one and permanently
// invalidates every record wrapped under it. That is accepted behavior, not
// an error condition: it is exactly what happens on a device when biometric
// enrollment changes.
//
// Wrapping needs only the public key and is never authentication-gated.
// Unwrapping requires a live single-use authentication proof, binding each
// private-key operation to the specific prompt that approved it.
package keyring

import (
	"time"

	"github.com/jeremyhahn/go-biovault/pkg/biometry"
	"github.com/jeremyhahn/go-biovault/pkg/crypto/wrapping"
)

// Handle is a reference to a domain's key pair held by the keyring. It
// never exposes raw private key material.
type Handle struct {
	// ID uniquely identifies this key pair generation. Replacing a
	// domain's pair produces a new ID.
	ID string `json:"id"`

	// Domain is the vault domain this pair belongs to.
	Domain string `json:"domain"`

	// KeySize is the RSA modulus size in bits.
	KeySize int `json:"keySize"`

	// Algorithm is the wrapping algorithm for this pair.
	Algorithm wrapping.Algorithm `json:"algorithm"`

	// CreatedAt is when this pair was generated.
	CreatedAt time.Time `json:"createdAt"`
}

// Keyring is the secure key storage collaborator. Implementations must be
// thread-safe.
type Keyring interface {
	// Wrap wraps key material under the domain's public key, generating
	// the domain's key pair lazily on first use. Never requires
	// authentication.
	Wrap(domain string, keyMaterial []byte) ([]byte, error)

	// Unwrap recovers key material with the domain's private key. The
	// proof must be live: issued by the gate for this logical operation,
	// unexpired and never used before. The proof is consumed even when
	// unwrapping fails.
	Unwrap(domain string, wrappedKey []byte, proof *biometry.Proof) ([]byte, error)

	// Handle returns the domain's current key handle.
	// Returns ErrKeyNotFound if the domain has no key pair.
	Handle(domain string) (*Handle, error)

	// HasKey reports whether a key pair exists for the domain.
	HasKey(domain string) (bool, error)

	// Remove destroys the domain's key pair. Idempotent; removing a
	// domain with no pair succeeds.
	Remove(domain string) error

	// Replace destroys the domain's key pair and generates a fresh one,
	// permanently invalidating everything wrapped under the old pair.
	// This is the enrollment-change path.
	Replace(domain string) (*Handle, error)

	// Close releases any resources held by the keyring.
	Close() error
}
