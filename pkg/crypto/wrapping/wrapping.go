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

// Package wrapping implements symmetric key wrapping under RSA public keys.
//
// The vault never stores a record's symmetric key in the clear: the key is
// wrapped with the owning domain's RSA public key, so recovering it requires
// the private half, which the keyring only operates with after a satisfied
// authentication check. Wrapping needs only the public key and therefore
// never requires authentication.
package wrapping

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1" // #nosec G505 - SHA-1 is valid for OAEP interop with legacy wrappers
	"crypto/sha256"
	"fmt"
	"hash"
)

// Algorithm identifies an RSA-OAEP wrapping algorithm.
type Algorithm string

const (
	// RSAOAEPSHA256 is RSA-OAEP with SHA-256, the default for new records.
	RSAOAEPSHA256 Algorithm = "RSAES_OAEP_SHA_256"

	// RSAOAEPSHA1 is RSA-OAEP with SHA-1, kept for unwrapping records
	// written by platforms whose key stores only offer SHA-1 OAEP.
	RSAOAEPSHA1 Algorithm = "RSAES_OAEP_SHA_1"
)

// MinKeySize is the minimum accepted RSA modulus size in bits.
const MinKeySize = 2048

func hashFor(algorithm Algorithm) (hash.Hash, error) {
	switch algorithm {
	case RSAOAEPSHA256:
		return sha256.New(), nil
	case RSAOAEPSHA1:
		return sha1.New(), nil // #nosec G401
	default:
		return nil, fmt.Errorf("unsupported wrapping algorithm: %s", algorithm)
	}
}

// Wrap wraps key material using RSA-OAEP encryption.
// Suitable for small key material such as a 256-bit AEAD key; the material
// must fit within the RSA key size minus OAEP overhead.
func Wrap(keyMaterial []byte, publicKey *rsa.PublicKey, algorithm Algorithm) ([]byte, error) {
	if len(keyMaterial) == 0 {
		return nil, fmt.Errorf("key material cannot be nil or empty")
	}
	if publicKey == nil {
		return nil, fmt.Errorf("public key cannot be nil")
	}
	if publicKey.Size()*8 < MinKeySize {
		return nil, fmt.Errorf("RSA key too small: %d bits (minimum %d)", publicKey.Size()*8, MinKeySize)
	}

	hashFunc, err := hashFor(algorithm)
	if err != nil {
		return nil, err
	}

	wrapped, err := rsa.EncryptOAEP(hashFunc, rand.Reader, publicKey, keyMaterial, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap key material with RSA-OAEP: %w", err)
	}

	return wrapped, nil
}

// Unwrap unwraps key material that was encrypted using RSA-OAEP.
// The algorithm parameter must match the algorithm used during wrapping.
func Unwrap(wrappedKey []byte, privateKey *rsa.PrivateKey, algorithm Algorithm) ([]byte, error) {
	if len(wrappedKey) == 0 {
		return nil, fmt.Errorf("wrapped key cannot be nil or empty")
	}
	if privateKey == nil {
		return nil, fmt.Errorf("private key cannot be nil")
	}

	hashFunc, err := hashFor(algorithm)
	if err != nil {
		return nil, err
	}

	unwrapped, err := rsa.DecryptOAEP(hashFunc, rand.Reader, privateKey, wrappedKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap key material with RSA-OAEP: %w", err)
	}

	return unwrapped, nil
}
