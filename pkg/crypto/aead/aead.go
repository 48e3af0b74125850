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

// Package aead provides authenticated encryption for vault record payloads
// with automatic algorithm selection based on hardware capabilities:
//
//   - AES-256-GCM: used when hardware AES instructions are available.
//   - ChaCha20-Poly1305: used on CPUs without AES acceleration, where it
//     outperforms software AES and is resistant to timing attacks.
//
// Both algorithms use a 256-bit key, a 96-bit nonce and a 128-bit
// authentication tag, so records are interchangeable at the envelope level.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/sys/cpu"
)

// Algorithm identifiers for AEAD ciphers.
const (
	// AES256GCM is AES-256 in Galois/Counter Mode.
	AES256GCM = "aes256-gcm"

	// ChaCha20Poly1305 is the ChaCha20-Poly1305 AEAD.
	ChaCha20Poly1305 = "chacha20-poly1305"
)

const (
	// KeySize is the symmetric key size in bytes (256 bits).
	KeySize = 32

	// NonceSize is the nonce size in bytes (96 bits).
	NonceSize = 12

	// TagSize is the authentication tag size in bytes (128 bits).
	TagSize = 16
)

// HasAESNI returns true if the CPU has hardware AES acceleration.
//
// Supported architectures:
//   - amd64: checks X86.HasAES
//   - arm64: checks ARM64.HasAES
//   - other architectures return false
func HasAESNI() bool {
	switch runtime.GOARCH {
	case "amd64":
		return cpu.X86.HasAES
	case "arm64":
		return cpu.ARM64.HasAES
	default:
		return false
	}
}

// SelectOptimal selects the optimal AEAD algorithm for this host.
//
// Selection logic:
//  1. If hardwareBacked is true, always use AES-256-GCM. Secure elements and
//     key stores are optimized for AES operations.
//  2. If the CPU has AES acceleration, use AES-256-GCM.
//  3. Otherwise, use ChaCha20-Poly1305.
func SelectOptimal(hardwareBacked bool) string {
	if hardwareBacked || HasAESNI() {
		return AES256GCM
	}
	return ChaCha20Poly1305
}

// GenerateKey returns a fresh random 256-bit symmetric key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("aead: failed to generate key: %w", err)
	}
	return key, nil
}

// GenerateNonce returns a fresh random 96-bit nonce.
func GenerateNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("aead: failed to generate nonce: %w", err)
	}
	return nonce, nil
}

// New returns a cipher.AEAD instance for the given algorithm and key.
func New(algorithm string, key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("aead: invalid key size: %d bytes (must be %d)", len(key), KeySize)
	}

	switch algorithm {
	case AES256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("aead: failed to create AES cipher: %w", err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("aead: failed to create GCM: %w", err)
		}
		return aead, nil
	case ChaCha20Poly1305:
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, fmt.Errorf("aead: failed to create ChaCha20-Poly1305: %w", err)
		}
		return aead, nil
	default:
		return nil, fmt.Errorf("aead: unsupported algorithm: %s", algorithm)
	}
}

// Seal encrypts and authenticates plaintext with the given key and nonce.
// The returned ciphertext has the 128-bit authentication tag appended.
// The additional data is authenticated but not encrypted; the vault binds
// the record's (domain, name) identity through it so an envelope copied to
// another key fails authentication.
func Seal(algorithm string, key, nonce, plaintext, additionalData []byte) ([]byte, error) {
	aead, err := New(algorithm, key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("aead: invalid nonce size: %d bytes (must be %d)", len(nonce), aead.NonceSize())
	}
	return aead.Seal(nil, nonce, plaintext, additionalData), nil
}

// Open authenticates and decrypts ciphertext with the given key and nonce.
// Returns ErrAuthenticationFailed if the tag does not verify; corrupted
// plaintext is never returned.
func Open(algorithm string, key, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	aead, err := New(algorithm, key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("aead: invalid nonce size: %d bytes (must be %d)", len(nonce), aead.NonceSize())
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return plaintext, nil
}
