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

import (
	"errors"

	"github.com/jeremyhahn/go-biovault/pkg/biometry"
	"github.com/jeremyhahn/go-biovault/pkg/crypto/aead"
	"github.com/jeremyhahn/go-biovault/pkg/keyring"
)

// Engine performs hybrid encryption of secrets. Each secret is sealed
// under its own fresh symmetric key, and that key is wrapped under the
// owning domain's asymmetric pair held in the keyring. Encrypting needs
// only the public key; decrypting goes through the keyring's proof-gated
// unwrap.
type Engine struct {
	keyring   keyring.Keyring
	algorithm string
}

// NewEngine creates an encryption engine over the given keyring. The AEAD
// algorithm is chosen once for the process based on hardware support.
func NewEngine(kr keyring.Keyring) *Engine {
	return &Engine{
		keyring:   kr,
		algorithm: aead.SelectOptimal(aead.HasAESNI()),
	}
}

// Algorithm returns the AEAD algorithm new records are sealed with.
func (e *Engine) Algorithm() string {
	return e.algorithm
}

// Encrypt seals plaintext into a SecretRecord for (domain, name). A fresh
// symmetric key and nonce are generated per call; the key is wrapped and
// the raw key material is discarded before returning. The domain and name
// are bound into the AEAD additional data, so an envelope copied to a
// different slot fails authentication at decrypt.
func (e *Engine) Encrypt(domain, name string, plaintext []byte) (*SecretRecord, error) {
	key, err := aead.GenerateKey()
	if err != nil {
		return nil, err
	}
	defer zero(key)

	nonce, err := aead.GenerateNonce()
	if err != nil {
		return nil, err
	}

	sealed, err := aead.Seal(e.algorithm, key, nonce, plaintext, additionalData(domain, name))
	if err != nil {
		return nil, err
	}

	wrapped, err := e.keyring.Wrap(domain, key)
	if err != nil {
		return nil, err
	}
	handle, err := e.keyring.Handle(domain)
	if err != nil {
		return nil, err
	}

	// Go's AEAD appends the tag to the ciphertext. Split it out so the
	// envelope carries the tag as its own field.
	tagStart := len(sealed) - aead.TagSize
	return &SecretRecord{
		Domain:     domain,
		Name:       name,
		Algorithm:  e.algorithm,
		KeyID:      handle.ID,
		WrappedKey: wrapped,
		Nonce:      nonce,
		Tag:        sealed[tagStart:],
		Ciphertext: sealed[:tagStart],
	}, nil
}

// Decrypt opens a SecretRecord and returns the plaintext. The proof must
// be live; it is consumed by the keyring whether or not decryption
// succeeds. Any unwrap or authentication failure surfaces as a
// decryptionFailed error, so a record orphaned by a key replacement and a
// tampered envelope are indistinguishable to the caller.
func (e *Engine) Decrypt(r *SecretRecord, proof *biometry.Proof) ([]byte, error) {
	if err := Validate(r); err != nil {
		return nil, biometry.NewError(biometry.KindDecryptionFailed, err.Error())
	}

	key, err := e.keyring.Unwrap(r.Domain, r.WrappedKey, proof)
	if err != nil {
		// Proof handling mistakes are programming errors, not data
		// corruption. Report them as-is.
		if errors.Is(err, keyring.ErrProofRequired) ||
			errors.Is(err, keyring.ErrProofConsumed) ||
			errors.Is(err, keyring.ErrProofExpired) {
			return nil, err
		}
		return nil, biometry.NewError(biometry.KindDecryptionFailed,
			"failed to unwrap record key: "+err.Error())
	}
	defer zero(key)

	sealed := make([]byte, 0, len(r.Ciphertext)+len(r.Tag))
	sealed = append(sealed, r.Ciphertext...)
	sealed = append(sealed, r.Tag...)

	plaintext, err := aead.Open(r.Algorithm, key, r.Nonce, sealed, additionalData(r.Domain, r.Name))
	if err != nil {
		return nil, biometry.NewError(biometry.KindDecryptionFailed,
			"failed to authenticate record: "+err.Error())
	}
	return plaintext, nil
}

// additionalData binds a record's identity into the AEAD. The NUL
// separator keeps distinct (domain, name) pairs from aliasing.
func additionalData(domain, name string) []byte {
	aad := make([]byte, 0, len(domain)+len(name)+1)
	aad = append(aad, domain...)
	aad = append(aad, 0x00)
	aad = append(aad, name...)
	return aad
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
