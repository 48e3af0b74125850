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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var algorithms = []string{AES256GCM, ChaCha20Poly1305}

func TestSealOpen_RoundTrip(t *testing.T) {
	for _, algorithm := range algorithms {
		t.Run(algorithm, func(t *testing.T) {
			key, err := GenerateKey()
			require.NoError(t, err)
			nonce, err := GenerateNonce()
			require.NoError(t, err)

			plaintext := []byte("abc123")
			aad := []byte("com.app/tok")

			ciphertext, err := Seal(algorithm, key, nonce, plaintext, aad)
			require.NoError(t, err)
			assert.Len(t, ciphertext, len(plaintext)+TagSize)

			recovered, err := Open(algorithm, key, nonce, ciphertext, aad)
			require.NoError(t, err)
			assert.Equal(t, plaintext, recovered)
		})
	}
}

func TestOpen_TamperedCiphertext(t *testing.T) {
	for _, algorithm := range algorithms {
		t.Run(algorithm, func(t *testing.T) {
			key, _ := GenerateKey()
			nonce, _ := GenerateNonce()

			ciphertext, err := Seal(algorithm, key, nonce, []byte("abc123"), nil)
			require.NoError(t, err)

			ciphertext[0] ^= 0xff
			_, err = Open(algorithm, key, nonce, ciphertext, nil)
			assert.ErrorIs(t, err, ErrAuthenticationFailed)
		})
	}
}

func TestOpen_WrongKey(t *testing.T) {
	key, _ := GenerateKey()
	otherKey, _ := GenerateKey()
	nonce, _ := GenerateNonce()

	ciphertext, err := Seal(AES256GCM, key, nonce, []byte("abc123"), nil)
	require.NoError(t, err)

	_, err = Open(AES256GCM, otherKey, nonce, ciphertext, nil)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestOpen_MismatchedAdditionalData(t *testing.T) {
	key, _ := GenerateKey()
	nonce, _ := GenerateNonce()

	ciphertext, err := Seal(AES256GCM, key, nonce, []byte("abc123"), []byte("com.app/tok"))
	require.NoError(t, err)

	// An envelope rebound to another identity must not decrypt.
	_, err = Open(AES256GCM, key, nonce, ciphertext, []byte("com.app/other"))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestNew_InvalidInputs(t *testing.T) {
	_, err := New(AES256GCM, []byte("short"))
	assert.Error(t, err)

	key, _ := GenerateKey()
	_, err = New("bogus", key)
	assert.Error(t, err)
}

func TestSeal_InvalidNonce(t *testing.T) {
	key, _ := GenerateKey()

	_, err := Seal(AES256GCM, key, []byte("short"), []byte("abc123"), nil)
	assert.Error(t, err)
}

func TestGenerateNonce_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		nonce, err := GenerateNonce()
		require.NoError(t, err)
		require.Len(t, nonce, NonceSize)
		assert.False(t, seen[string(nonce)], "nonce collision after %d generations", i)
		seen[string(nonce)] = true
	}
}

func TestSelectOptimal(t *testing.T) {
	// Hardware-backed keys always use AES-256-GCM.
	assert.Equal(t, AES256GCM, SelectOptimal(true))

	// Software selection depends on the host CPU but must be one of the two.
	selected := SelectOptimal(false)
	assert.Contains(t, algorithms, selected)
	if HasAESNI() {
		assert.Equal(t, AES256GCM, selected)
	} else {
		assert.Equal(t, ChaCha20Poly1305, selected)
	}
}
