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

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-biovault/pkg/biometry"
	"github.com/jeremyhahn/go-biovault/pkg/storage"
)

func testKeyring(t *testing.T) *SoftwareKeyring {
	t.Helper()
	k, err := NewSoftwareKeyring(Config{
		Storage: storage.NewMemory(),
		KeySize: 2048,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = k.Close() })
	return k
}

func testProof(t *testing.T) *biometry.Proof {
	t.Helper()
	gate := biometry.NewGate(biometry.NewAvailableSimulator(), nil)
	outcome := gate.Authenticate(context.Background(), biometry.AuthenticationEvent{
		Reason: "unit test",
	})
	require.Equal(t, biometry.OutcomeApproved, outcome.Status)
	require.NotNil(t, outcome.Proof)
	return outcome.Proof
}

func TestSoftwareKeyring_WrapUnwrapRoundTrip(t *testing.T) {
	k := testKeyring(t)

	material := []byte("0123456789abcdef0123456789abcdef")
	wrapped, err := k.Wrap("com.example.app", material)
	require.NoError(t, err)
	require.NotEqual(t, material, wrapped)

	recovered, err := k.Unwrap("com.example.app", wrapped, testProof(t))
	require.NoError(t, err)
	assert.Equal(t, material, recovered)
}

func TestSoftwareKeyring_LazyCreation(t *testing.T) {
	k := testKeyring(t)

	exists, err := k.HasKey("com.example.app")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = k.Handle("com.example.app")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	_, err = k.Wrap("com.example.app", []byte("material"))
	require.NoError(t, err)

	exists, err = k.HasKey("com.example.app")
	require.NoError(t, err)
	assert.True(t, exists)

	handle, err := k.Handle("com.example.app")
	require.NoError(t, err)
	assert.Equal(t, "com.example.app", handle.Domain)
	assert.Equal(t, 2048, handle.KeySize)
	assert.NotEmpty(t, handle.ID)
}

func TestSoftwareKeyring_OneKeyPerDomain(t *testing.T) {
	k := testKeyring(t)

	// Repeated wraps reuse the same pair.
	_, err := k.Wrap("com.example.app", []byte("first"))
	require.NoError(t, err)
	h1, err := k.Handle("com.example.app")
	require.NoError(t, err)

	_, err = k.Wrap("com.example.app", []byte("second"))
	require.NoError(t, err)
	h2, err := k.Handle("com.example.app")
	require.NoError(t, err)

	assert.Equal(t, h1.ID, h2.ID)

	// Distinct domains get distinct pairs.
	_, err = k.Wrap("com.other.app", []byte("third"))
	require.NoError(t, err)
	h3, err := k.Handle("com.other.app")
	require.NoError(t, err)
	assert.NotEqual(t, h1.ID, h3.ID)
}

func TestSoftwareKeyring_UnwrapRequiresProof(t *testing.T) {
	k := testKeyring(t)

	wrapped, err := k.Wrap("com.example.app", []byte("material"))
	require.NoError(t, err)

	_, err = k.Unwrap("com.example.app", wrapped, nil)
	assert.ErrorIs(t, err, ErrProofRequired)
}

func TestSoftwareKeyring_ProofIsSingleUse(t *testing.T) {
	k := testKeyring(t)

	wrapped, err := k.Wrap("com.example.app", []byte("material"))
	require.NoError(t, err)

	proof := testProof(t)
	_, err = k.Unwrap("com.example.app", wrapped, proof)
	require.NoError(t, err)

	_, err = k.Unwrap("com.example.app", wrapped, proof)
	assert.ErrorIs(t, err, ErrProofConsumed)
}

func TestSoftwareKeyring_ProofConsumedEvenOnFailure(t *testing.T) {
	k := testKeyring(t)

	proof := testProof(t)
	_, err := k.Unwrap("com.example.app", []byte("garbage"), proof)
	require.ErrorIs(t, err, ErrKeyNotFound)

	wrapped, err := k.Wrap("com.example.app", []byte("material"))
	require.NoError(t, err)
	_, err = k.Unwrap("com.example.app", wrapped, proof)
	assert.ErrorIs(t, err, ErrProofConsumed)
}

func TestSoftwareKeyring_ExpiredProof(t *testing.T) {
	k, err := NewSoftwareKeyring(Config{
		Storage:       storage.NewMemory(),
		KeySize:       2048,
		ProofLifetime: time.Nanosecond,
	})
	require.NoError(t, err)
	defer k.Close()

	wrapped, err := k.Wrap("com.example.app", []byte("material"))
	require.NoError(t, err)

	proof := testProof(t)
	time.Sleep(time.Millisecond)
	_, err = k.Unwrap("com.example.app", wrapped, proof)
	assert.ErrorIs(t, err, ErrProofExpired)
}

func TestSoftwareKeyring_ReplaceInvalidatesOldWrappings(t *testing.T) {
	k := testKeyring(t)

	wrapped, err := k.Wrap("com.example.app", []byte("material"))
	require.NoError(t, err)
	oldHandle, err := k.Handle("com.example.app")
	require.NoError(t, err)

	newHandle, err := k.Replace("com.example.app")
	require.NoError(t, err)
	assert.NotEqual(t, oldHandle.ID, newHandle.ID)

	// Material wrapped under the old pair is unrecoverable.
	_, err = k.Unwrap("com.example.app", wrapped, testProof(t))
	assert.Error(t, err)
}

func TestSoftwareKeyring_RemoveIsIdempotent(t *testing.T) {
	k := testKeyring(t)

	require.NoError(t, k.Remove("com.example.app"))

	_, err := k.Wrap("com.example.app", []byte("material"))
	require.NoError(t, err)
	require.NoError(t, k.Remove("com.example.app"))

	exists, err := k.HasKey("com.example.app")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, k.Remove("com.example.app"))
}

func TestSoftwareKeyring_Closed(t *testing.T) {
	k := testKeyring(t)
	require.NoError(t, k.Close())

	_, err := k.Wrap("com.example.app", []byte("material"))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = k.Unwrap("com.example.app", []byte("x"), testProof(t))
	assert.ErrorIs(t, err, ErrClosed)
	_, err = k.Handle("com.example.app")
	assert.ErrorIs(t, err, ErrClosed)
	_, err = k.HasKey("com.example.app")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, k.Remove("com.example.app"), ErrClosed)
	_, err = k.Replace("com.example.app")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSoftwareKeyring_ConfigValidation(t *testing.T) {
	_, err := NewSoftwareKeyring(Config{})
	assert.Error(t, err)

	_, err = NewSoftwareKeyring(Config{
		Storage: storage.NewMemory(),
		KeySize: 1024,
	})
	assert.Error(t, err)
}

func TestSoftwareKeyring_InvalidKeySize(t *testing.T) {
	// Minimum size is accepted.
	k, err := NewSoftwareKeyring(Config{
		Storage: storage.NewMemory(),
		KeySize: 2048,
	})
	require.NoError(t, err)
	defer k.Close()
}
