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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-biovault/pkg/crypto/aead"
)

func testRecord() *SecretRecord {
	return &SecretRecord{
		Domain:     "com.example.app",
		Name:       "api-token",
		Algorithm:  aead.AES256GCM,
		KeyID:      "0c7a1e2e-8f7d-4c56-a6f9-1f2e3d4c5b6a",
		WrappedKey: bytes.Repeat([]byte{0xAA}, 512),
		Nonce:      bytes.Repeat([]byte{0x01}, aead.NonceSize),
		Tag:        bytes.Repeat([]byte{0x02}, aead.TagSize),
		Ciphertext: []byte("sealed bytes"),
	}
}

func TestRecord_MarshalUnmarshal(t *testing.T) {
	original := testRecord()

	data, err := Marshal(original)
	require.NoError(t, err)
	require.Equal(t, byte(0x01), data[0], "version byte")

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestRecord_MarshalNil(t *testing.T) {
	_, err := Marshal(nil)
	assert.Error(t, err)
}

func TestRecord_EmptyCiphertext(t *testing.T) {
	// An empty secret still produces a valid envelope: the tag
	// authenticates the additional data.
	r := testRecord()
	r.Ciphertext = []byte{}

	data, err := Marshal(r)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Empty(t, decoded.Ciphertext)
	require.NoError(t, Validate(decoded))
}

func TestRecord_UnmarshalUnsupportedVersion(t *testing.T) {
	data, err := Marshal(testRecord())
	require.NoError(t, err)

	data[0] = 0x02
	_, err = Unmarshal(data)
	assert.ErrorContains(t, err, "unsupported version")
}

func TestRecord_UnmarshalTruncated(t *testing.T) {
	data, err := Marshal(testRecord())
	require.NoError(t, err)

	_, err = Unmarshal(nil)
	assert.Error(t, err)

	for _, cut := range []int{1, 3, 10, len(data) / 2, len(data) - 1} {
		_, err = Unmarshal(data[:cut])
		assert.Error(t, err, "truncated at %d bytes", cut)
	}
}

func TestRecord_Validate(t *testing.T) {
	require.NoError(t, Validate(testRecord()))

	tests := []struct {
		name   string
		mutate func(*SecretRecord)
	}{
		{"missing domain", func(r *SecretRecord) { r.Domain = "" }},
		{"missing name", func(r *SecretRecord) { r.Name = "" }},
		{"missing algorithm", func(r *SecretRecord) { r.Algorithm = "" }},
		{"missing wrapped key", func(r *SecretRecord) { r.WrappedKey = nil }},
		{"short nonce", func(r *SecretRecord) { r.Nonce = r.Nonce[:8] }},
		{"short tag", func(r *SecretRecord) { r.Tag = r.Tag[:12] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testRecord()
			tt.mutate(r)
			assert.Error(t, Validate(r))
		})
	}

	assert.Error(t, Validate(nil))
}
