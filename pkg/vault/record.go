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
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jeremyhahn/go-biovault/pkg/crypto/aead"
)

// SecretRecord is the stored envelope for one secret. The plaintext never
// touches storage: the ciphertext is sealed under a fresh symmetric key,
// and that key is stored wrapped under the domain's asymmetric key pair.
type SecretRecord struct {
	// Domain is the namespace the secret belongs to.
	Domain string

	// Name identifies the secret within its domain.
	Name string

	// Algorithm is the AEAD algorithm that sealed the ciphertext.
	Algorithm string

	// KeyID is the handle ID of the key pair that wrapped the symmetric
	// key. Used to detect records orphaned by a key replacement.
	KeyID string

	// WrappedKey is the symmetric key, wrapped under the domain's
	// public key.
	WrappedKey []byte

	// Nonce is the 96-bit AEAD nonce.
	Nonce []byte

	// Tag is the 128-bit authentication tag.
	Tag []byte

	// Ciphertext is the sealed secret, without the tag.
	Ciphertext []byte
}

// Marshal serializes a SecretRecord to bytes for storage.
//
// Wire Format (version 1):
//
//	┌────────────────────────────────────────────────────┐
//	│ Version: 1 byte (0x01)                             │
//	├────────────────────────────────────────────────────┤
//	│ Domain Length: 2 bytes (big-endian uint16)         │
//	│ Domain: variable bytes (UTF-8 string)              │
//	├────────────────────────────────────────────────────┤
//	│ Name Length: 2 bytes (big-endian uint16)           │
//	│ Name: variable bytes (UTF-8 string)                │
//	├────────────────────────────────────────────────────┤
//	│ Algorithm Length: 2 bytes (big-endian uint16)      │
//	│ Algorithm: variable bytes (UTF-8 string)           │
//	├────────────────────────────────────────────────────┤
//	│ Key ID Length: 2 bytes (big-endian uint16)         │
//	│ Key ID: variable bytes (UTF-8 string)              │
//	├────────────────────────────────────────────────────┤
//	│ Wrapped Key Length: 2 bytes (big-endian uint16)    │
//	│ Wrapped Key: variable bytes                        │
//	├────────────────────────────────────────────────────┤
//	│ Nonce Length: 2 bytes (big-endian uint16)          │
//	│ Nonce: variable bytes                              │
//	├────────────────────────────────────────────────────┤
//	│ Tag Length: 2 bytes (big-endian uint16)            │
//	│ Tag: variable bytes                                │
//	├────────────────────────────────────────────────────┤
//	│ Ciphertext Length: 4 bytes (big-endian uint32)     │
//	│ Ciphertext: variable bytes                         │
//	└────────────────────────────────────────────────────┘
func Marshal(r *SecretRecord) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("SecretRecord is nil")
	}

	buf := new(bytes.Buffer)

	// Version
	if err := buf.WriteByte(0x01); err != nil {
		return nil, fmt.Errorf("failed to write version: %w", err)
	}

	for _, field := range []struct {
		name string
		data []byte
	}{
		{"domain", []byte(r.Domain)},
		{"name", []byte(r.Name)},
		{"algorithm", []byte(r.Algorithm)},
		{"key id", []byte(r.KeyID)},
		{"wrapped key", r.WrappedKey},
		{"nonce", r.Nonce},
		{"tag", r.Tag},
	} {
		if len(field.data) > 65535 {
			return nil, fmt.Errorf("%s too long: %d bytes", field.name, len(field.data))
		}
		// #nosec G115 - Length is validated to be <= 65535 before conversion
		if err := binary.Write(buf, binary.BigEndian, uint16(len(field.data))); err != nil {
			return nil, fmt.Errorf("failed to write %s length: %w", field.name, err)
		}
		if _, err := buf.Write(field.data); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", field.name, err)
		}
	}

	// Ciphertext
	if uint64(len(r.Ciphertext)) > 4294967295 {
		return nil, fmt.Errorf("ciphertext too long: %d bytes", len(r.Ciphertext))
	}
	// #nosec G115 - Length is validated to be <= 4294967295 before conversion
	if err := binary.Write(buf, binary.BigEndian, uint32(len(r.Ciphertext))); err != nil {
		return nil, fmt.Errorf("failed to write ciphertext length: %w", err)
	}
	if _, err := buf.Write(r.Ciphertext); err != nil {
		return nil, fmt.Errorf("failed to write ciphertext: %w", err)
	}

	return buf.Bytes(), nil
}

// Unmarshal deserializes a SecretRecord from bytes.
// Returns an error if the data is malformed or uses an unsupported version.
func Unmarshal(data []byte) (*SecretRecord, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("data too short: minimum 1 byte required")
	}

	buf := bytes.NewReader(data)

	version, err := buf.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != 0x01 {
		return nil, fmt.Errorf("unsupported version: 0x%02x", version)
	}

	readField := func(name string) ([]byte, error) {
		var length uint16
		if err := binary.Read(buf, binary.BigEndian, &length); err != nil {
			return nil, fmt.Errorf("failed to read %s length: %w", name, err)
		}
		field := make([]byte, length)
		if _, err := io.ReadFull(buf, field); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return field, nil
	}

	r := &SecretRecord{}

	domain, err := readField("domain")
	if err != nil {
		return nil, err
	}
	r.Domain = string(domain)

	name, err := readField("name")
	if err != nil {
		return nil, err
	}
	r.Name = string(name)

	algorithm, err := readField("algorithm")
	if err != nil {
		return nil, err
	}
	r.Algorithm = string(algorithm)

	keyID, err := readField("key id")
	if err != nil {
		return nil, err
	}
	r.KeyID = string(keyID)

	if r.WrappedKey, err = readField("wrapped key"); err != nil {
		return nil, err
	}
	if r.Nonce, err = readField("nonce"); err != nil {
		return nil, err
	}
	if r.Tag, err = readField("tag"); err != nil {
		return nil, err
	}

	var cipherLen uint32
	if err := binary.Read(buf, binary.BigEndian, &cipherLen); err != nil {
		return nil, fmt.Errorf("failed to read ciphertext length: %w", err)
	}
	r.Ciphertext = make([]byte, cipherLen)
	if _, err := io.ReadFull(buf, r.Ciphertext); err != nil {
		return nil, fmt.Errorf("failed to read ciphertext: %w", err)
	}

	return r, nil
}

// Validate checks that a SecretRecord is structurally sound.
func Validate(r *SecretRecord) error {
	if r == nil {
		return fmt.Errorf("SecretRecord is nil")
	}
	if r.Domain == "" {
		return fmt.Errorf("domain is required")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Algorithm == "" {
		return fmt.Errorf("algorithm is required")
	}
	if len(r.WrappedKey) == 0 {
		return fmt.Errorf("wrapped key is required")
	}
	if len(r.Nonce) != aead.NonceSize {
		return fmt.Errorf("nonce must be %d bytes, got %d", aead.NonceSize, len(r.Nonce))
	}
	if len(r.Tag) != aead.TagSize {
		return fmt.Errorf("tag must be %d bytes, got %d", aead.TagSize, len(r.Tag))
	}
	return nil
}
