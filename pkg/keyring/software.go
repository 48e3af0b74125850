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
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeremyhahn/go-biovault/pkg/biometry"
	"github.com/jeremyhahn/go-biovault/pkg/crypto/wrapping"
	"github.com/jeremyhahn/go-biovault/pkg/logging"
	"github.com/jeremyhahn/go-biovault/pkg/storage"
)

const (
	// DefaultKeySize is the RSA modulus size for new key pairs.
	DefaultKeySize = 4096

	// DefaultProofLifetime bounds how stale an authentication proof may
	// be when presented to Unwrap. Mirrors a zero reuse window on the
	// device: the proof must come from the prompt for this operation,
	// not from an earlier session.
	DefaultProofLifetime = 30 * time.Second

	pemTypePrivateKey = "PRIVATE KEY"

	storagePrefix = "keyring/"
)

// Config holds software keyring configuration.
type Config struct {
	// Storage persists key pairs. Required.
	Storage storage.Backend

	// KeySize is the RSA modulus size in bits for new pairs. Defaults
	// to DefaultKeySize. Must be at least wrapping.MinKeySize.
	KeySize int

	// ProofLifetime bounds proof staleness at Unwrap. Defaults to
	// DefaultProofLifetime.
	ProofLifetime time.Duration

	// Logger receives keyring diagnostics. Defaults to the package
	// default logger.
	Logger *logging.Logger
}

// storedKey is the persisted form of a domain key pair.
type storedKey struct {
	Handle        Handle `json:"handle"`
	PrivateKeyPEM string `json:"privateKeyPem"`
}

// SoftwareKeyring is a Keyring backed by software RSA key pairs persisted
// through a storage backend. It stands in for platform secure key storage
// (Secure Enclave, StrongBox, TPM) on hosts that have none; the private
// key lives in process memory during operations.
type SoftwareKeyring struct {
	store         storage.Backend
	keySize       int
	proofLifetime time.Duration
	logger        *logging.Logger

	mu     sync.Mutex
	closed bool
}

// Compile-time interface check.
var _ Keyring = (*SoftwareKeyring)(nil)

// NewSoftwareKeyring creates a software keyring from config.
func NewSoftwareKeyring(cfg Config) (*SoftwareKeyring, error) {
	if cfg.Storage == nil {
		return nil, errors.New("keyring: storage backend is required")
	}
	keySize := cfg.KeySize
	if keySize == 0 {
		keySize = DefaultKeySize
	}
	if keySize < wrapping.MinKeySize {
		return nil, fmt.Errorf("keyring: key size %d below minimum %d", keySize, wrapping.MinKeySize)
	}
	lifetime := cfg.ProofLifetime
	if lifetime == 0 {
		lifetime = DefaultProofLifetime
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &SoftwareKeyring{
		store:         cfg.Storage,
		keySize:       keySize,
		proofLifetime: lifetime,
		logger:        logger,
	}, nil
}

// Wrap wraps key material under the domain's public key, generating the
// key pair on first use.
func (k *SoftwareKeyring) Wrap(domain string, keyMaterial []byte) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, ErrClosed
	}
	sk, err := k.loadOrCreateLocked(domain)
	if err != nil {
		return nil, err
	}
	priv, err := parsePrivateKey(sk.PrivateKeyPEM)
	if err != nil {
		return nil, err
	}
	return wrapping.Wrap(keyMaterial, &priv.PublicKey, sk.Handle.Algorithm)
}

// Unwrap recovers key material with the domain's private key. The proof
// is consumed before any private-key work so it cannot be replayed even
// when unwrapping fails.
func (k *SoftwareKeyring) Unwrap(domain string, wrappedKey []byte, proof *biometry.Proof) ([]byte, error) {
	if proof == nil {
		return nil, ErrProofRequired
	}
	if proof.Age() > k.proofLifetime {
		return nil, ErrProofExpired
	}
	if !proof.Consume() {
		return nil, ErrProofConsumed
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, ErrClosed
	}
	sk, err := k.loadLocked(domain)
	if err != nil {
		return nil, err
	}
	priv, err := parsePrivateKey(sk.PrivateKeyPEM)
	if err != nil {
		return nil, err
	}
	return wrapping.Unwrap(wrappedKey, priv, sk.Handle.Algorithm)
}

// Handle returns the domain's current key handle.
func (k *SoftwareKeyring) Handle(domain string) (*Handle, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, ErrClosed
	}
	sk, err := k.loadLocked(domain)
	if err != nil {
		return nil, err
	}
	h := sk.Handle
	return &h, nil
}

// HasKey reports whether a key pair exists for the domain.
func (k *SoftwareKeyring) HasKey(domain string) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return false, ErrClosed
	}
	return k.store.Exists(storageKey(domain))
}

// Remove destroys the domain's key pair. Idempotent.
func (k *SoftwareKeyring) Remove(domain string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return ErrClosed
	}
	err := k.store.Delete(storageKey(domain))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

// Replace destroys the domain's key pair and generates a fresh one.
func (k *SoftwareKeyring) Replace(domain string) (*Handle, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, ErrClosed
	}
	if err := k.store.Delete(storageKey(domain)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	sk, err := k.createLocked(domain)
	if err != nil {
		return nil, err
	}
	h := sk.Handle
	return &h, nil
}

// Close marks the keyring closed. The storage backend is owned by the
// caller and is not closed here.
func (k *SoftwareKeyring) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.closed = true
	return nil
}

func (k *SoftwareKeyring) loadLocked(domain string) (*storedKey, error) {
	data, err := k.store.Get(storageKey(domain))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	var sk storedKey
	if err := json.Unmarshal(data, &sk); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptKey, err)
	}
	return &sk, nil
}

func (k *SoftwareKeyring) loadOrCreateLocked(domain string) (*storedKey, error) {
	sk, err := k.loadLocked(domain)
	if err == nil {
		return sk, nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return nil, err
	}
	return k.createLocked(domain)
}

func (k *SoftwareKeyring) createLocked(domain string) (*storedKey, error) {
	k.logger.Debug("generating domain key pair",
		"domain", domain,
		"key_size", k.keySize)

	priv, err := rsa.GenerateKey(rand.Reader, k.keySize)
	if err != nil {
		return nil, fmt.Errorf("keyring: generating key pair: %w", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("keyring: encoding private key: %w", err)
	}
	pemData := pem.EncodeToMemory(&pem.Block{
		Type:  pemTypePrivateKey,
		Bytes: der,
	})

	sk := &storedKey{
		Handle: Handle{
			ID:        uuid.New().String(),
			Domain:    domain,
			KeySize:   k.keySize,
			Algorithm: wrapping.RSAOAEPSHA256,
			CreatedAt: time.Now().UTC(),
		},
		PrivateKeyPEM: string(pemData),
	}
	data, err := json.Marshal(sk)
	if err != nil {
		return nil, fmt.Errorf("keyring: encoding key record: %w", err)
	}
	if err := k.store.Put(storageKey(domain), data, storage.DefaultOptions()); err != nil {
		return nil, err
	}
	return sk, nil
}

func parsePrivateKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil || block.Type != pemTypePrivateKey {
		return nil, ErrCorruptKey
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptKey, err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrCorruptKey
	}
	return priv, nil
}

// storageKey escapes the domain so domains containing path separators
// cannot collide with other keyring entries.
func storageKey(domain string) string {
	return storagePrefix + url.PathEscape(domain)
}
