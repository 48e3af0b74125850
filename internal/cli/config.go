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

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeremyhahn/go-biovault/pkg/biometry"
	"github.com/jeremyhahn/go-biovault/pkg/keyring"
	"github.com/jeremyhahn/go-biovault/pkg/logging"
	"github.com/jeremyhahn/go-biovault/pkg/storage"
	"github.com/jeremyhahn/go-biovault/pkg/storage/file"
	"github.com/jeremyhahn/go-biovault/pkg/vault"
)

// Config holds global CLI configuration
type Config struct {
	// ConfigFile is the path to the configuration file
	ConfigFile string

	// DataDir is the directory backing vault storage. The special value
	// "memory" selects the in-memory backend, useful for trying out the
	// CLI without touching disk.
	DataDir string

	// Prompter selects the verification prompter (console, simulator).
	// The simulator approves every prompt and exists for scripting and
	// development only.
	Prompter string

	// KeySize is the RSA modulus size for new domain key pairs.
	// Zero selects the keyring default.
	KeySize int

	// OutputFormat controls output formatting (json, text, table)
	OutputFormat string

	// Verbose enables verbose logging
	Verbose bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		DataDir:      defaultDataDir(),
		Prompter:     "console",
		OutputFormat: "text",
		Verbose:      false,
	}
}

// defaultDataDir returns the per-user vault directory.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".biovault"
	}
	return filepath.Join(home, ".biovault")
}

// CreateService builds a vault service over local storage according to
// the configuration. The returned closer releases the keyring and the
// storage backend.
func (c *Config) CreateService() (*vault.Service, func() error, error) {
	backend, err := c.createBackend()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewLogger(c.Verbose)

	ring, err := keyring.NewSoftwareKeyring(keyring.Config{
		Storage: backend,
		KeySize: c.KeySize,
		Logger:  logger,
	})
	if err != nil {
		_ = backend.Close()
		return nil, nil, fmt.Errorf("failed to create keyring: %w", err)
	}

	prompter, err := c.createPrompter()
	if err != nil {
		_ = ring.Close()
		_ = backend.Close()
		return nil, nil, err
	}

	svc, err := vault.NewService(vault.ServiceConfig{
		Gate:    biometry.NewGate(prompter, logger),
		Keyring: ring,
		Records: vault.NewRecordStore(backend),
		Logger:  logger,
	})
	if err != nil {
		_ = ring.Close()
		_ = backend.Close()
		return nil, nil, fmt.Errorf("failed to create vault service: %w", err)
	}

	closer := func() error {
		if err := ring.Close(); err != nil {
			_ = backend.Close()
			return err
		}
		return backend.Close()
	}
	return svc, closer, nil
}

// createBackend creates the storage backend for the configured data dir.
func (c *Config) createBackend() (storage.Backend, error) {
	if c.DataDir == "memory" {
		return storage.NewMemory(), nil
	}
	backend, err := file.New(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault storage at %s: %w", c.DataDir, err)
	}
	return backend, nil
}

// createPrompter creates the verification prompter.
func (c *Config) createPrompter() (biometry.Prompter, error) {
	switch c.Prompter {
	case "console":
		return biometry.NewConsolePrompter(biometry.BiometryFingerprint), nil
	case "simulator":
		return biometry.NewAvailableSimulator(), nil
	default:
		return nil, fmt.Errorf("unknown prompter: %q (expected console or simulator)", c.Prompter)
	}
}
