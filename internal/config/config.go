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

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete server configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Storage   StorageConfig   `yaml:"storage"`
	Keyring   KeyringConfig   `yaml:"keyring"`
	Prompter  PrompterConfig  `yaml:"prompter"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Health    HealthConfig    `yaml:"health"`
}

// ServerConfig contains server-level settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// ReadTimeout and WriteTimeout bound slow clients. The write
	// timeout must leave room for operations that wait on a user
	// prompt.
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig controls where envelopes and key pairs are persisted
type StorageConfig struct {
	Backend string `yaml:"backend"` // memory, file
	Path    string `yaml:"path"`
}

// KeyringConfig controls the per-domain key pairs
type KeyringConfig struct {
	// KeySize is the RSA modulus size in bits. Minimum 2048.
	KeySize int `yaml:"key_size"`

	// ProofLifetime bounds how stale an authentication proof may be
	// when presented for decryption.
	ProofLifetime time.Duration `yaml:"proof_lifetime"`
}

// PrompterConfig selects the authentication prompter
type PrompterConfig struct {
	// Type is the prompter implementation: console prompts on the
	// server's terminal, simulator approves or scripts outcomes for
	// development and testing.
	Type string `yaml:"type"` // console, simulator

	// BiometryType reported by the simulator: fingerprint, face, iris.
	BiometryType string `yaml:"biometry_type"`
}

// RateLimitConfig controls rate limiting
type RateLimitConfig struct {
	Enabled        bool `yaml:"enabled"`
	RequestsPerMin int  `yaml:"requests_per_min"`
	Burst          int  `yaml:"burst"`
}

// MetricsConfig controls metrics endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// HealthConfig controls health check endpoint
type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns a configuration with sensible development defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8443,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			Backend: "file",
			Path:    "/var/lib/biovault",
		},
		Keyring: KeyringConfig{
			KeySize:       4096,
			ProofLifetime: 30 * time.Second,
		},
		Prompter: PrompterConfig{
			Type:         "console",
			BiometryType: "fingerprint",
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 120,
			Burst:          20,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Health: HealthConfig{
			Enabled: true,
			Path:    "/health",
		},
	}
}

// Load reads configuration from a YAML file and applies environment variable overrides
func Load(path string) (*Config, error) {
	// Read the config file
	// #nosec G304 - Config file path is provided by admin/user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML over the defaults so omitted sections keep working.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("BIOVAULT_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("BIOVAULT_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			log.Printf("Warning: invalid BIOVAULT_PORT value %q, using default %d: %v",
				portStr, cfg.Server.Port, err)
		} else if port < 1 || port > 65535 {
			log.Printf("Warning: invalid BIOVAULT_PORT value %q (out of range 1-65535), using default %d",
				portStr, cfg.Server.Port)
		} else {
			cfg.Server.Port = port
		}
	}

	// Logging
	if level := os.Getenv("BIOVAULT_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if format := os.Getenv("BIOVAULT_LOG_FORMAT"); format != "" {
		cfg.Logging.Format = format
	}

	// Storage
	if dataDir := os.Getenv("BIOVAULT_DATA_DIR"); dataDir != "" {
		cfg.Storage.Path = dataDir
	}
	if backend := os.Getenv("BIOVAULT_STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}

	// Prompter
	if prompter := os.Getenv("BIOVAULT_PROMPTER"); prompter != "" {
		cfg.Prompter.Type = prompter
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, error, or fatal)", c.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"json": true, "text": true, "console": true,
	}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be json, text, or console)", c.Logging.Format)
	}

	// Validate storage
	switch c.Storage.Backend {
	case "memory":
	case "file":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the file backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be memory or file)", c.Storage.Backend)
	}

	// Validate keyring
	if c.Keyring.KeySize < 2048 {
		return fmt.Errorf("keyring key_size must be at least 2048, got %d", c.Keyring.KeySize)
	}
	if c.Keyring.ProofLifetime <= 0 {
		return fmt.Errorf("keyring proof_lifetime must be positive")
	}

	// Validate prompter
	switch c.Prompter.Type {
	case "console", "simulator":
	default:
		return fmt.Errorf("invalid prompter type: %s (must be console or simulator)", c.Prompter.Type)
	}
	switch c.Prompter.BiometryType {
	case "", "fingerprint", "face", "iris":
	default:
		return fmt.Errorf("invalid biometry_type: %s (must be fingerprint, face, or iris)", c.Prompter.BiometryType)
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMin < 1 {
		return fmt.Errorf("ratelimit requests_per_min must be positive when enabled")
	}

	return nil
}
