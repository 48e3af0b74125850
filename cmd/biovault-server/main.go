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

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeremyhahn/go-biovault/internal/config"
	"github.com/jeremyhahn/go-biovault/internal/rest"
	"github.com/jeremyhahn/go-biovault/pkg/biometry"
	"github.com/jeremyhahn/go-biovault/pkg/keyring"
	"github.com/jeremyhahn/go-biovault/pkg/logging"
	"github.com/jeremyhahn/go-biovault/pkg/metrics"
	"github.com/jeremyhahn/go-biovault/pkg/ratelimit"
	"github.com/jeremyhahn/go-biovault/pkg/storage"
	"github.com/jeremyhahn/go-biovault/pkg/storage/file"
	"github.com/jeremyhahn/go-biovault/pkg/vault"
)

var (
	// Version information (set during build)
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "/etc/biovault/config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	// Show version if requested
	if *showVersion {
		fmt.Printf("biovault server\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Git Commit: %s\n", commit)
		fmt.Printf("  Built:      %s\n", date)
		os.Exit(0)
	}

	// Check for config file override via environment
	if envConfig := os.Getenv("BIOVAULT_CONFIG"); envConfig != "" {
		*configPath = envConfig
	}

	slog.Info("Starting biovault server",
		"config", *configPath,
		"version", version)

	// Load configuration, falling back to defaults when no file exists
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Configuration loaded successfully",
		"storage", cfg.Storage.Backend,
		"prompter", cfg.Prompter.Type,
		"port", cfg.Server.Port)

	srv, closer, err := buildServer(cfg)
	if err != nil {
		slog.Error("Failed to create server", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = closer() }()

	// Setup signal handler for graceful shutdown
	shutdownCtx := setupSignalHandler()

	// Start the server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	slog.Info("Server started successfully", "addr", srv.Addr())

	// Wait for shutdown signal or error
	select {
	case <-shutdownCtx.Done():
		slog.Info("Shutdown signal received")
	case err := <-errChan:
		slog.Error("Server error", slog.Any("error", err))
	}

	// Gracefully shutdown
	shutdownTimeout, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownTimeout); err != nil {
		slog.Error("Error during server shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}

// loadConfig loads the configuration file, or the defaults when the file
// does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Warn("Configuration file not found, using defaults", "path", path)
		return config.Default(), nil
	}
	return config.Load(path)
}

// buildServer wires the storage backend, keyring, prompter and vault
// service into a REST server per the configuration. The returned closer
// releases the keyring, the storage backend and the rate limiter.
func buildServer(cfg *config.Config) (*rest.Server, func() error, error) {
	logger := logging.NewLogger(cfg.Logging.Level == "debug")

	backend, err := createBackend(cfg)
	if err != nil {
		return nil, nil, err
	}

	ring, err := keyring.NewSoftwareKeyring(keyring.Config{
		Storage:       backend,
		KeySize:       cfg.Keyring.KeySize,
		ProofLifetime: cfg.Keyring.ProofLifetime,
		Logger:        logger,
	})
	if err != nil {
		_ = backend.Close()
		return nil, nil, fmt.Errorf("failed to create keyring: %w", err)
	}

	prompter, err := createPrompter(cfg)
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

	if cfg.Metrics.Enabled {
		metrics.Enable()
	} else {
		metrics.Disable()
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(&ratelimit.Config{
			Enabled:           true,
			RequestsPerMinute: cfg.RateLimit.RequestsPerMin,
			Burst:             cfg.RateLimit.Burst,
		})
	}

	srv, err := rest.NewServer(&rest.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Service:        svc,
		Version:        version,
		Limiter:        limiter,
		Logger:         logger,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		HealthPath:     cfg.Health.Path,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
	})
	if err != nil {
		if limiter != nil {
			limiter.Stop()
		}
		_ = ring.Close()
		_ = backend.Close()
		return nil, nil, fmt.Errorf("failed to create REST server: %w", err)
	}

	closer := func() error {
		if limiter != nil {
			limiter.Stop()
		}
		if err := ring.Close(); err != nil {
			_ = backend.Close()
			return err
		}
		return backend.Close()
	}
	return srv, closer, nil
}

// createBackend creates the configured storage backend.
func createBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return storage.NewMemory(), nil
	case "file":
		backend, err := file.New(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open vault storage at %s: %w", cfg.Storage.Path, err)
		}
		return backend, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}

// createPrompter creates the configured verification prompter.
func createPrompter(cfg *config.Config) (biometry.Prompter, error) {
	biometryType, err := biometry.ParseBiometryType(cfg.Prompter.BiometryType)
	if err != nil {
		return nil, err
	}
	switch cfg.Prompter.Type {
	case "console":
		return biometry.NewConsolePrompter(biometryType), nil
	case "simulator":
		return biometry.NewSimulator(biometry.Availability{
			Available:    true,
			BiometryType: biometryType,
		}), nil
	default:
		return nil, fmt.Errorf("unknown prompter type: %q", cfg.Prompter.Type)
	}
}

// setupSignalHandler sets up signal handling for graceful shutdown
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signalCh
		cancel()
	}()

	return ctx
}
