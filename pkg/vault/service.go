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

// Package vault implements the biometric-gated secret vault: hybrid
// encryption of per-secret envelopes, a record store keyed by domain and
// name, and the service orchestrating authentication prompts around them.
package vault

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeremyhahn/go-biovault/pkg/biometry"
	"github.com/jeremyhahn/go-biovault/pkg/keyring"
	"github.com/jeremyhahn/go-biovault/pkg/logging"
	"github.com/jeremyhahn/go-biovault/pkg/metrics"
)

// State is the observable lifecycle state of the most recent gated
// operation. Exposed for diagnostics only; callers synchronize on
// operation results, not on state transitions.
type State string

const (
	StateIdle       State = "idle"
	StatePrompting  State = "prompting"
	StateDecrypting State = "decrypting"
	StateDone       State = "done"
	StateRejected   State = "rejected"
	StateErrored    State = "errored"
)

// ServiceConfig holds the collaborators for a vault service.
type ServiceConfig struct {
	// Gate performs biometric authentication. Required.
	Gate *biometry.Gate

	// Keyring holds the per-domain key pairs. Required.
	Keyring keyring.Keyring

	// Records persists secret envelopes. Required.
	Records *RecordStore

	// Logger receives service diagnostics. Defaults to the package
	// default logger.
	Logger *logging.Logger
}

// Service is the vault orchestrator. It owns the system-wide prompt lock:
// at most one authentication prompt is in flight at any time, and callers
// needing one queue behind it in arrival order.
type Service struct {
	gate    *biometry.Gate
	keyring keyring.Keyring
	records *RecordStore
	engine  *Engine
	logger  *logging.Logger

	// promptSem is the single-flight prompt lock.
	promptSem chan struct{}

	state atomic.Value

	startupMu     sync.RWMutex
	startupStatus biometry.Status
}

// NewService creates a vault service and captures the availability status
// observed at startup.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Gate == nil {
		return nil, errors.New("vault: authentication gate is required")
	}
	if cfg.Keyring == nil {
		return nil, errors.New("vault: keyring is required")
	}
	if cfg.Records == nil {
		return nil, errors.New("vault: record store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	s := &Service{
		gate:      cfg.Gate,
		keyring:   cfg.Keyring,
		records:   cfg.Records,
		engine:    NewEngine(cfg.Keyring),
		logger:    logger,
		promptSem: make(chan struct{}, 1),
	}
	s.state.Store(StateIdle)
	s.startupStatus = cfg.Gate.CheckStatus()
	return s, nil
}

// State returns the lifecycle state of the most recent gated operation.
func (s *Service) State() State {
	return s.state.Load().(State)
}

func (s *Service) setState(st State) {
	s.state.Store(st)
}

// StartupStatus returns the availability status captured when the service
// was created. Useful for callers that surface a cached status without
// re-probing the platform.
func (s *Service) StartupStatus() biometry.Status {
	s.startupMu.RLock()
	defer s.startupMu.RUnlock()
	return s.startupStatus
}

// CheckStatus re-checks biometric availability against the platform and
// refreshes the cached startup status. No UI is shown.
func (s *Service) CheckStatus(ctx context.Context) biometry.Status {
	start := time.Now()
	status := s.gate.CheckStatus()

	s.startupMu.Lock()
	s.startupStatus = status
	s.startupMu.Unlock()

	metrics.RecordOperation(metrics.OpCheckStatus, metrics.StatusSuccess, time.Since(start).Seconds())
	return status
}

// Authenticate runs a standalone authentication prompt. Returns nil when
// the user is approved; otherwise returns a *biometry.Error whose kind
// explains the failure. A rejected prompt surfaces as
// authenticationFailed.
func (s *Service) Authenticate(ctx context.Context, event biometry.AuthenticationEvent) error {
	start := time.Now()
	err := s.authenticate(ctx, event, nil)
	s.recordOp(metrics.OpAuthenticate, start, err)
	return err
}

// HasData reports whether a secret exists for (domain, name). No prompt
// is shown and the envelope is not opened: a record that survived an
// enrollment change still counts as present even though it can no longer
// be decrypted.
func (s *Service) HasData(ctx context.Context, domain, name string) (bool, error) {
	start := time.Now()
	if err := validateSlot(domain, name); err != nil {
		s.recordOp(metrics.OpHasData, start, err)
		return false, err
	}
	exists, err := s.records.Exists(domain, name)
	s.recordOp(metrics.OpHasData, start, err)
	return exists, err
}

// ListData returns the names of the secrets stored under domain, sorted.
// Like HasData this reveals only existence, never content, so no prompt
// is shown.
func (s *Service) ListData(ctx context.Context, domain string) ([]string, error) {
	start := time.Now()
	if domain == "" {
		s.recordOp(metrics.OpListData, start, ErrInvalidDomain)
		return nil, ErrInvalidDomain
	}
	names, err := s.records.ListDomain(domain)
	s.recordOp(metrics.OpListData, start, err)
	return names, err
}

// SetData encrypts value and stores it under (domain, name), overwriting
// any existing secret in that slot atomically. No prompt is shown: sealing
// needs only the domain's public key. The domain's key pair is created on
// first use.
func (s *Service) SetData(ctx context.Context, domain, name string, value []byte) error {
	start := time.Now()
	err := s.setData(domain, name, value)
	s.recordOp(metrics.OpSetData, start, err)
	return err
}

func (s *Service) setData(domain, name string, value []byte) error {
	if err := validateSlot(domain, name); err != nil {
		return err
	}
	record, err := s.engine.Encrypt(domain, name, value)
	if err != nil {
		return err
	}
	if err := s.records.Put(record); err != nil {
		return err
	}
	s.updateRecordGauge(domain)
	s.logger.Debug("secret stored",
		"domain", domain,
		"name", name,
		"algorithm", record.Algorithm,
		"key_id", record.KeyID)
	return nil
}

// GetData authenticates the user and returns the decrypted secret for
// (domain, name). A prompt is always shown, even when the slot turns out
// to be empty: existence is only revealed to an authenticated user. On
// approval the freshly issued proof is consumed unwrapping this record's
// key, so a retained outcome cannot decrypt anything else.
func (s *Service) GetData(ctx context.Context, domain, name string, event biometry.AuthenticationEvent) ([]byte, error) {
	start := time.Now()
	value, err := s.getData(ctx, domain, name, event)
	s.recordOp(metrics.OpGetData, start, err)
	return value, err
}

func (s *Service) getData(ctx context.Context, domain, name string, event biometry.AuthenticationEvent) ([]byte, error) {
	if err := validateSlot(domain, name); err != nil {
		return nil, err
	}

	var proof *biometry.Proof
	if err := s.authenticate(ctx, event, &proof); err != nil {
		return nil, err
	}

	s.setState(StateDecrypting)
	record, err := s.records.Get(domain, name)
	if errors.Is(err, ErrRecordNotFound) {
		s.setState(StateErrored)
		return nil, biometry.NewError(biometry.KindItemNotFound,
			"no secret stored for this domain and name")
	}
	if err != nil {
		s.setState(StateErrored)
		return nil, err
	}

	value, err := s.engine.Decrypt(record, proof)
	if err != nil {
		s.setState(StateErrored)
		s.logger.Warn("secret decryption failed",
			"domain", domain,
			"name", name,
			"error", err)
		return nil, err
	}

	s.setState(StateDone)
	return value, nil
}

// RemoveData deletes the secret for (domain, name). Idempotent: removing
// an absent secret succeeds. When the last record in a domain is removed,
// the domain's key pair is destroyed with it.
func (s *Service) RemoveData(ctx context.Context, domain, name string) error {
	start := time.Now()
	err := s.removeData(domain, name)
	s.recordOp(metrics.OpRemoveData, start, err)
	return err
}

func (s *Service) removeData(domain, name string) error {
	if err := validateSlot(domain, name); err != nil {
		return err
	}
	existed, err := s.records.Delete(domain, name)
	if err != nil {
		return err
	}
	if !existed {
		return nil
	}
	s.updateRecordGauge(domain)

	count, err := s.records.CountDomain(domain)
	if err != nil {
		return err
	}
	if count == 0 {
		if err := s.keyring.Remove(domain); err != nil {
			return err
		}
		s.logger.Debug("domain key pair removed with last record", "domain", domain)
	}
	return nil
}

// authenticate acquires the prompt lock, runs the prompt and maps the
// outcome. When proofOut is non-nil the issued proof is handed to the
// caller on approval.
func (s *Service) authenticate(ctx context.Context, event biometry.AuthenticationEvent, proofOut **biometry.Proof) error {
	if err := s.acquirePrompt(ctx); err != nil {
		return err
	}
	defer s.releasePrompt()

	s.setState(StatePrompting)
	outcome := s.gate.Authenticate(ctx, event)

	switch outcome.Status {
	case biometry.OutcomeApproved:
		metrics.RecordPrompt("approved")
		if proofOut != nil {
			*proofOut = outcome.Proof
		} else {
			s.setState(StateDone)
		}
		return nil
	case biometry.OutcomeRejected:
		metrics.RecordPrompt("rejected")
		s.setState(StateRejected)
		return biometry.NewError(biometry.KindAuthenticationFailed, outcome.Reason)
	default:
		metrics.RecordPrompt("errored")
		s.setState(StateErrored)
		if outcome.Err != nil {
			return outcome.Err
		}
		return biometry.NewError(biometry.KindInternalError, "prompt failed without a reported cause")
	}
}

// acquirePrompt joins the system-wide prompt queue. A caller whose
// context ends while queued never reaches the prompter; cancellation maps
// to userCancel and a deadline to systemCancel, mirroring the gate.
func (s *Service) acquirePrompt(ctx context.Context) error {
	select {
	case s.promptSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return biometry.NewError(biometry.KindSystemCancel,
				"authentication timed out waiting for the prompt")
		}
		return biometry.NewError(biometry.KindUserCancel,
			"authentication canceled while waiting for the prompt")
	}
}

func (s *Service) releasePrompt() {
	<-s.promptSem
}

func (s *Service) updateRecordGauge(domain string) {
	count, err := s.records.CountDomain(domain)
	if err != nil {
		return
	}
	metrics.SetRecordsTotal(domain, float64(count))
}

func (s *Service) recordOp(op string, start time.Time, err error) {
	if err != nil {
		metrics.RecordOperation(op, metrics.StatusError, time.Since(start).Seconds())
		metrics.RecordError(op, string(biometry.KindOf(err)))
		return
	}
	metrics.RecordOperation(op, metrics.StatusSuccess, time.Since(start).Seconds())
}

func validateSlot(domain, name string) error {
	if domain == "" {
		return ErrInvalidDomain
	}
	if name == "" {
		return ErrInvalidName
	}
	return nil
}
